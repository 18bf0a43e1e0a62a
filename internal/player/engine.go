package player

import (
	"fmt"
	"net/http"
	"strings"
)

// EventSink receives lifecycle events from an attached Engine.
// Engines must deliver events from their own goroutines, never from inside
// Attach or one of the command methods.
type EventSink interface {
	ManifestParsed(m *Manifest)
	Error(err *EngineError)
}

// Engine is a streaming engine attached to one playback URL.
// Command methods must not block.
type Engine interface {
	// Attach starts loading url. ready is true when the surface plays the
	// URL by itself and no manifest-parsed event will follow.
	Attach(url string, sink EventSink) (ready bool, err error)
	ResumeLoad()
	RecoverMediaError()
	// Destroy releases every resource held by the engine. It is safe to
	// call more than once.
	Destroy()
}

// EngineFactory creates a fresh Engine for each attachment.
type EngineFactory func() (Engine, error)

// Engine variants selectable through configuration.
const (
	EngineHLS    = "hls"
	EngineNative = "native"
)

// NewEngineFactory returns the factory for the named engine variant.
// Unknown names yield a factory that always fails with ErrEngineUnsupported.
func NewEngineFactory(name string, client *http.Client) EngineFactory {
	switch strings.ToLower(name) {
	case EngineHLS, "":
		return func() (Engine, error) { return NewHLSEngine(client, 0), nil }
	case EngineNative:
		return func() (Engine, error) { return &NativeEngine{}, nil }
	default:
		return func() (Engine, error) {
			return nil, fmt.Errorf("%w: engine %q", ErrEngineUnsupported, name)
		}
	}
}

// NativeEngine stands for a playback surface that understands HLS itself.
// It records the source and reports ready immediately.
type NativeEngine struct {
	src string
}

// Attach implements Engine.Attach.
func (e *NativeEngine) Attach(url string, _ EventSink) (bool, error) {
	e.src = url
	return true, nil
}

// ResumeLoad implements Engine.ResumeLoad. The surface owns reloading.
func (e *NativeEngine) ResumeLoad() {}

// RecoverMediaError implements Engine.RecoverMediaError.
func (e *NativeEngine) RecoverMediaError() {}

// Destroy implements Engine.Destroy.
func (e *NativeEngine) Destroy() {
	e.src = ""
}

// Source returns the URL currently handed to the surface.
func (e *NativeEngine) Source() string { return e.src }
