package player

import (
	"errors"
	"fmt"
)

// State is the discrete playback state of a session.
type State string

const (
	StateIdle           State = "idle"
	StateProbing        State = "probing"
	StateProbeFailed    State = "probe_failed"
	StateStreamingReady State = "streaming_ready"
	StateStreamError    State = "stream_error"
)

// Status is the current State plus, for terminal states, the reason.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Terminal reports whether the status ends the session. A new session must
// be started to leave a terminal status.
func (s Status) Terminal() bool {
	return s.State == StateProbeFailed || s.State == StateStreamError
}

// Message returns a human readable description suitable for display.
func (s Status) Message() string {
	switch s.State {
	case StateIdle:
		return "No media loaded"
	case StateProbing:
		return "Probing video and generating HLS stream..."
	case StateStreamingReady:
		return "Ready to play"
	case StateProbeFailed:
		return "Probe error: " + s.Reason
	case StateStreamError:
		return "HLS error: " + s.Reason
	default:
		return string(s.State)
	}
}

var (
	// ErrProbe is returned when the backend cannot describe a media resource.
	ErrProbe = errors.New("probe failed")

	// ErrStreamNetwork marks an engine error recoverable by resuming the load.
	ErrStreamNetwork = errors.New("stream network error")

	// ErrStreamMedia marks an engine error recoverable by media error recovery.
	ErrStreamMedia = errors.New("stream media error")

	// ErrStreamFatal marks an engine error that ends the session.
	ErrStreamFatal = errors.New("stream fatal error")

	// ErrEngineUnsupported is returned by an EngineFactory when the surface
	// can play HLS neither natively nor through the engine library.
	ErrEngineUnsupported = errors.New("HLS is not supported on this surface")

	// ErrSessionNotFound is returned for an unknown SessionID.
	ErrSessionNotFound = errors.New("session not found")
)

// ProbeError carries the reason a probe call failed.
type ProbeError struct {
	Locator Locator
	Status  string
	Err     error
}

func (e *ProbeError) Error() string {
	switch {
	case e.Status != "" && e.Err != nil:
		return fmt.Sprintf("failed to probe: %s: %v", e.Status, e.Err)
	case e.Status != "":
		return "failed to probe: " + e.Status
	case e.Err != nil:
		return "failed to probe: " + e.Err.Error()
	default:
		return "failed to probe"
	}
}

func (e *ProbeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProbe}
	}
	return []error{ErrProbe, e.Err}
}

// ErrorKind classifies an engine error.
type ErrorKind string

const (
	ErrorNetwork ErrorKind = "network"
	ErrorMedia   ErrorKind = "media"
	ErrorOther   ErrorKind = "other"
)

// EngineError is an error reported by a streaming engine while attached.
type EngineError struct {
	Kind    ErrorKind
	Fatal   bool
	Details string
	Err     error
}

func (e *EngineError) Error() string {
	msg := string(e.Kind) + " error"
	if e.Fatal {
		msg = "fatal " + msg
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() []error {
	var class error
	switch e.Kind {
	case ErrorNetwork:
		class = ErrStreamNetwork
	case ErrorMedia:
		class = ErrStreamMedia
	default:
		class = ErrStreamFatal
	}
	if e.Err == nil {
		return []error{class}
	}
	return []error{class, e.Err}
}
