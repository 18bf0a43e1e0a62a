package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/grafov/m3u8"
)

const (
	// DefaultLoadAttempts bounds the engine's own retries of a single
	// playlist fetch before it reports a network error.
	DefaultLoadAttempts = 3

	loadRetryDelay  = 500 * time.Millisecond
	maxPlaylistSize = 4 << 20
)

type engineCommand int

const (
	cmdResumeLoad engineCommand = iota + 1
	cmdRecoverMedia
)

// HLSEngine loads an HLS manifest over HTTP and reports its lifecycle
// through an EventSink. It owns one goroutine between Attach and Destroy.
type HLSEngine struct {
	client   *http.Client
	attempts uint

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	destroyed bool
	cmds      chan engineCommand
}

// NewHLSEngine returns an engine that fetches playlists with client.
// attempts <= 0 selects DefaultLoadAttempts.
func NewHLSEngine(client *http.Client, attempts int) *HLSEngine {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts <= 0 {
		attempts = DefaultLoadAttempts
	}
	return &HLSEngine{
		client:   client,
		attempts: uint(attempts),
		cmds:     make(chan engineCommand, 1),
	}
}

var (
	errAlreadyAttached = errors.New("engine already attached")
	errDestroyed       = errors.New("engine destroyed")
)

// Attach implements Engine.Attach.
func (e *HLSEngine) Attach(src string, sink EventSink) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return false, errDestroyed
	}
	if e.done != nil {
		return false, errAlreadyAttached
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx, src, sink)
	return false, nil
}

// ResumeLoad implements Engine.ResumeLoad.
func (e *HLSEngine) ResumeLoad() { e.send(cmdResumeLoad) }

// RecoverMediaError implements Engine.RecoverMediaError.
func (e *HLSEngine) RecoverMediaError() { e.send(cmdRecoverMedia) }

// send queues cmd without blocking; a pending command already triggers a
// reload, so extra ones are dropped.
func (e *HLSEngine) send(cmd engineCommand) {
	select {
	case e.cmds <- cmd:
	default:
	}
}

// Destroy implements Engine.Destroy. It cancels in-flight fetches and does
// not wait for the loader goroutine; use Done for that.
func (e *HLSEngine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyed = true
	if e.cancel != nil {
		e.cancel()
	}
}

// Done is closed once the loader goroutine has exited.
func (e *HLSEngine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return e.done
}

func (e *HLSEngine) run(ctx context.Context, src string, sink EventSink) {
	defer close(e.done)

	for {
		m, err := e.load(ctx, src)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			sink.Error(err)
		} else {
			sink.ManifestParsed(m)
		}

		select {
		case <-ctx.Done():
			return
		case <-e.cmds:
		}
	}
}

// load fetches src and, for a master playlist, its first variant.
func (e *HLSEngine) load(ctx context.Context, src string) (*Manifest, *EngineError) {
	base, err := url.Parse(src)
	if err != nil {
		return nil, &EngineError{Kind: ErrorOther, Fatal: true, Details: "invalid playback URL", Err: err}
	}

	pl, typ, lerr := e.fetchPlaylist(ctx, base)
	if lerr != nil {
		return nil, lerr
	}

	if typ == m3u8.MEDIA {
		media := pl.(*m3u8.MediaPlaylist)
		return mediaManifest(src, media), nil
	}

	master := pl.(*m3u8.MasterPlaylist)
	variants := masterVariants(master)
	if len(variants) == 0 {
		return nil, &EngineError{Kind: ErrorOther, Fatal: true, Details: "master playlist lists no variants"}
	}

	ref, err := url.Parse(variants[0].URI)
	if err != nil {
		return nil, &EngineError{Kind: ErrorMedia, Fatal: true, Details: "invalid variant URI", Err: err}
	}
	pl, typ, lerr = e.fetchPlaylist(ctx, base.ResolveReference(ref))
	if lerr != nil {
		return nil, lerr
	}
	if typ != m3u8.MEDIA {
		return nil, &EngineError{Kind: ErrorMedia, Fatal: true, Details: "variant is not a media playlist"}
	}

	m := mediaManifest(src, pl.(*m3u8.MediaPlaylist))
	m.Variants = variants
	return m, nil
}

func (e *HLSEngine) fetchPlaylist(ctx context.Context, u *url.URL) (m3u8.Playlist, m3u8.ListType, *EngineError) {
	var body []byte
	err := retry.New(
		retry.Attempts(e.attempts),
		retry.Delay(loadRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	).Do(func() error {
		b, err := e.get(ctx, u.String())
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, 0, &EngineError{Kind: ErrorNetwork, Fatal: true, Details: "playlist load failed", Err: err}
	}

	pl, typ, err := decodePlaylist(bytes.NewReader(body))
	if err != nil {
		return nil, 0, &EngineError{Kind: ErrorMedia, Fatal: true, Details: "playlist parsing failed", Err: err}
	}
	return pl, typ, nil
}

func (e *HLSEngine) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
}
