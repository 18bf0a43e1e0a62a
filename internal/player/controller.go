package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"streamly/internal/platform/metrics"
)

// DefaultMaxRecoveries bounds how many times a controller asks an attached
// engine to recover from each error class before giving up.
const DefaultMaxRecoveries = 3

// URLBuilderFunc turns a probed locator into a playback URL.
type URLBuilderFunc func(Locator) string

// ControllerConfig holds the collaborators of a Controller.
type ControllerConfig struct {
	Prober        Prober
	BuildURL      URLBuilderFunc
	NewEngine     EngineFactory
	MaxRecoveries int
	Log           *slog.Logger
	Metrics       *metrics.Metrics // optional

	// onStatus, if set, is called on every status change while the
	// controller's lock is held. It must not call back into the Controller.
	onStatus func(Status)
}

// Controller drives one player surface: probe the source, build the
// playback URL, attach a streaming engine and react to its events.
//
// Every Start begins a new generation. Probe responses and engine events
// carry the generation they were issued for and are dropped once it is no
// longer current, so a superseded or torn down session is never mutated.
type Controller struct {
	cfg ControllerConfig
	log *slog.Logger

	mu         sync.Mutex
	gen        uint64
	status     Status
	locator    Locator
	probe      *ProbeResult
	url        string
	manifest   *Manifest
	att        *attachment
	cancel     context.CancelFunc
	recoveries map[ErrorKind]int
	closed     bool

	wg sync.WaitGroup
}

// NewController returns an idle Controller.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.MaxRecoveries <= 0 {
		cfg.MaxRecoveries = DefaultMaxRecoveries
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Controller{
		cfg:    cfg,
		log:    cfg.Log,
		status: Status{State: StateIdle},
	}
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// View returns a snapshot of the controller's session.
func (c *Controller) View() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SessionView{
		State:       c.status.State,
		Reason:      c.status.Reason,
		Message:     c.status.Message(),
		Locator:     c.locator,
		PlaybackURL: c.url,
		Probe:       c.probe,
		Manifest:    c.manifest,
	}
}

// Start tears down any current session and begins a new one for locator.
// The probe runs in the background; Start returns once the controller is
// probing. Start on a closed controller does nothing.
func (c *Controller) Start(locator Locator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.log.Debug("start on closed controller ignored",
			slog.String("media_url", string(locator)))
		return
	}

	c.resetLocked()
	gen := c.gen
	c.locator = locator

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.setStatusLocked(Status{State: StateProbing})
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IncSessionsStarted()
	}

	c.wg.Add(1)
	go c.runProbe(ctx, gen, locator)
}

// Teardown ends the current session: outstanding probes are abandoned and
// the engine, if any, is destroyed before Teardown returns. The controller
// is left idle and may be started again.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.setStatusLocked(Status{State: StateIdle})
}

// Close tears the session down for good. Later calls to Start are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.resetLocked()
	c.setStatusLocked(Status{State: StateIdle})
}

// Wait blocks until every probe started so far has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// resetLocked invalidates the current generation and releases everything
// it owns.
func (c *Controller) resetLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.releaseLocked()
	c.locator = ""
	c.probe = nil
	c.url = ""
	c.manifest = nil
	c.recoveries = make(map[ErrorKind]int)
}

func (c *Controller) runProbe(ctx context.Context, gen uint64, locator Locator) {
	defer c.wg.Done()

	res, err := c.cfg.Prober.Probe(ctx, locator)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.Debug("discarding stale probe response",
			slog.Uint64("generation", gen),
			slog.String("media_url", string(locator)))
		return
	}
	c.cancel()
	c.cancel = nil

	if err != nil {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.IncProbes("failure")
		}
		c.log.Warn("probe failed",
			slog.String("media_url", string(locator)),
			slog.String("error", err.Error()))
		c.setStatusLocked(Status{State: StateProbeFailed, Reason: err.Error()})
		return
	}
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IncProbes("success")
	}

	if v, ok := res.VideoStream(); ok {
		c.log.Info("probe succeeded",
			slog.String("media_url", string(locator)),
			slog.String("format", res.Format.Name),
			slog.String("video_codec", v.Codec),
			slog.Int("width", v.Width),
			slog.Int("height", v.Height))
	}
	c.probe = res
	c.url = c.cfg.BuildURL(locator)
	c.attachLocked(gen)
}

// attachLocked creates an engine for c.url and attaches it. Any previous
// attachment is released first.
func (c *Controller) attachLocked(gen uint64) {
	c.releaseLocked()

	engine, err := c.cfg.NewEngine()
	if err != nil {
		c.failLocked(err.Error())
		return
	}

	att := &attachment{c: c, gen: gen, engine: engine}
	c.att = att

	ready, err := engine.Attach(c.url, att)
	if err != nil {
		c.failLocked(fmt.Sprintf("attach engine: %v", err))
		return
	}
	c.log.Info("engine attached",
		slog.Uint64("generation", gen),
		slog.String("playback_url", c.url),
		slog.Bool("native", ready))
	if ready {
		c.setStatusLocked(Status{State: StateStreamingReady})
	}
}

// releaseLocked destroys the current engine, if any.
func (c *Controller) releaseLocked() {
	if c.att == nil {
		return
	}
	c.att.release()
	c.att = nil
}

// failLocked ends the session with a stream error.
func (c *Controller) failLocked(reason string) {
	c.releaseLocked()
	c.log.Error("stream error", slog.String("reason", reason))
	c.setStatusLocked(Status{State: StateStreamError, Reason: reason})
}

func (c *Controller) setStatusLocked(s Status) {
	if s == c.status {
		return
	}
	c.log.Info("status changed",
		slog.String("from", string(c.status.State)),
		slog.String("to", string(s.State)),
		slog.Uint64("generation", c.gen))
	c.status = s
	if c.cfg.onStatus != nil {
		c.cfg.onStatus(s)
	}
}

func (c *Controller) handleManifest(att *attachment, m *Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if att != c.att {
		return
	}
	c.manifest = m
	// A parsed manifest means the last recovery worked.
	clear(c.recoveries)
	c.log.Info("manifest parsed",
		slog.Int("variants", len(m.Variants)),
		slog.Bool("live", m.Live))
	c.setStatusLocked(Status{State: StateStreamingReady})
}

func (c *Controller) handleError(att *attachment, e *EngineError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if att != c.att {
		return
	}
	c.log.Warn("engine error",
		slog.Uint64("generation", att.gen),
		slog.String("kind", string(e.Kind)),
		slog.Bool("fatal", e.Fatal),
		slog.String("error", e.Error()))
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IncEngineErrors(string(e.Kind), e.Fatal)
	}

	switch e.Kind {
	case ErrorNetwork:
		c.recoverLocked(e, "resume_load", att.engine.ResumeLoad)
	case ErrorMedia:
		c.recoverLocked(e, "recover_media_error", att.engine.RecoverMediaError)
	default:
		if e.Fatal {
			c.failLocked(e.Error())
		}
	}
}

// recoverLocked issues a recovery command unless the budget for the
// error's class is spent, in which case the session fails. The budget
// counts consecutive recoveries and is refilled by each parsed manifest.
func (c *Controller) recoverLocked(e *EngineError, action string, command func()) {
	if c.recoveries[e.Kind] >= c.cfg.MaxRecoveries {
		c.failLocked(fmt.Sprintf("%s (gave up after %d recovery attempts)", e.Error(), c.cfg.MaxRecoveries))
		return
	}
	c.recoveries[e.Kind]++
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IncRecoveries(action)
	}
	c.log.Info("recovering engine",
		slog.String("action", action),
		slog.Int("attempt", c.recoveries[e.Kind]))
	command()
}

// attachment scopes one engine to one generation. It is the EventSink the
// engine reports to; events arriving after release are ignored.
type attachment struct {
	c      *Controller
	gen    uint64
	engine Engine
	once   sync.Once
}

func (a *attachment) release() {
	a.once.Do(a.engine.Destroy)
}

// ManifestParsed implements EventSink.
func (a *attachment) ManifestParsed(m *Manifest) { a.c.handleManifest(a, m) }

// Error implements EventSink.
func (a *attachment) Error(err *EngineError) { a.c.handleError(a, err) }
