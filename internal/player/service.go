package player

import "log/slog"

// DevLocator is the sample played by the development session.
const DevLocator Locator = "https://filesamples.com/samples/video/mkv/sample_3840x2160.mkv"

// Service opens, updates and closes playback sessions. Each session owns a
// Controller built by the service's controller factory.
type Service struct {
	registry      *SessionRegistry
	newController func() *Controller
	dev           Locator
	log           *slog.Logger
}

// NewService returns a Service storing sessions in registry. An empty dev
// locator selects DevLocator.
func NewService(registry *SessionRegistry, newController func() *Controller, dev Locator, log *slog.Logger) *Service {
	if dev == "" {
		dev = DevLocator
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{registry: registry, newController: newController, dev: dev, log: log}
}

// Open creates a session and starts probing locator.
func (s *Service) Open(locator Locator) SessionID {
	c := s.newController()
	id := s.registry.Add(c)
	s.log.Info("session opened", slog.String("session_id", string(id)), slog.String("media_url", string(locator)))
	c.Start(locator)
	return id
}

// OpenDev opens a session on the development sample.
func (s *Service) OpenDev() SessionID {
	return s.Open(s.dev)
}

// Replace switches an existing session to a new source. The previous
// engine attachment is torn down before the new probe starts. A session
// closed concurrently stays closed.
func (s *Service) Replace(id SessionID, locator Locator) error {
	c, ok := s.registry.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.log.Info("session source replaced", slog.String("session_id", string(id)), slog.String("media_url", string(locator)))
	c.Start(locator)
	return nil
}

// Close tears the session down and forgets it.
func (s *Service) Close(id SessionID) error {
	c, ok := s.registry.Remove(id)
	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	s.log.Info("session closed", slog.String("session_id", string(id)))
	return nil
}

// View returns a snapshot of the session.
func (s *Service) View(id SessionID) (SessionView, error) {
	c, ok := s.registry.Get(id)
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	v := c.View()
	v.ID = id
	return v, nil
}

// List returns a snapshot of every session, ordered by id.
func (s *Service) List() []SessionView {
	ids := s.registry.IDs()
	views := make([]SessionView, 0, len(ids))
	for _, id := range ids {
		v, err := s.View(id)
		if err != nil {
			// Closed between listing and viewing.
			continue
		}
		views = append(views, v)
	}
	return views
}

// Shutdown closes every session.
func (s *Service) Shutdown() {
	for _, id := range s.registry.IDs() {
		_ = s.Close(id)
	}
}
