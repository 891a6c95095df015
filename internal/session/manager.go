package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/chart"
	"github.com/i474232898/weather-map/internal/controller"
	"github.com/i474232898/weather-map/internal/drawer"
	"github.com/i474232898/weather-map/internal/mapview"
	"github.com/i474232898/weather-map/internal/region"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

const (
	defaultTTL = 30 * time.Minute
	defaultMax = 1000
)

// Config holds what every session shares.
type Config struct {
	Regions  *region.Registry
	Source   controller.WeatherSource
	Basemaps *mapview.Basemaps
	Basemap  string
	Charts   *chart.Tracker

	// Clock drives drawer animations and month ranges; defaults to the wall clock.
	Clock  drawer.Clock
	TTL    time.Duration
	Max    int
	Logger *zap.Logger
}

// Session is one page: its own controller, drawer, map and markers.
type Session struct {
	ID string

	ctrl    *controller.Controller
	markers []*mapview.Marker
	cancel  context.CancelFunc

	lastSeen time.Time // guarded by Manager.mu
}

// Controller returns the page controller.
func (s *Session) Controller() *controller.Controller { return s.ctrl }

// Marker returns the marker for a region key.
func (s *Session) Marker(key string) (*mapview.Marker, bool) {
	for _, mk := range s.markers {
		if mk.Key == key {
			return mk, true
		}
	}
	return nil, false
}

// Snapshot is the render state of a session.
type Snapshot struct {
	ID string `json:"id"`
	controller.State
	Map     mapview.View          `json:"map"`
	Markers []mapview.MarkerState `json:"markers"`
}

// Snapshot captures the page, map and marker state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:      s.ID,
		State:   s.ctrl.State(),
		Map:     s.ctrl.Map().View(),
		Markers: make([]mapview.MarkerState, 0, len(s.markers)),
	}
	for _, mk := range s.markers {
		snap.Markers = append(snap.Markers, mk.State())
	}
	return snap
}

// Manager owns live sessions. Idle sessions expire after TTL and the
// least recently used one is evicted when Max is reached.
type Manager struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager checks the shared configuration and returns an empty manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Regions == nil || cfg.Source == nil {
		return nil, errors.New("session manager needs regions and a weather source")
	}
	if cfg.Basemaps == nil {
		cfg.Basemaps = mapview.DefaultBasemaps()
	}
	if cfg.Basemap == "" {
		cfg.Basemap = mapview.DefaultBasemap
	}
	if _, err := cfg.Basemaps.Get(cfg.Basemap); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = drawer.SystemClock
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Max <= 0 {
		cfg.Max = defaultMax
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Create starts a new session.
func (m *Manager) Create() (*Session, error) {
	mv, err := mapview.NewMap(m.cfg.Basemaps, m.cfg.Basemap)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := m.cfg.Logger.With(zap.String("session", id))
	ctx, cancel := context.WithCancel(m.ctx)

	ctrl := controller.New(ctx, controller.Deps{
		Regions: m.cfg.Regions,
		Source:  m.cfg.Source,
		Drawer:  drawer.New(drawer.WithClock(m.cfg.Clock), drawer.WithLogger(log)),
		Map:     mv,
		Charts:  chart.NewSet(m.cfg.Charts),
		Logger:  log,
	})
	s := &Session{
		ID:      id,
		ctrl:    ctrl,
		markers: ctrl.Markers(),
		cancel:  cancel,
	}

	m.mu.Lock()
	now := m.now()
	dropped := m.expireLocked(now)
	if len(m.sessions) >= m.cfg.Max {
		if victim := m.oldestLocked(); victim != nil {
			delete(m.sessions, victim.ID)
			dropped = append(dropped, victim)
		}
	}
	s.lastSeen = now
	m.sessions[id] = s
	m.mu.Unlock()

	m.release(dropped)
	log.Debug("session created")
	return s, nil
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	now := m.now()
	if now.Sub(s.lastSeen) > m.cfg.TTL {
		delete(m.sessions, id)
		m.mu.Unlock()
		m.release([]*Session{s})
		return nil, ErrNotFound
	}
	s.lastSeen = now
	m.mu.Unlock()
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.release([]*Session{s})
	}
	return ok
}

// Len returns the number of sessions held, expired ones included until swept.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops expired sessions and returns how many went.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	dropped := m.expireLocked(m.now())
	m.mu.Unlock()

	m.release(dropped)
	if len(dropped) > 0 {
		m.cfg.Logger.Debug("expired sessions swept", zap.Int("count", len(dropped)))
	}
	return len(dropped)
}

// StartSweeper runs Sweep every interval until the returned stop is called.
func (m *Manager) StartSweeper(every time.Duration) (func(), error) {
	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(every).Do(func() { m.Sweep() }); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s.Stop, nil
}

// Close ends every session and cancels in-flight fetches.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.cancel()
	m.release(all)
}

func (m *Manager) expireLocked(now time.Time) []*Session {
	var out []*Session
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.cfg.TTL {
			out = append(out, s)
			delete(m.sessions, id)
		}
	}
	return out
}

func (m *Manager) oldestLocked() *Session {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	return oldest
}

// release runs outside m.mu; closing a drawer calls back into the controller.
func (m *Manager) release(sessions []*Session) {
	for _, s := range sessions {
		s.ctrl.CloseDrawer()
		s.cancel()
		s.ctrl.Wait()
		s.ctrl.Charts().Dispose()
	}
}
