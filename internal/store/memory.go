package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe has been recorded yet.
	ErrNotFound = errors.New("no probe recorded")
)

// Probe is one upstream reachability check.
type Probe struct {
	Time    time.Time     `json:"time"`
	OK      bool          `json:"ok"`
	Status  int           `json:"status,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// MemoryStore is a concurrency-safe, bounded, in-memory probe history.
type MemoryStore struct {
	mu sync.RWMutex

	probes []Probe

	// retention configuration
	maxHistory int           // max number of probes kept
	maxAge     time.Duration // optional max age for probes

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a probe and enforces retention.
func (s *MemoryStore) Save(p Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probes = append(s.probes, p)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.probes) > s.maxHistory {
		over := len(s.probes) - s.maxHistory
		s.probes = append([]Probe(nil), s.probes[over:]...)
	}

	// Enforce retention by age; the newest probe always stays.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.probes)-1; i++ {
			if !s.probes[i].Time.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.probes = s.probes[i:]
		}
	}
}

// Latest returns the most recent probe.
func (s *MemoryStore) Latest() (Probe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.probes) == 0 {
		return Probe{}, ErrNotFound
	}
	return s.probes[len(s.probes)-1], nil
}

// List returns a copy of the history, oldest first.
func (s *MemoryStore) List() []Probe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Probe, len(s.probes))
	copy(out, s.probes)
	return out
}

// Len returns the number of probes kept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.probes)
}
