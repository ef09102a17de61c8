package v1handler

import (
	"sync"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"

	"github.com/google/uuid"
)

// Run is a completed batch kept so its reports can be downloaded again
// without recomputation.
type Run struct {
	ID               uuid.UUID        `json:"id"`
	CreatedAt        time.Time        `json:"createdAt"`
	MinMonthlyVisits int64            `json:"minMonthlyVisits"`
	Results          domain.ResultSet `json:"results"`
	Hits             domain.ResultSet `json:"hits"`
}

// Sessions stores runs in memory. It replaces process-wide UI state: every
// handler receives the store explicitly. Safe for concurrent use.
type Sessions struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*Run
	order []uuid.UUID
	max   int
}

// NewSessions constructs a store holding at most maxRuns runs; 0 means unbounded.
func NewSessions(maxRuns int) *Sessions {
	return &Sessions{runs: map[uuid.UUID]*Run{}, max: maxRuns}
}

// Add stores run, evicting the oldest runs when the store is full.
func (s *Sessions) Add(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; !ok {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run

	for s.max > 0 && len(s.order) > s.max {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

// Get returns the run with id or an serrors.ErrNotFound error.
func (s *Sessions) Get(id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, serrors.With(serrors.ErrNotFound, "run %s not found", id)
	}

	return run, nil
}

// Delete removes the run with id.
func (s *Sessions) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return serrors.With(serrors.ErrNotFound, "run %s not found", id)
	}
	delete(s.runs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

// Len returns the number of stored runs.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.runs)
}
