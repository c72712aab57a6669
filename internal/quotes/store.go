package quotes

import (
	"sync"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"
)

// Store keeps the latest quote per composite key, bucketed by event.
// The orchestrator reads it to validate pre-submission price; the ops
// server exposes read-only snapshots.
type Store struct {
	mu sync.RWMutex
	// event id -> composite key -> quote
	byEvent map[int64]map[string]models.Quote
}

// NewStore creates an empty quote store.
func NewStore() *Store {
	return &Store{byEvent: make(map[int64]map[string]models.Quote)}
}

// Apply upserts a batch of resolved quotes. A quote supersedes any
// previous quote carrying the same selection identifier on the same
// event, even when the composite key changed (price moves change it).
func (s *Store) Apply(batch []models.Quote) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range batch {
		bucket, ok := s.byEvent[q.EventID]
		if !ok {
			bucket = make(map[string]models.Quote)
			s.byEvent[q.EventID] = bucket
		}
		for key, old := range bucket {
			if old.ID == q.ID {
				delete(bucket, key)
			}
		}
		bucket[q.Key()] = q
	}
}

// Snapshot returns all current quotes for an event.
func (s *Store) Snapshot(eventID int64) []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.byEvent[eventID]
	out := make([]models.Quote, 0, len(bucket))
	for _, q := range bucket {
		out = append(out, q)
	}
	return out
}

// Lookup returns the current quote for a selection identifier on an
// event, if present.
func (s *Store) Lookup(eventID int64, selectionID string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.byEvent[eventID] {
		if q.ID == selectionID {
			return q, true
		}
	}
	return models.Quote{}, false
}

// DropEvent removes all quotes for an event. Called when the registry
// evicts the event.
func (s *Store) DropEvent(eventID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEvent, eventID)
}
