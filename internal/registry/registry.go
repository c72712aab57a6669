package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/feed"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/logging"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"
)

// Registry is the bidirectional channel<->event index built from
// snapshot frames. One writer (the feed goroutine) applies snapshots;
// the correlator and the orchestrator read concurrently.
type Registry struct {
	mu sync.RWMutex

	events        map[int64]*models.Event
	byChannel     map[int64][]int64 // insertion-ordered event ids per channel
	channelOfEvnt map[int64]int64

	generation uint64
	eviction   EvictionPolicy
	diag       *logging.Throttle
}

// New creates a registry with the given eviction policy. A nil policy
// means entries are never pruned.
func New(policy EvictionPolicy) *Registry {
	if policy == nil {
		policy = NoEviction{}
	}
	return &Registry{
		events:        make(map[int64]*models.Event),
		byChannel:     make(map[int64][]int64),
		channelOfEvnt: make(map[int64]int64),
		eviction:      policy,
		diag:          logging.NewThrottle(30 * time.Second),
	}
}

// ApplySnapshot folds one event directory into the index. Later
// snapshots fully replace earlier fields for the same event id; the
// channel set only accumulates within an event's lifetime.
func (r *Registry) ApplySnapshot(records []feed.SnapshotRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	for _, rec := range records {
		if rec.EventFkey == 0 {
			continue
		}
		ev := &models.Event{
			ID:          rec.EventFkey,
			ChannelID:   rec.ChannelFkey,
			Home:        rec.HomeTeamName,
			Away:        rec.AwayTeamName,
			Score:       fmt.Sprintf("%d:%d", rec.HomeScore, rec.AwayScore),
			Status:      rec.StatusNote,
			SportCode:   rec.SportClassifier,
			MarketCount: rec.EstimatedMarkets,
			Generation:  r.generation,
		}
		ev.Derive()

		if prevChannel, known := r.channelOfEvnt[ev.ID]; known && prevChannel != ev.ChannelID {
			r.removeFromChannel(prevChannel, ev.ID)
		}
		r.events[ev.ID] = ev
		r.channelOfEvnt[ev.ID] = ev.ChannelID
		r.addToChannel(ev.ChannelID, ev.ID)

		if n := len(r.byChannel[ev.ChannelID]); n > 1 {
			// Doubleheaders and multi-leg markets share a channel;
			// expected, but worth a periodic trace.
			r.diag.Debug(fmt.Sprintf("multichan:%d", ev.ChannelID),
				"Channel hosts multiple events", "channel", ev.ChannelID, "events", n)
		}
	}

	r.evictLocked()
}

// EventsForChannel returns the event ids live on a channel, in the
// order they were first seen.
func (r *Registry) EventsForChannel(channelID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byChannel[channelID]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// Event returns the event with the given id, if known.
func (r *Registry) Event(eventID int64) (*models.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[eventID]
	return ev, ok
}

// Events returns all known events. Used by the ops server and the
// correlator's cross-channel rescue pass.
func (r *Registry) Events() []*models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	return out
}

// Generation returns the current snapshot generation.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Len returns the number of known events.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

func (r *Registry) addToChannel(channelID, eventID int64) {
	for _, id := range r.byChannel[channelID] {
		if id == eventID {
			return
		}
	}
	r.byChannel[channelID] = append(r.byChannel[channelID], eventID)
}

func (r *Registry) removeFromChannel(channelID, eventID int64) {
	ids := r.byChannel[channelID]
	for i, id := range ids {
		if id == eventID {
			r.byChannel[channelID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byChannel[channelID]) == 0 {
		delete(r.byChannel, channelID)
	}
}

func (r *Registry) evictLocked() {
	for id, ev := range r.events {
		if !r.eviction.Expired(ev, r.generation) {
			continue
		}
		delete(r.events, id)
		if ch, ok := r.channelOfEvnt[id]; ok {
			r.removeFromChannel(ch, id)
			delete(r.channelOfEvnt, id)
		}
	}
}
