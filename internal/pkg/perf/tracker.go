package perf

import (
	"log/slog"
	"sync"
	"time"
)

// Tracker accumulates runtime counters for the feed and submission
// paths. Mutating methods are safe for concurrent use.
type Tracker struct {
	mu sync.RWMutex

	// Feed ingestion
	FramesDecoded   int
	FramesDropped   int
	SnapshotEvents  int
	QuotesResolved  int
	DecodeDuration  time.Duration
	ResolveDuration time.Duration

	// Wager submission, keyed by outcome wire name
	Submissions map[string]int
	SubmitTime  time.Duration
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{Submissions: make(map[string]int)}
}

// RecordFrame records one decoded feed frame and what it yielded.
func (t *Tracker) RecordFrame(decode, resolve time.Duration, snapshotEvents, quotes int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.FramesDecoded++
	t.SnapshotEvents += snapshotEvents
	t.QuotesResolved += quotes
	t.DecodeDuration += decode
	t.ResolveDuration += resolve
}

// RecordDroppedFrame records one frame that failed to decode.
func (t *Tracker) RecordDroppedFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.FramesDropped++
}

// RecordSubmission records one per-session attempt by outcome name.
func (t *Tracker) RecordSubmission(outcome string, took time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Submissions[outcome]++
	t.SubmitTime += took
}

// Snapshot is a point-in-time copy safe to serialize.
type Snapshot struct {
	FramesDecoded  int            `json:"frames_decoded"`
	FramesDropped  int            `json:"frames_dropped"`
	SnapshotEvents int            `json:"snapshot_events"`
	QuotesResolved int            `json:"quotes_resolved"`
	AvgDecodeUs    int64          `json:"avg_decode_us"`
	AvgResolveUs   int64          `json:"avg_resolve_us"`
	Submissions    map[string]int `json:"submissions"`
	AvgSubmitMs    int64          `json:"avg_submit_ms"`
}

// Stats returns a snapshot of the current counters.
func (t *Tracker) Stats() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		FramesDecoded:  t.FramesDecoded,
		FramesDropped:  t.FramesDropped,
		SnapshotEvents: t.SnapshotEvents,
		QuotesResolved: t.QuotesResolved,
		Submissions:    make(map[string]int, len(t.Submissions)),
	}
	for k, v := range t.Submissions {
		s.Submissions[k] = v
	}
	if t.FramesDecoded > 0 {
		s.AvgDecodeUs = (t.DecodeDuration / time.Duration(t.FramesDecoded)).Microseconds()
		s.AvgResolveUs = (t.ResolveDuration / time.Duration(t.FramesDecoded)).Microseconds()
	}
	if n := totalSubmissions(t.Submissions); n > 0 {
		s.AvgSubmitMs = (t.SubmitTime / time.Duration(n)).Milliseconds()
	}
	return s
}

// LogSummary emits the accumulated counters at info level.
func (t *Tracker) LogSummary() {
	s := t.Stats()
	if s.FramesDecoded == 0 && len(s.Submissions) == 0 {
		slog.Info("No runtime statistics collected yet")
		return
	}
	slog.Info("Runtime statistics",
		"frames_decoded", s.FramesDecoded,
		"frames_dropped", s.FramesDropped,
		"snapshot_events", s.SnapshotEvents,
		"quotes_resolved", s.QuotesResolved,
		"avg_decode_us", s.AvgDecodeUs,
		"avg_resolve_us", s.AvgResolveUs,
		"submissions", s.Submissions,
		"avg_submit_ms", s.AvgSubmitMs)
}

func totalSubmissions(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
