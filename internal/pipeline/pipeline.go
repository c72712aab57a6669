package pipeline

import (
	"log/slog"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/correlator"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/feed"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/logging"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/perf"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/quotes"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/registry"
)

// Pipeline routes each decoded feed frame: snapshots feed the
// registry, deltas run through the resolver and land in the quote
// store and broker. One pipeline per upstream feed connection; Ingest
// is called from a single goroutine so snapshot and delta application
// never interleave.
type Pipeline struct {
	registry *registry.Registry
	resolver *correlator.Resolver
	store    *quotes.Store
	broker   *quotes.Broker
	tracker  *perf.Tracker
	diag     *logging.Throttle
}

// New wires a pipeline over the given components. tracker may be nil.
func New(reg *registry.Registry, res *correlator.Resolver, store *quotes.Store, broker *quotes.Broker, tracker *perf.Tracker) *Pipeline {
	return &Pipeline{
		registry: reg,
		resolver: res,
		store:    store,
		broker:   broker,
		tracker:  tracker,
		diag:     logging.NewThrottle(10 * time.Second),
	}
}

// Ingest decodes one raw frame and applies it. Decode failures drop
// the frame; the stream is self-healing frame to frame.
func (p *Pipeline) Ingest(raw string) {
	decodeStart := time.Now()
	msg, err := feed.Decode(raw)
	decodeTook := time.Since(decodeStart)
	if err != nil {
		if p.tracker != nil {
			p.tracker.RecordDroppedFrame()
		}
		p.diag.Debug("decode", "Dropping undecodable frame", "error", err)
		return
	}

	if msg.HasSnapshot() {
		p.registry.ApplySnapshot(msg.LiveEvents)
	}
	resolveStart := time.Now()
	var resolved int
	if msg.HasDeltas() {
		batch := p.resolver.Resolve(msg)
		resolved = len(batch)
		if resolved > 0 {
			p.store.Apply(batch)
			p.broker.Publish(batch)
		}
	}
	if p.tracker != nil {
		p.tracker.RecordFrame(decodeTook, time.Since(resolveStart), len(msg.LiveEvents), resolved)
	}
	if !msg.HasSnapshot() && !msg.HasDeltas() {
		// Heartbeats and service frames; nothing to do.
		slog.Debug("Frame carried no snapshot or deltas")
	}
}
