package quotes

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"
)

// Broker fans resolved quote batches out to subscribers over bounded
// channels. A slow subscriber loses batches instead of stalling the
// feed pipeline; the drop counter makes the loss visible.
type Broker struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan []models.Quote
	bufSize int
	dropped atomic.Uint64
	closed  bool
}

// NewBroker creates a broker with the given per-subscriber buffer.
func NewBroker(bufSize int) *Broker {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Broker{
		subs:    make(map[int]chan []models.Quote),
		bufSize: bufSize,
	}
}

// Subscribe registers a consumer. The returned cancel func removes the
// subscription and closes the channel.
func (b *Broker) Subscribe() (<-chan []models.Quote, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan []models.Quote, b.bufSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a batch to every subscriber, dropping for those
// whose buffer is full.
func (b *Broker) Publish(batch []models.Quote) {
	if len(batch) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- batch:
		default:
			n := b.dropped.Add(1)
			if n%1000 == 1 {
				slog.Warn("Quote subscriber falling behind, batch dropped", "total_dropped", n)
			}
		}
	}
}

// Dropped returns the number of batches dropped so far.
func (b *Broker) Dropped() uint64 { return b.dropped.Load() }

// Close closes all subscriber channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
