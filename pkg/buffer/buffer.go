// Package buffer implements the bounded outbound event queue with
// batch-flush timing and drop-oldest eviction.
package buffer

import (
	"sync"
	"time"

	"github.com/streamforge/sse-client-go/pkg/events"
)

// DefaultMaxSize is the default buffered-event capacity.
const DefaultMaxSize = 1000

// Scheduler runs a deferred flush. The engine passes its serialized
// worker queue here so timer-driven flushes execute on the same context
// as every other engine operation; standalone use runs them inline.
type Scheduler func(func())

// Buffer is a bounded, order-preserving queue of outbound records.
//
// Push appends, evicting the oldest record when at capacity. Flushing
// drains the queue atomically and hands the full ordered batch to the
// delivery callback exactly once. With a positive flush interval, the
// first push since the last flush arms a one-shot timer and later pushes
// coalesce into it; with a non-positive interval every push flushes
// immediately.
type Buffer struct {
	mu           sync.Mutex
	records      []events.Record
	maxSize      int
	interval     time.Duration
	pendingFlush bool
	timer        *time.Timer

	deliver  events.DeliveryFunc
	schedule Scheduler
}

// New creates a buffer delivering batches to deliver. maxSize values
// below 1 fall back to DefaultMaxSize. schedule may be nil, in which
// case timer-driven flushes run on the timer goroutine.
func New(maxSize int, interval time.Duration, deliver events.DeliveryFunc, schedule Scheduler) *Buffer {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	if schedule == nil {
		schedule = func(fn func()) { fn() }
	}
	return &Buffer{
		records:  make([]events.Record, 0, maxSize),
		maxSize:  maxSize,
		interval: interval,
		deliver:  deliver,
		schedule: schedule,
	}
}

// Push appends a record, evicting the oldest one if the buffer is
// full, then applies the flush policy. It reports whether an eviction
// happened.
func (b *Buffer) Push(rec events.Record) bool {
	b.mu.Lock()

	dropped := false
	if len(b.records) >= b.maxSize {
		evict := len(b.records) - b.maxSize + 1
		b.records = append(b.records[:0], b.records[evict:]...)
		dropped = true
	}
	b.records = append(b.records, rec)

	if b.interval <= 0 {
		b.mu.Unlock()
		b.Flush()
		return dropped
	}

	if !b.pendingFlush {
		b.pendingFlush = true
		b.timer = time.AfterFunc(b.interval, func() {
			b.schedule(b.Flush)
		})
	}
	b.mu.Unlock()
	return dropped
}

// Flush drains the queue and, if it was non-empty, invokes the delivery
// callback once with the full ordered batch. Flushing an empty queue is
// a no-op that still clears the pending-flush flag, so a timer firing
// after an out-of-band flush does not double-deliver.
func (b *Buffer) Flush() {
	b.mu.Lock()
	b.pendingFlush = false
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.records) == 0 {
		b.mu.Unlock()
		return
	}
	batch := make(events.Batch, len(b.records))
	copy(batch, b.records)
	b.records = b.records[:0]
	b.mu.Unlock()

	if b.deliver != nil {
		b.deliver(batch)
	}
}

// Clear discards all buffered records and any pending flush without
// delivering anything.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = b.records[:0]
	b.pendingFlush = false
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
