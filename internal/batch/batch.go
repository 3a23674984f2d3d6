// Package batch coalesces concurrent field-level fetches. Pending
// operations are grouped by a string key (the resource or mutation
// field name) and flushed together, either when a key's queue reaches
// the configured size or when the shared flush timer elapses.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/hanpama/restgraph/internal/eventbus"
	"github.com/hanpama/restgraph/internal/events"
	"github.com/hanpama/restgraph/internal/faults"
)

// DefaultInterval is the shared flush timer period.
const DefaultInterval = 50 * time.Millisecond

// DefaultMaxSize is the per-key queue size that triggers an immediate
// flush.
const DefaultMaxSize = 10

// Operation is a queued unit of work. The context is the one passed to
// Add for this operation.
type Operation func(ctx context.Context) (any, error)

// Result carries one operation's outcome. Exactly one Result is
// delivered per Add call, including on cancellation.
type Result struct {
	Value any
	Err   error
}

// Scheduler abstracts timer creation so flush timing is deterministic
// in tests. Schedule runs fn once after d and returns a cancel func.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Batcher groups pending operations by key and flushes them together.
type Batcher struct {
	mu          sync.Mutex
	queues      map[string][]*pending
	maxSize     int
	interval    time.Duration
	sched       Scheduler
	cancelTimer func()
}

type pending struct {
	ctx context.Context
	op  Operation
	ch  chan Result
}

// Option mutates a Batcher at construction time.
type Option func(*Batcher)

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(b *Batcher) { b.sched = s }
}

// New creates a Batcher. Zero maxSize or interval selects the default.
func New(maxSize int, interval time.Duration, opts ...Option) *Batcher {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	b := &Batcher{
		queues:   make(map[string][]*pending),
		maxSize:  maxSize,
		interval: interval,
		sched:    timerScheduler{},
	}
	for _, f := range opts {
		f(b)
	}
	return b
}

// Add enqueues op under key and returns the channel its Result will be
// delivered on. Reaching the configured queue size flushes that key
// immediately; otherwise the shared timer flushes all pending keys.
func (b *Batcher) Add(ctx context.Context, key string, op Operation) <-chan Result {
	p := &pending{ctx: ctx, op: op, ch: make(chan Result, 1)}

	b.mu.Lock()
	b.queues[key] = append(b.queues[key], p)
	if len(b.queues[key]) >= b.maxSize {
		group := b.queues[key]
		delete(b.queues, key)
		b.mu.Unlock()
		go b.run(key, group, "size")
		return p.ch
	}
	if b.cancelTimer == nil {
		b.cancelTimer = b.sched.Schedule(b.interval, b.onTimer)
	}
	b.mu.Unlock()
	return p.ch
}

// Cancel rejects every queued operation under key with a cancellation
// fault and clears the queue. When no keys remain pending, the shared
// timer is stopped.
func (b *Batcher) Cancel(key string) {
	b.mu.Lock()
	group := b.queues[key]
	delete(b.queues, key)
	if len(b.queues) == 0 && b.cancelTimer != nil {
		b.cancelTimer()
		b.cancelTimer = nil
	}
	b.mu.Unlock()

	for _, p := range group {
		p.ch <- Result{Err: faults.Cancelledf("batch key %q cancelled", key)}
	}
}

// Pending returns the number of queued operations under key.
func (b *Batcher) Pending(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[key])
}

// onTimer flushes every pending key. Operations enqueued while the
// flush runs find no armed timer and schedule a fresh one in Add.
func (b *Batcher) onTimer() {
	b.mu.Lock()
	queues := b.queues
	b.queues = make(map[string][]*pending)
	b.cancelTimer = nil
	b.mu.Unlock()

	for key, group := range queues {
		go b.run(key, group, "timer")
	}
}

// run executes one key's snapshot concurrently. Each operation resolves
// or rejects its own channel; a failure in one never contaminates its
// siblings.
func (b *Batcher) run(key string, group []*pending, trigger string) {
	eventbus.Publish(context.Background(), events.BatchFlush{Key: key, Size: len(group), Trigger: trigger})

	var wg sync.WaitGroup
	for _, p := range group {
		wg.Add(1)
		go func(p *pending) {
			defer wg.Done()
			v, err := p.op(p.ctx)
			p.ch <- Result{Value: v, Err: err}
		}(p)
	}
	wg.Wait()
}
