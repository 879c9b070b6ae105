package docstore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// flushQueueSize bounds how many pending increments the flusher buffers
// before Enqueue starts blocking the caller.
const flushQueueSize = 1024

// TokenIncrement is one pending user-level usage delta (spec.md §6
// "User-level token counters support atomic increment").
type TokenIncrement struct {
	UID    string
	Input  int64
	Output int64
}

// CounterSink is the subset of sessionstore.Store the flusher writes
// through to.
type CounterSink interface {
	IncrementTokenCounters(ctx context.Context, uid string, input, output int64) error
}

// TokenFlusher takes token-usage increments off the request hot path and
// applies them to the counter sink from a background goroutine, the same
// start/stop/stopOnce/wg shape teacher pkg/queue/worker.go uses for its
// polling loop.
type TokenFlusher struct {
	sink   CounterSink
	queue  chan TokenIncrement
	stopCh chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTokenFlusher constructs a flusher bound to sink. Call Start to begin
// draining.
func NewTokenFlusher(sink CounterSink) *TokenFlusher {
	return &TokenFlusher{
		sink:   sink,
		queue:  make(chan TokenIncrement, flushQueueSize),
		stopCh: make(chan struct{}),
	}
}

// Start begins the drain loop in a goroutine.
func (f *TokenFlusher) Start(ctx context.Context) {
	f.wg.Add(1)
	go f.run(ctx)
}

// Stop signals the loop to drain remaining queued increments and exit, then
// waits for it to finish. Safe to call multiple times.
func (f *TokenFlusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	f.wg.Wait()
}

// Enqueue queues one increment for background application. Blocks if the
// queue is full rather than dropping usage data.
func (f *TokenFlusher) Enqueue(inc TokenIncrement) {
	f.queue <- inc
}

func (f *TokenFlusher) run(ctx context.Context) {
	defer f.wg.Done()
	log := slog.With("component", "token_flusher")

	for {
		select {
		case <-f.stopCh:
			f.drain(ctx, log)
			return
		case <-ctx.Done():
			return
		case inc := <-f.queue:
			f.apply(ctx, log, inc)
		}
	}
}

// drain applies whatever is left in the queue without blocking further,
// giving Stop a bounded best-effort flush.
func (f *TokenFlusher) drain(ctx context.Context, log *slog.Logger) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case inc := <-f.queue:
			f.apply(ctx, log, inc)
		default:
			return
		}
	}
}

func (f *TokenFlusher) apply(ctx context.Context, log *slog.Logger, inc TokenIncrement) {
	if err := f.sink.IncrementTokenCounters(ctx, inc.UID, inc.Input, inc.Output); err != nil {
		log.Error("token counter increment failed", "uid", inc.UID, "error", err)
	}
}
