package docstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterSink struct {
	mu    sync.Mutex
	totals map[string][2]int64
	calls  int
}

func newFakeCounterSink() *fakeCounterSink {
	return &fakeCounterSink{totals: map[string][2]int64{}}
}

func (f *fakeCounterSink) IncrementTokenCounters(_ context.Context, uid string, input, output int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.totals[uid]
	f.totals[uid] = [2]int64{cur[0] + input, cur[1] + output}
	f.calls++
	return nil
}

func TestTokenFlusher_AppliesQueuedIncrements(t *testing.T) {
	sink := newFakeCounterSink()
	flusher := NewTokenFlusher(sink)
	ctx := context.Background()
	flusher.Start(ctx)

	flusher.Enqueue(TokenIncrement{UID: "user-1", Input: 10, Output: 5})
	flusher.Enqueue(TokenIncrement{UID: "user-1", Input: 3, Output: 2})
	flusher.Enqueue(TokenIncrement{UID: "user-2", Input: 1, Output: 1})

	flusher.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, [2]int64{13, 7}, sink.totals["user-1"])
	assert.Equal(t, [2]int64{1, 1}, sink.totals["user-2"])
}

func TestTokenFlusher_StopIsIdempotent(t *testing.T) {
	sink := newFakeCounterSink()
	flusher := NewTokenFlusher(sink)
	flusher.Start(context.Background())
	flusher.Stop()
	require.NotPanics(t, flusher.Stop)
}

func TestTokenFlusher_DrainsOnStop(t *testing.T) {
	sink := newFakeCounterSink()
	flusher := NewTokenFlusher(sink)
	flusher.Start(context.Background())

	for i := 0; i < 50; i++ {
		flusher.Enqueue(TokenIncrement{UID: "user-1", Input: 1, Output: 1})
	}
	flusher.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, [2]int64{50, 50}, sink.totals["user-1"])
}
