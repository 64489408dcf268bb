package generator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// produceInts yields 0..n-1 and then returns err.
func produceInts(n int, err error) ProduceFunc[int] {
	return func(ctx context.Context, yield func(int) error) error {
		for i := 0; i < n; i++ {
			if yerr := yield(i); yerr != nil {
				return yerr
			}
		}
		return err
	}
}

// produceForever yields an increasing counter until shut down.
func produceForever(produced *atomic.Int64) ProduceFunc[int] {
	return func(ctx context.Context, yield func(int) error) error {
		for i := 0; ; i++ {
			produced.Add(1)
			if err := yield(i); err != nil {
				return err
			}
		}
	}
}

func drain(t *testing.T, g *Generator[int]) []int {
	t.Helper()
	var items []int
	for {
		ok, err := g.HasNext()
		require.NoError(t, err)
		if !ok {
			return items
		}
		item, err := g.Next()
		require.NoError(t, err)
		items = append(items, item)
	}
}

func waitDone(t *testing.T, g *Generator[int]) {
	t.Helper()
	select {
	case <-g.done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer goroutine did not exit")
	}
}

func TestGenerator_YieldsInOrder(t *testing.T) {
	g := New(context.Background(), produceInts(5, nil))
	defer g.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, drain(t, g))
	assert.Equal(t, StateFinished, g.State())
	assert.NoError(t, g.Err())
}

func TestGenerator_EmptyProducer(t *testing.T) {
	g := New(context.Background(), produceInts(0, nil))
	defer g.Close()

	ok, err := g.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateFinished, g.State())
}

func TestGenerator_LazyStart(t *testing.T) {
	var calls atomic.Int64
	g := New(context.Background(), func(ctx context.Context, yield func(int) error) error {
		calls.Add(1)
		return yield(1)
	})
	defer g.Close()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateIdle, g.State())
	assert.Zero(t, calls.Load())

	ok, err := g.HasNext()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateRunning, g.State())
	assert.Equal(t, int64(1), calls.Load())
}

func TestGenerator_HasNextIsIdempotent(t *testing.T) {
	g := New(context.Background(), produceInts(2, nil))
	defer g.Close()

	for i := 0; i < 3; i++ {
		ok, err := g.HasNext()
		require.NoError(t, err)
		assert.True(t, ok)
	}

	item, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, item)

	item, err = g.Next()
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Zero(t, item)

	assert.Equal(t, []int{1}, drain(t, g))

	for i := 0; i < 3; i++ {
		ok, err := g.HasNext()
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestGenerator_NextWithoutHasNext(t *testing.T) {
	g := New(context.Background(), produceInts(3, nil))
	defer g.Close()

	_, err := g.Next()
	assert.ErrorIs(t, err, ErrNoItemAvailable)
	assert.Equal(t, StateIdle, g.State())
}

func TestGenerator_Backpressure(t *testing.T) {
	var produced atomic.Int64
	g := New(context.Background(), produceForever(&produced))
	defer g.Close()

	ok, err := g.HasNext()
	require.NoError(t, err)
	require.True(t, ok)

	// The producer is parked until the buffered item is taken and another is requested.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), produced.Load())

	_, err = g.Next()
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), produced.Load())

	ok, err = g.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), produced.Load())
}

func TestGenerator_FailureReportedOnce(t *testing.T) {
	before := testutil.ToFloat64(Results.WithLabelValues("failed"))

	g := New(context.Background(), produceInts(2, errBoom))
	defer g.Close()

	var items []int
	for {
		ok, err := g.HasNext()
		if err != nil {
			assert.ErrorIs(t, err, errBoom)
			assert.False(t, ok)
			break
		}
		require.True(t, ok, "stream ended without reporting the failure")
		item, err := g.Next()
		require.NoError(t, err)
		items = append(items, item)
	}

	assert.Equal(t, []int{0, 1}, items)
	assert.Equal(t, StateFailed, g.State())
	assert.ErrorIs(t, g.Err(), errBoom)

	ok, err := g.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = g.Next()
	assert.ErrorIs(t, err, ErrNoItemAvailable)

	assert.Equal(t, before+1, testutil.ToFloat64(Results.WithLabelValues("failed")))
}

func TestGenerator_PanicIsCaptured(t *testing.T) {
	g := New(context.Background(), func(ctx context.Context, yield func(int) error) error {
		if err := yield(7); err != nil {
			return err
		}
		panic("decoder exploded")
	})
	defer g.Close()

	ok, err := g.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	_, err = g.Next()
	require.NoError(t, err)

	ok, err = g.HasNext()
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "decoder exploded")
	assert.Equal(t, StateFailed, g.State())
}

func TestGenerator_CloseBeforeStart(t *testing.T) {
	var calls atomic.Int64
	g := New(context.Background(), func(ctx context.Context, yield func(int) error) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, g.Close())
	assert.Equal(t, StateClosed, g.State())

	ok, err := g.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Equal(t, StateClosed, g.State())
}

func TestGenerator_CloseStopsProducer(t *testing.T) {
	var produced atomic.Int64
	g := New(context.Background(), produceForever(&produced))

	for i := 0; i < 5; i++ {
		ok, err := g.HasNext()
		require.NoError(t, err)
		require.True(t, ok)
		item, err := g.Next()
		require.NoError(t, err)
		assert.Equal(t, i, item)
	}

	require.NoError(t, g.Close())
	waitDone(t, g)

	assert.Equal(t, StateClosed, g.State())
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveProducers))
	assert.NoError(t, g.Err())

	count := produced.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, produced.Load())

	ok, err := g.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)

	// Idempotent.
	assert.NoError(t, g.Close())
}

func TestGenerator_CloseWithBufferedItem(t *testing.T) {
	g := New(context.Background(), produceInts(3, nil))

	ok, err := g.HasNext()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, g.Close())

	ok, err = g.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = g.Next()
	assert.ErrorIs(t, err, ErrNoItemAvailable)
}

func TestGenerator_CloseInterruptsBlockedProducer(t *testing.T) {
	started := make(chan struct{})
	g := New(context.Background(), func(ctx context.Context, yield func(int) error) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	type result struct {
		ok  bool
		err error
	}
	results := make(chan result, 1)
	go func() {
		ok, err := g.HasNext()
		results <- result{ok, err}
	}()

	<-started
	require.NoError(t, g.Close())

	select {
	case r := <-results:
		assert.False(t, r.ok)
		assert.NoError(t, r.err, "cancellation from Close must not surface")
	case <-time.After(2 * time.Second):
		t.Fatal("HasNext did not return after Close")
	}

	waitDone(t, g)
	assert.Equal(t, StateClosed, g.State())
	assert.NoError(t, g.Err())
}

func TestGenerator_CloseWhileWaitingNeverFinishes(t *testing.T) {
	finished := testutil.ToFloat64(Results.WithLabelValues("finished"))

	for i := 0; i < 100; i++ {
		started := make(chan struct{})
		g := New(context.Background(), func(ctx context.Context, yield func(int) error) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})

		returned := make(chan struct{})
		go func() {
			defer close(returned)
			g.HasNext()
		}()

		<-started
		require.NoError(t, g.Close())
		<-returned

		require.Equal(t, StateClosed, g.State(), "run %d", i)
		ok, err := g.HasNext()
		assert.False(t, ok)
		assert.NoError(t, err)
	}

	assert.Equal(t, finished, testutil.ToFloat64(Results.WithLabelValues("finished")))
}

func TestGenerator_ParentCancellationIsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := New(ctx, func(ctx context.Context, yield func(int) error) error {
		if err := yield(1); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	})
	defer g.Close()

	ok, err := g.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	_, err = g.Next()
	require.NoError(t, err)

	cancel()

	ok, err = g.HasNext()
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, g.State())
}

func TestGenerator_All(t *testing.T) {
	g := New(context.Background(), produceInts(4, nil))

	var items []int
	for item, err := range g.All() {
		require.NoError(t, err)
		items = append(items, item)
	}

	assert.Equal(t, []int{0, 1, 2, 3}, items)
	assert.Equal(t, StateFinished, g.State())
}

func TestGenerator_AllBreakClosesGenerator(t *testing.T) {
	var produced atomic.Int64
	g := New(context.Background(), produceForever(&produced))

	var items []int
	for item, err := range g.All() {
		require.NoError(t, err)
		items = append(items, item)
		if len(items) == 5 {
			break
		}
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, items)
	assert.Equal(t, StateClosed, g.State())
	waitDone(t, g)
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveProducers))
}

func TestGenerator_AllYieldsFailureOnce(t *testing.T) {
	g := New(context.Background(), produceInts(3, errBoom))

	var items []int
	var errs []error
	for item, err := range g.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}

	assert.Equal(t, []int{0, 1, 2}, items)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errBoom)
}

func TestGenerator_AllSecondTraversal(t *testing.T) {
	g := New(context.Background(), produceInts(2, nil))

	items, err := Collect(g.All())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, items)

	items, err = Collect(g.All())
	assert.ErrorIs(t, err, ErrAlreadyConsumed)
	assert.Empty(t, items)
}

func TestGenerator_AllOnClosedGenerator(t *testing.T) {
	g := New(context.Background(), produceInts(2, nil))
	require.NoError(t, g.Close())

	_, err := First(g.All())
	assert.ErrorIs(t, err, ErrAlreadyConsumed)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateRunning, "running", false},
		{StateFinished, "finished", true},
		{StateFailed, "failed", true},
		{StateClosed, "closed", true},
		{State(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}
