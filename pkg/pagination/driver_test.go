package pagination

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	offset int
	limit  int
}

// fakeFetcher serves a fixed number of items and records every request.
type fakeFetcher struct {
	mu     sync.Mutex
	total  int
	failAt int // offset whose fetch fails, -1 for none
	err    error
	calls  []call
}

func newFakeFetcher(total int) *fakeFetcher {
	return &fakeFetcher{total: total, failAt: -1}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, offset, limit int) ([]int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{offset, limit})
	f.mu.Unlock()

	if offset == f.failAt {
		return nil, f.err
	}

	var page []int
	for i := offset; i < offset+limit && i < f.total; i++ {
		page = append(page, i)
	}
	return page, nil
}

func (f *fakeFetcher) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func consume(t *testing.T, gen *generator.Generator[int]) ([]int, error) {
	t.Helper()
	var items []int
	for {
		ok, err := gen.HasNext()
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		item, err := gen.Next()
		require.NoError(t, err)
		items = append(items, item)
	}
}

func sequence(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestGenerator_ThreePages(t *testing.T) {
	f := newFakeFetcher(23)
	gen, err := NewGenerator[int](context.Background(), "test/three-pages", f)
	require.NoError(t, err)
	defer gen.Close()

	items, err := consume(t, gen)
	require.NoError(t, err)
	assert.Equal(t, sequence(0, 23), items)
	assert.Equal(t, []call{{0, 10}, {10, 10}, {20, 10}}, f.Calls())

	ok, err := gen.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, generator.StateFinished, gen.State())
}

func TestGenerator_EmptyFirstPage(t *testing.T) {
	f := newFakeFetcher(0)
	gen, err := NewGenerator[int](context.Background(), "test/empty", f)
	require.NoError(t, err)
	defer gen.Close()

	ok, err := gen.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []call{{0, 10}}, f.Calls())
}

func TestGenerator_InvalidBatchSize(t *testing.T) {
	f := newFakeFetcher(23)
	gen, err := NewGenerator[int](context.Background(), "test/invalid", f, WithBatchSize(0))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Nil(t, gen)
	assert.Empty(t, f.Calls())
	assert.Equal(t, float64(0), testutil.ToFloat64(generator.ActiveProducers))
}

func TestGenerator_NilFetcher(t *testing.T) {
	_, err := NewDriver[int]("test/nil", nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGenerator_CloseAfterFiveItems(t *testing.T) {
	f := newFakeFetcher(23)
	gen, err := NewGenerator[int](context.Background(), "test/abandon", f)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ok, err := gen.HasNext()
		require.NoError(t, err)
		require.True(t, ok)
		item, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, i, item)
	}

	require.NoError(t, gen.Close())
	assert.Equal(t, generator.StateClosed, gen.State())
	assert.Equal(t, float64(0), testutil.ToFloat64(generator.ActiveProducers))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []call{{0, 10}}, f.Calls())
}

func TestGenerator_OffsetProgression(t *testing.T) {
	f := newFakeFetcher(50)
	gen, err := NewGenerator[int](context.Background(), "test/offsets", f,
		WithOffset(30), WithBatchSize(7))
	require.NoError(t, err)
	defer gen.Close()

	items, err := consume(t, gen)
	require.NoError(t, err)
	assert.Equal(t, sequence(30, 50), items)
	assert.Equal(t, []call{{30, 7}, {37, 7}, {44, 7}}, f.Calls())
}

func TestGenerator_ExactLengthFinalPage(t *testing.T) {
	f := newFakeFetcher(20)
	gen, err := NewGenerator[int](context.Background(), "test/exact", f)
	require.NoError(t, err)
	defer gen.Close()

	items, err := consume(t, gen)
	require.NoError(t, err)
	assert.Equal(t, sequence(0, 20), items)
	assert.Equal(t, []call{{0, 10}, {10, 10}, {20, 10}}, f.Calls())
}

func TestGenerator_PartialFailure(t *testing.T) {
	f := newFakeFetcher(23)
	f.failAt = 10
	f.err = errors.New("connection reset")

	gen, err := NewGenerator[int](context.Background(), "test/partial", f)
	require.NoError(t, err)
	defer gen.Close()

	items, err := consume(t, gen)
	require.Error(t, err)
	assert.ErrorIs(t, err, f.err)
	assert.Contains(t, err.Error(), "offset 10")
	assert.Equal(t, sequence(0, 10), items)

	ok, err := gen.HasNext()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, generator.StateFailed, gen.State())
}

func TestGenerator_FetchesOnDemand(t *testing.T) {
	f := newFakeFetcher(23)
	gen, err := NewGenerator[int](context.Background(), "test/on-demand", f)
	require.NoError(t, err)
	defer gen.Close()

	assert.Empty(t, f.Calls())

	for i := 0; i < 10; i++ {
		ok, err := gen.HasNext()
		require.NoError(t, err)
		require.True(t, ok)
		_, err = gen.Next()
		require.NoError(t, err)
	}

	// The tenth item was taken but the eleventh not yet requested.
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.Calls(), 1)

	ok, err := gen.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, f.Calls(), 2)
}

func TestGenerator_CloseInterruptsFetch(t *testing.T) {
	entered := make(chan struct{})
	var returned atomic.Bool
	fetcher := FetcherFunc[int](func(ctx context.Context, offset, limit int) ([]int, error) {
		close(entered)
		<-ctx.Done()
		returned.Store(true)
		return nil, ctx.Err()
	})

	gen, err := NewGenerator[int](context.Background(), "test/blocked", fetcher)
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() {
		_, err := gen.HasNext()
		errs <- err
	}()

	<-entered
	require.NoError(t, gen.Close())
	assert.True(t, returned.Load())

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("HasNext did not return after Close")
	}
	assert.Equal(t, generator.StateClosed, gen.State())
}

func TestGenerator_All(t *testing.T) {
	f := newFakeFetcher(23)
	gen, err := NewGenerator[int](context.Background(), "test/range", f, WithBatchSize(5))
	require.NoError(t, err)

	items, err := generator.CollectN(gen.All(), 12)
	require.NoError(t, err)
	assert.Equal(t, sequence(0, 12), items)
	assert.Equal(t, generator.StateClosed, gen.State())
	assert.Equal(t, []call{{0, 5}, {5, 5}, {10, 5}}, f.Calls())
}

func TestDriver_RunDirect(t *testing.T) {
	f := newFakeFetcher(4)
	d, err := NewDriver[int]("test/direct", f, WithBatchSize(3))
	require.NoError(t, err)
	assert.Equal(t, Cursor{Offset: 0, BatchSize: 3}, d.Cursor())

	var got []int
	err = d.Run(context.Background(), func(v int) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestDriver_YieldErrorStops(t *testing.T) {
	f := newFakeFetcher(30)
	d, err := NewDriver[int]("test/yield-error", f)
	require.NoError(t, err)

	stop := errors.New("stop")
	var got []int
	err = d.Run(context.Background(), func(v int) error {
		if v == 3 {
			return stop
		}
		got = append(got, v)
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Len(t, f.Calls(), 1)
}

func TestDriver_Metrics(t *testing.T) {
	const endpoint = "test/metrics"
	pagesBefore := testutil.ToFloat64(PagesFetched.WithLabelValues(endpoint))
	itemsBefore := testutil.ToFloat64(ItemsEmitted.WithLabelValues(endpoint))

	d, err := NewDriver[int](endpoint, newFakeFetcher(13), WithBatchSize(5))
	require.NoError(t, err)
	require.NoError(t, d.Run(context.Background(), func(int) error { return nil }))

	assert.Equal(t, pagesBefore+3, testutil.ToFloat64(PagesFetched.WithLabelValues(endpoint)))
	assert.Equal(t, itemsBefore+13, testutil.ToFloat64(ItemsEmitted.WithLabelValues(endpoint)))
}
