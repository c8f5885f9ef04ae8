package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwari-pos/backoffice/internal/logger"
)

type row struct {
	ID   int
	Name string
}

// stubSource serves fixed page lengths and records every request.
type stubSource struct {
	mu       sync.Mutex
	lengths  map[int]int
	requests []int
	err      error
}

func (s *stubSource) fetch(_ context.Context, page, pageSize int) ([]row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, page)
	if s.err != nil {
		return nil, s.err
	}
	n := s.lengths[page]
	out := make([]row, n)
	for i := range out {
		id := (page-1)*pageSize + i + 1
		out[i] = row{ID: id, Name: fmt.Sprintf("row-%d", id)}
	}
	return out, nil
}

func (s *stubSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestController(initial []row, pageSize int, fetch FetchFunc[row]) *Controller[row] {
	return New(initial, pageSize, fetch, WithLogger(logger.Discard()), WithName("test"))
}

func TestLoadMore_ExampleScenario(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 10, 2: 10, 3: 10, 4: 4}}
	c := newTestController(nil, 10, src.fetch)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		assert.True(t, c.LoadMore(ctx), "load %d", i+1)
	}

	assert.Equal(t, 34, c.Len())
	assert.False(t, c.HasNextPage())
	assert.Equal(t, []int{1, 2, 3, 4}, src.requests)

	assert.False(t, c.LoadMore(ctx))
	assert.Equal(t, 4, src.calls())
}

func TestLoadMore_AppendsInOrder(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 3, 2: 3, 3: 1}}
	c := newTestController(nil, 3, src.fetch)
	ctx := context.Background()

	prev := 0
	for c.LoadMore(ctx) {
		require.GreaterOrEqual(t, c.Len(), prev)
		prev = c.Len()
	}

	rows := c.Rows()
	require.Len(t, rows, 7)
	for i, r := range rows {
		assert.Equal(t, i+1, r.ID)
	}
}

func TestLoadMore_ExactPageCostsOneExtraFetch(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 5, 2: 5}}
	c := newTestController(nil, 5, src.fetch)
	ctx := context.Background()

	assert.True(t, c.LoadMore(ctx))
	assert.True(t, c.LoadMore(ctx))
	assert.True(t, c.HasNextPage(), "a full page leaves the door open")

	assert.True(t, c.LoadMore(ctx))
	assert.False(t, c.HasNextPage())
	assert.Equal(t, 10, c.Len())
	assert.Equal(t, []int{1, 2, 3}, src.requests)
}

func TestLoadMore_NoFetchFunc(t *testing.T) {
	c := newTestController([]row{{ID: 1}}, 10, nil)

	assert.False(t, c.LoadMore(context.Background()))
	assert.False(t, c.CanLoadMore())
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.IsLoading())
}

func TestLoadMore_SeededStartsAtPageTwo(t *testing.T) {
	src := &stubSource{lengths: map[int]int{2: 2}}
	c := newTestController([]row{{ID: 1}, {ID: 2}}, 2, src.fetch)

	assert.Equal(t, 2, c.Page())
	assert.True(t, c.LoadMore(context.Background()))
	assert.Equal(t, []int{2}, src.requests)
	assert.Equal(t, 4, c.Len())
}

func TestLoadMore_NoConcurrentFetch(t *testing.T) {
	var count atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context, page, size int) ([]row, error) {
		count.Add(1)
		close(started)
		<-release
		return make([]row, size), nil
	}
	c := newTestController(nil, 5, fetch)

	done := make(chan bool)
	go func() { done <- c.LoadMore(context.Background()) }()
	<-started

	assert.True(t, c.IsLoading())
	assert.True(t, c.HasNextPage())
	assert.False(t, c.LoadMore(context.Background()), "second call while loading is a no-op")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), count.Load())
	assert.False(t, c.IsLoading())
	assert.Equal(t, 2, c.Page())
}

func TestLoadMore_ErrorIsSwallowedAndRetryable(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 4, 2: 4}}
	c := newTestController(nil, 4, src.fetch)
	ctx := context.Background()
	require.True(t, c.LoadMore(ctx))

	src.err = errors.New("connection reset")
	before := c.State()
	assert.False(t, c.LoadMore(ctx))
	assert.Equal(t, before, c.State(), "failed fetch leaves state untouched")

	src.err = nil
	assert.True(t, c.LoadMore(ctx))
	assert.Equal(t, []int{1, 2, 2}, src.requests)
	assert.Equal(t, 8, c.Len())
}

func TestLoadMore_PanickingFetchIsRetryable(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 3}}
	obs := &recordingObserver{}
	calls := 0
	fetch := func(ctx context.Context, page, size int) ([]row, error) {
		calls++
		if calls == 1 {
			panic("nil map in source")
		}
		return src.fetch(ctx, page, size)
	}
	c := New(nil, 4, fetch, WithObserver(obs), WithLogger(logger.Discard()))
	ctx := context.Background()

	assert.False(t, c.LoadMore(ctx))
	assert.False(t, c.IsLoading())
	assert.Equal(t, []int{1}, obs.failed)

	assert.True(t, c.LoadMore(ctx))
	assert.Equal(t, 3, c.Len())
}

func TestLoadMore_IdempotentAfterExhaustion(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 2}}
	c := newTestController(nil, 5, src.fetch)
	ctx := context.Background()
	require.True(t, c.LoadMore(ctx))

	snapshot := c.State()
	rows := c.Rows()
	for i := 0; i < 5; i++ {
		assert.False(t, c.LoadMore(ctx))
	}
	assert.Equal(t, snapshot, c.State())
	assert.Equal(t, rows, c.Rows())
	assert.Equal(t, 1, src.calls())
}

func TestReset_ClearsState(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 1}}
	c := newTestController([]row{{ID: 9}}, 3, src.fetch)
	ctx := context.Background()
	require.True(t, c.LoadMore(ctx))
	require.False(t, c.HasNextPage())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.HasNextPage())
	assert.False(t, c.IsLoading())
	assert.Equal(t, 1, c.Page())

	require.True(t, c.LoadMore(ctx))
	assert.Equal(t, []int{2, 1}, src.requests)
}

func TestReplaceData_ResynchronisesCursor(t *testing.T) {
	src := &stubSource{lengths: map[int]int{2: 1}}
	c := newTestController(nil, 3, src.fetch)

	c.ReplaceData([]row{{ID: 1}, {ID: 2}, {ID: 3}})
	assert.True(t, c.HasNextPage())
	assert.Equal(t, 2, c.Page())
	require.True(t, c.LoadMore(context.Background()))
	assert.Equal(t, []int{2}, src.requests)

	c.ReplaceData([]row{{ID: 1}})
	assert.False(t, c.HasNextPage())
	assert.False(t, c.LoadMore(context.Background()))
	assert.Equal(t, 1, c.Len())
}

func TestReplaceData_DiscardsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context, page, size int) ([]row, error) {
		close(started)
		<-release
		return []row{{ID: 100}, {ID: 101}}, nil
	}
	c := newTestController(nil, 2, fetch)

	done := make(chan bool)
	go func() { done <- c.LoadMore(context.Background()) }()
	<-started

	c.ReplaceData([]row{{ID: 1}, {ID: 2}})
	assert.False(t, c.IsLoading(), "replace clears the lock")

	close(release)
	assert.False(t, <-done)
	assert.Equal(t, []row{{ID: 1}, {ID: 2}}, c.Rows())
	assert.Equal(t, 2, c.Page())
}

func TestReplaceData_CopiesInput(t *testing.T) {
	c := newTestController(nil, 2, nil)
	in := []row{{ID: 1}, {ID: 2}}
	c.ReplaceData(in)
	in[0].ID = 42

	assert.Equal(t, 1, c.Rows()[0].ID)
}

func TestSyncInitialRows(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 2, 2: 2}}
	seed := []row{{ID: 1}, {ID: 2}}
	c := newTestController(seed, 2, src.fetch)

	assert.False(t, c.SyncInitialRows([]row{{ID: 1}, {ID: 2}}), "deep-equal seed is not a change")

	assert.True(t, c.SyncInitialRows([]row{{ID: 7}}))
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.HasNextPage())

	assert.True(t, c.SyncInitialRows(nil))
	assert.Equal(t, 1, c.Page())
	assert.True(t, c.HasNextPage())
	assert.False(t, c.SyncInitialRows([]row{}), "nil and empty are the same seed")
}

func TestClose_StopsLoadingAndDropsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context, page, size int) ([]row, error) {
		close(started)
		<-release
		return []row{{ID: 1}}, nil
	}
	c := newTestController(nil, 2, fetch)

	done := make(chan bool)
	go func() { done <- c.LoadMore(context.Background()) }()
	<-started

	c.Close()
	close(release)
	assert.False(t, <-done)
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Closed())
	assert.False(t, c.CanLoadMore())
	assert.False(t, c.LoadMore(context.Background()))
}

func TestView_OverrideDoesNotFeedBack(t *testing.T) {
	c := newTestController([]row{{ID: 1}}, 2, nil)
	override := []row{{ID: 5}, {ID: 6}}

	assert.Equal(t, override, c.View(override))
	assert.Equal(t, []row{{ID: 1}}, c.View(nil))
	assert.Equal(t, 1, c.Len())
}

func TestRowsFrom(t *testing.T) {
	c := newTestController([]row{{ID: 1}, {ID: 2}, {ID: 3}}, 3, nil)

	assert.Equal(t, []row{{ID: 2}, {ID: 3}}, c.RowsFrom(1))
	assert.Nil(t, c.RowsFrom(3))
	assert.Len(t, c.RowsFrom(-1), 3)
}

func TestDrain(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 2, 2: 2, 3: 2, 4: 1}}
	c := newTestController(nil, 2, src.fetch)

	assert.Equal(t, 2, c.Drain(context.Background(), 2))
	assert.Equal(t, 4, c.Len())

	assert.Equal(t, 2, c.Drain(context.Background(), 0))
	assert.Equal(t, 7, c.Len())
	assert.False(t, c.HasNextPage())
}

func TestDrain_StopsOnCancelledContext(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 2}}
	c := newTestController(nil, 2, src.fetch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, c.Drain(ctx, 0))
	assert.Equal(t, 0, src.calls())
}

func TestNew_DefaultPageSize(t *testing.T) {
	c := newTestController(nil, 0, nil)
	assert.Equal(t, DefaultPageSize, c.PageSize())
}

type recordingObserver struct {
	mu     sync.Mutex
	loaded []int
	failed []int
}

func (o *recordingObserver) PageLoaded(table string, page, rows int, took time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded = append(o.loaded, page)
}

func (o *recordingObserver) PageFailed(table string, page int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, page)
}

func TestObserver(t *testing.T) {
	src := &stubSource{lengths: map[int]int{1: 2, 2: 1}}
	obs := &recordingObserver{}
	c := New(nil, 2, src.fetch, WithObserver(obs), WithLogger(logger.Discard()))
	ctx := context.Background()

	c.LoadMore(ctx)
	src.err = errors.New("boom")
	c.LoadMore(ctx)
	src.err = nil
	c.LoadMore(ctx)

	assert.Equal(t, []int{1, 2}, obs.loaded)
	assert.Equal(t, []int{2}, obs.failed)
}
