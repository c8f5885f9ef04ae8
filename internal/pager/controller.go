// Package pager keeps an append-only, page-at-a-time view over a data source
// for table surfaces (dashboard table sessions, the boctl lister).
package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"
)

// DefaultPageSize matches the API's default list page size.
const DefaultPageSize = 20

// FetchFunc returns page number page (1-based) of at most pageSize rows.
// Returning fewer than pageSize rows, including none, means the source is exhausted.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// Observer is notified after every fetch attempt that was applied or failed.
type Observer interface {
	PageLoaded(table string, page, rows int, took time.Duration)
	PageFailed(table string, page int, err error)
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
	name     string
}

// WithLogger sets the logger used to report swallowed fetch errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver registers an Observer for page loads and failures.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithName labels the controller in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// State is a point-in-time snapshot of a controller's flags and cursor.
type State struct {
	Len         int  `json:"len"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	IsLoading   bool `json:"is_loading"`
	HasNextPage bool `json:"has_next_page"`
}

// Controller accumulates rows fetched page by page.
//
// At most one fetch is in flight at a time and pages are appended in strictly
// increasing order. ReplaceData, Reset and Close bump a generation counter so a
// fetch that was already running when they were called is discarded on return.
type Controller[T any] struct {
	mu         sync.Mutex
	rows       []T
	initial    []T
	page       int
	pageSize   int
	hasNext    bool
	loading    bool
	closed     bool
	generation uint64

	fetch    FetchFunc[T]
	log      *slog.Logger
	observer Observer
	name     string
}

// New creates a controller seeded with initialRows. A non-empty seed counts as
// page 1, so the first LoadMore requests page 2. fetch may be nil, in which case
// the controller never grows beyond initialRows.
func New[T any](initialRows []T, pageSize int, fetch FetchFunc[T], opts ...Option) *Controller[T] {
	o := options{name: "table"}
	for _, apply := range opts {
		apply(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	c := &Controller[T]{
		initial:  initialRows,
		rows:     slices.Clone(initialRows),
		page:     1,
		pageSize: pageSize,
		hasNext:  true,
		fetch:    fetch,
		log:      o.logger,
		observer: o.observer,
		name:     o.name,
	}
	if len(initialRows) > 0 {
		c.page = 2
	}
	return c
}

// LoadMore fetches the next page and appends it. It is a silent no-op when no
// fetch function is configured, a fetch is already running, the source is
// exhausted or the controller is closed; callers may invoke it redundantly.
//
// Fetch errors are logged and swallowed: rows, cursor and hasNextPage are left
// as they were so the same trigger can retry. LoadMore reports whether a page
// was appended.
func (c *Controller[T]) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if c.fetch == nil || c.closed || c.loading || !c.hasNext {
		c.mu.Unlock()
		return false
	}
	c.loading = true
	page, size, gen := c.page, c.pageSize, c.generation
	c.mu.Unlock()

	start := time.Now()
	rows, err := c.callFetch(ctx, page, size)
	took := time.Since(start)

	c.mu.Lock()
	if gen != c.generation {
		// Replaced, reset or closed while fetching. Whoever bumped the
		// generation already released the lock flag.
		c.mu.Unlock()
		c.log.Debug("discarding stale page", "table", c.name, "page", page)
		return false
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.logFailure(page, err)
		if c.observer != nil {
			c.observer.PageFailed(c.name, page, err)
		}
		return false
	}
	c.rows = append(c.rows, rows...)
	c.page++
	if len(rows) < size {
		c.hasNext = false
	}
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.PageLoaded(c.name, page, len(rows), took)
	}
	return true
}

// callFetch turns a panicking fetch into an ordinary failure so the loading
// flag is always released.
func (c *Controller[T]) callFetch(ctx context.Context, page, size int) (rows []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("pager: fetch page %d panicked: %v", page, r)
		}
	}()
	return c.fetch(ctx, page, size)
}

// Drain calls LoadMore until the source is exhausted, a fetch fails, ctx is
// done or maxPages pages were appended (maxPages <= 0 means no limit). It
// returns the number of pages appended.
func (c *Controller[T]) Drain(ctx context.Context, maxPages int) int {
	loaded := 0
	for maxPages <= 0 || loaded < maxPages {
		if ctx.Err() != nil {
			break
		}
		if !c.LoadMore(ctx) {
			break
		}
		loaded++
	}
	return loaded
}

// ReplaceData swaps the whole collection for rows, which stand for page 1 of
// a new query. The next LoadMore requests page 2. Any in-flight fetch is
// abandoned and its result dropped.
func (c *Controller[T]) ReplaceData(rows []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(rows)
}

// SyncInitialRows re-seeds the controller when rows differ structurally from
// the previously synced seed. An empty seed resets to page 1. It reports
// whether anything changed.
func (c *Controller[T]) SyncInitialRows(rows []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sameRows(c.initial, rows) {
		return false
	}
	c.initial = rows
	if len(rows) == 0 {
		c.resetLocked()
	} else {
		c.replaceLocked(rows)
	}
	return true
}

// Reset empties the collection and starts again from page 1.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Close marks the owning view as gone. LoadMore becomes a no-op and the
// result of an in-flight fetch is discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.loading = false
	c.generation++
}

func (c *Controller[T]) replaceLocked(rows []T) {
	c.rows = slices.Clone(rows)
	c.page = 2
	c.hasNext = len(rows) >= c.pageSize
	c.loading = false
	c.generation++
}

func (c *Controller[T]) resetLocked() {
	c.rows = nil
	c.page = 1
	c.hasNext = true
	c.loading = false
	c.generation++
}

func (c *Controller[T]) logFailure(page int, err error) {
	if errors.Is(err, context.Canceled) {
		c.log.Debug("page fetch cancelled", "table", c.name, "page", page)
		return
	}
	c.log.Warn("page fetch failed", "table", c.name, "page", page, "err", err)
}

// Rows returns a copy of the materialised rows.
func (c *Controller[T]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

// RowsFrom returns a copy of the rows at index i and later.
func (c *Controller[T]) RowsFrom(i int) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i >= len(c.rows) {
		return nil
	}
	return slices.Clone(c.rows[i:])
}

// View returns override when it is non-nil and the controller's rows
// otherwise. It never touches controller state.
func (c *Controller[T]) View(override []T) []T {
	if override != nil {
		return override
	}
	return c.Rows()
}

func (c *Controller[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Page is the next page number LoadMore will request.
func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T]) PageSize() int {
	return c.pageSize
}

func (c *Controller[T]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T]) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNext
}

// CanLoadMore reports whether a surface should offer a "load more" affordance.
func (c *Controller[T]) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch != nil && !c.closed && c.hasNext
}

func (c *Controller[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Len:         len(c.rows),
		Page:        c.page,
		PageSize:    c.pageSize,
		IsLoading:   c.loading,
		HasNextPage: c.hasNext,
	}
}

func sameRows[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
