package feed

import (
	"context"
	"sync"

	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"

	"go.uber.org/zap"
)

// Loader fetch one page of view
type Loader[T any] func(ctx context.Context, view string, page, size int) (Page[T], error)

// State snapshot of a controller
type State[T any] struct {
	View          string `json:"view"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	Loaded        bool   `json:"loaded"`
	Items         []T    `json:"items"`
}

// Controller hold one page of items for a named view.
//
// Only the most recently issued load may replace the held list, an older
// response that resolves later is discarded with ErrSuperseded.
type Controller[T any] struct {
	mu   sync.Mutex
	name string
	load Loader[T]

	view          string
	page          int
	size          int
	totalPages    int
	totalElements int64
	loaded        bool
	items         []T

	gen    uint64
	cancel context.CancelFunc

	onLoaded func(items []T)
	onChange func()
}

// Option configure Controller
type Option[T any] func(*Controller[T])

// WithPageSize default page size
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) { c.size = size }
}

// WithView initial view, nothing is loaded
func WithView[T any](view string) Option[T] {
	return func(c *Controller[T]) { c.view = view }
}

// OnLoaded called with a copy of the items after every successful load
func OnLoaded[T any](fn func(items []T)) Option[T] {
	return func(c *Controller[T]) { c.onLoaded = fn }
}

// OnChange called after the held list changed
func OnChange[T any](fn func()) Option[T] {
	return func(c *Controller[T]) { c.onChange = fn }
}

// New create Controller, name is used in logs
func New[T any](name string, load Loader[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{name: name, load: load, size: 10}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPage fetch page of view and replace the held list on success.
// On failure the previous list, page and view are kept.
func (c *Controller[T]) LoadPage(ctx context.Context, view string, page, size int) error {
	if page < 0 {
		return errprocess.Validation("page index must not be negative")
	}

	c.mu.Lock()
	if size <= 0 {
		size = c.size
	}
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	res, err := c.load(loadCtx, view, page, size)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		logger.Log.Debug("page load superseded", zap.String("feed", c.name), zap.String("view", view), zap.Int("page", page))
		return errprocess.ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		logger.Log.Error("page load failed",
			zap.String("feed", c.name),
			zap.String("view", view),
			zap.Int("page", page),
			zap.Error(err),
		)
		return err
	}

	pages, elements := res.Totals(size)
	c.items = append(make([]T, 0, len(res.Content)), res.Content...)
	c.view, c.page, c.size = view, page, size
	c.totalPages, c.totalElements = pages, elements
	c.loaded = true
	items := c.copyLocked()
	onLoaded, onChange := c.onLoaded, c.onChange
	c.mu.Unlock()

	if onLoaded != nil {
		onLoaded(items)
	}
	if onChange != nil {
		onChange()
	}
	return nil
}

// SetView switch to view at page 0, no-op when view is already current
func (c *Controller[T]) SetView(ctx context.Context, view string) error {
	c.mu.Lock()
	same := view == c.view
	c.mu.Unlock()
	if same {
		return nil
	}
	return c.LoadPage(ctx, view, 0, 0)
}

// Reload fetch the current page of the current view again
func (c *Controller[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	view, page := c.view, c.page
	c.mu.Unlock()
	return c.LoadPage(ctx, view, page, 0)
}

// GoToPage load page n, out of [0, totalPages) is ignored
func (c *Controller[T]) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	inRange := n >= 0 && n < c.totalPages
	view := c.view
	c.mu.Unlock()
	if !inRange {
		return nil
	}
	return c.LoadPage(ctx, view, n, 0)
}

// NextPage GoToPage(page+1)
func (c *Controller[T]) NextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.CurrentPage()+1)
}

// PreviousPage GoToPage(page-1)
func (c *Controller[T]) PreviousPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.CurrentPage()-1)
}

// CurrentPage index of the held page
func (c *Controller[T]) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// View current view
func (c *Controller[T]) View() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Items copy of the held list
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// State snapshot
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		View:          c.view,
		Page:          c.page,
		Size:          c.size,
		TotalPages:    c.totalPages,
		TotalElements: c.totalElements,
		Loaded:        c.loaded,
		Items:         c.copyLocked(),
	}
}

// Mutate replace the held list with fn(list). fn may edit elements in place.
// changed reports whether OnChange should fire.
func (c *Controller[T]) Mutate(fn func(items []T) (out []T, changed bool)) bool {
	c.mu.Lock()
	out, changed := fn(c.items)
	if changed {
		c.items = out
	}
	onChange := c.onChange
	c.mu.Unlock()

	if changed && onChange != nil {
		onChange()
	}
	return changed
}

// Prepend insert item at the head of the held list
func (c *Controller[T]) Prepend(item T) {
	c.Mutate(func(items []T) ([]T, bool) {
		return append([]T{item}, items...), true
	})
}

func (c *Controller[T]) copyLocked() []T {
	return append(make([]T, 0, len(c.items)), c.items...)
}
