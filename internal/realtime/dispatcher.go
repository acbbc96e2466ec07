package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"edu_social_client/pkg/logger"

	"go.uber.org/zap"
)

// HandlerFunc apply one payload, an error drops the payload
type HandlerFunc func(ctx context.Context, body []byte) error

// ErrDispatcherClosed Enqueue after Run returned
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Stats dispatcher counters
type Stats struct {
	Handled   uint64 `json:"handled"`
	Dropped   uint64 `json:"dropped"`
	Unrouted  uint64 `json:"unrouted"`
	QueueLen  int    `json:"queueLen"`
	QueueSize int    `json:"queueSize"`
}

// Dispatcher bounded push queue with one consumer loop, handlers never run concurrently
type Dispatcher struct {
	queue  chan Envelope
	mu     sync.RWMutex
	routes map[string]HandlerFunc
	done   chan struct{}
	once   sync.Once

	handled  atomic.Uint64
	dropped  atomic.Uint64
	unrouted atomic.Uint64
}

// NewDispatcher create Dispatcher with queue capacity size
func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		queue:  make(chan Envelope, size),
		routes: make(map[string]HandlerFunc),
		done:   make(chan struct{}),
	}
}

// Handle route destination to h
func (d *Dispatcher) Handle(destination string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[destination] = h
}

// Enqueue block until the envelope is queued, ctx is done or the dispatcher stops
func (d *Dispatcher) Enqueue(ctx context.Context, env Envelope) error {
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.queue <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherClosed
	}
}

// TryEnqueue queue without blocking, false when full or stopped
func (d *Dispatcher) TryEnqueue(env Envelope) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- env:
		return true
	default:
		return false
	}
}

// Run consume the queue until ctx is done
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.once.Do(func() { close(d.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-d.queue:
			d.dispatch(ctx, env)
		}
	}
}

// Drain dispatch what is still queued after Run returned, return the number of envelopes taken
func (d *Dispatcher) Drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n
		case env := <-d.queue:
			d.dispatch(ctx, env)
			n++
		default:
			return n
		}
	}
}

// Stats counters snapshot
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Handled:   d.handled.Load(),
		Dropped:   d.dropped.Load(),
		Unrouted:  d.unrouted.Load(),
		QueueLen:  len(d.queue),
		QueueSize: cap(d.queue),
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, env Envelope) {
	d.mu.RLock()
	h, ok := d.routes[env.Destination]
	d.mu.RUnlock()
	if !ok {
		d.unrouted.Add(1)
		logger.Log.Debug("push without route", zap.String("destination", env.Destination))
		return
	}

	if err := d.safeCall(ctx, h, env); err != nil {
		d.dropped.Add(1)
		logger.Log.Warn("push payload dropped",
			zap.String("destination", env.Destination),
			zap.Int("size", len(env.Body)),
			zap.Error(err),
		)
		return
	}
	d.handled.Add(1)
}

func (d *Dispatcher) safeCall(ctx context.Context, h HandlerFunc, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, env.Body)
}
