package generator

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/rs/zerolog"
)

// ProduceFunc is the producer routine of a Generator.
//
// It hands items to the consumer through yield, one at a time. yield blocks
// until the consumer requests the next item and returns a non-nil error once
// the generator is shutting down; the producer must return promptly when that
// happens. The context is cancelled by Close and by cancellation of the parent
// context, so blocking I/O inside the producer should use it.
type ProduceFunc[T any] func(ctx context.Context, yield func(T) error) error

// Option configures a Generator.
type Option func(*options)

type options struct {
	name   string
	logger *zerolog.Logger
}

// WithName sets the stream name attached to log events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// Generator is a single-use, single-consumer pull stream over a producer
// goroutine. The zero value is not usable; create instances with New.
type Generator[T any] struct {
	produce ProduceFunc[T]
	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger

	// requests is the "item-requested" signal, items the "item-available"
	// signal. done is closed when the producer goroutine returns.
	requests chan struct{}
	items    chan T
	done     chan struct{}

	state     atomic.Int32
	closing   atomic.Bool
	traversed atomic.Bool
	closeOnce sync.Once

	// Owned by the consumer.
	item     T
	hasItem  bool
	reported bool

	// Written by the producer goroutine before done is closed.
	err error
}

// New creates an idle Generator. The producer goroutine is not started until
// the first HasNext call.
func New[T any](ctx context.Context, produce ProduceFunc[T], opts ...Option) *Generator[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.NewLogger("generator")
	if o.logger != nil {
		logger = *o.logger
	}
	if o.name != "" {
		logger = logger.With().Str("stream", o.name).Logger()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Generator[T]{
		produce:  produce,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		requests: make(chan struct{}),
		items:    make(chan T),
		done:     make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (g *Generator[T]) State() State {
	return State(g.state.Load())
}

// Err returns the failure captured from the producer, if any. Unlike HasNext
// it does not mark the failure as reported.
func (g *Generator[T]) Err() error {
	if g.State() != StateFailed {
		return nil
	}
	return g.err
}

// HasNext reports whether an item is available, blocking until the producer
// has published one or terminated. The first call starts the producer.
//
// Repeated calls without an intervening Next return the same answer. If the
// producer failed, the failure is returned by exactly one call; later calls
// return (false, nil).
func (g *Generator[T]) HasNext() (bool, error) {
	if g.State() == StateClosed {
		return false, nil
	}
	if g.hasItem {
		return true, nil
	}

	switch g.State() {
	case StateIdle:
		if !g.start() {
			return false, nil
		}
	case StateRunning:
	case StateFailed:
		return false, g.reportFailure()
	default:
		return false, nil
	}

	select {
	case g.requests <- struct{}{}:
	case <-g.done:
		return false, g.terminate()
	}

	select {
	case item := <-g.items:
		g.item, g.hasItem = item, true
		return true, nil
	case <-g.done:
		return false, g.terminate()
	}
}

// Next returns the buffered item and clears the slot. It must follow a
// HasNext call that returned true; otherwise it returns ErrNoItemAvailable.
// Producer failures are reported by HasNext only.
func (g *Generator[T]) Next() (T, error) {
	var zero T
	if !g.hasItem || g.State() == StateClosed {
		return zero, ErrNoItemAvailable
	}

	item := g.item
	g.item, g.hasItem = zero, false
	return item, nil
}

// Close stops the producer and waits for its goroutine to return. It is safe
// to call more than once. A generator that never started will never start.
func (g *Generator[T]) Close() error {
	g.closeOnce.Do(func() {
		g.closing.Store(true)
		g.cancel()

		if g.state.CompareAndSwap(int32(StateIdle), int32(StateClosed)) {
			Results.WithLabelValues("closed").Inc()
			return
		}

		<-g.done

		if g.state.CompareAndSwap(int32(StateRunning), int32(StateClosed)) {
			Results.WithLabelValues("closed").Inc()
			g.logger.Debug().Msg("Generator closed before exhaustion")
		}
	})
	return nil
}

// All adapts the generator to a range-over-func loop. Breaking out of the
// loop closes the generator. A producer failure is yielded once as the error
// value and ends the loop. Only one traversal is allowed; a second one, or a
// traversal of a terminated generator, yields ErrAlreadyConsumed.
func (g *Generator[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if g.State().Terminal() || !g.traversed.CompareAndSwap(false, true) {
			yield(zero, ErrAlreadyConsumed)
			return
		}
		defer g.Close()

		for {
			ok, err := g.HasNext()
			if err != nil {
				yield(zero, err)
				return
			}
			if !ok {
				return
			}

			item, err := g.Next()
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// start moves Idle to Running and spawns the producer. It returns false if
// the generator was closed first.
func (g *Generator[T]) start() bool {
	if !g.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return false
	}
	ActiveProducers.Inc()
	g.logger.Debug().Msg("Starting producer")
	go g.run()
	return true
}

func (g *Generator[T]) run() {
	defer close(g.done)
	defer ActiveProducers.Dec()
	defer g.cancel()

	err := g.runProducer()
	if err != nil && !g.closing.Load() {
		g.err = err
	}
}

func (g *Generator[T]) runProducer() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator: producer panicked: %v", r)
		}
	}()

	// The producer computes nothing until the first item is requested.
	select {
	case <-g.requests:
	case <-g.ctx.Done():
		return g.ctx.Err()
	}

	return g.produce(g.ctx, g.yield)
}

// yield publishes item and parks the producer until the next request.
func (g *Generator[T]) yield(item T) error {
	select {
	case g.items <- item:
	case <-g.ctx.Done():
		return g.ctx.Err()
	}

	select {
	case <-g.requests:
		return nil
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
}

// terminate records the end of the producer as seen by the consumer.
func (g *Generator[T]) terminate() error {
	if g.err != nil {
		if g.state.CompareAndSwap(int32(StateRunning), int32(StateFailed)) {
			Results.WithLabelValues("failed").Inc()
			g.logger.Error().Err(g.err).Msg("Generator failed")
		}
		return g.reportFailure()
	}

	// A producer interrupted by Close did not run out of items.
	if g.closing.Load() {
		if g.state.CompareAndSwap(int32(StateRunning), int32(StateClosed)) {
			Results.WithLabelValues("closed").Inc()
			g.logger.Debug().Msg("Generator closed before exhaustion")
		}
		return nil
	}

	if g.state.CompareAndSwap(int32(StateRunning), int32(StateFinished)) {
		Results.WithLabelValues("finished").Inc()
		g.logger.Debug().Msg("Generator exhausted")
	}
	return nil
}

// reportFailure returns the captured failure the first time only.
func (g *Generator[T]) reportFailure() error {
	if g.reported {
		return nil
	}
	g.reported = true
	return g.err
}
