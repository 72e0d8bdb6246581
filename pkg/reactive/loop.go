package reactive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// ErrLoopClosed is returned by Run after Close.
var ErrLoopClosed = errors.New("reactive: loop closed")

// PanicError is returned by Loop.Run when a task or an effect panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: panic in loop task: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Loop is a single-goroutine cooperative event loop. Every task runs to
// completion, then the loop flushes pending effects before taking the next
// task. This is the task/microtask rhythm bindings are written against.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	closed atomic.Bool
	logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used for dropped tasks.
func WithLoopLogger(l *slog.Logger) LoopOption {
	return func(loop *Loop) {
		loop.logger = l
	}
}

// NewLoop creates a loop whose queue holds up to queueSize tasks.
func NewLoop(queueSize int, opts ...LoopOption) *Loop {
	if queueSize <= 0 {
		queueSize = 256
	}
	l := &Loop{
		tasks:  make(chan func(), queueSize),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine and never blocks; it reports false if the task was dropped
// because the loop is closed or its queue is full.
func (l *Loop) Dispatch(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	default:
		l.logger.Warn("dispatch queue full, discarding task")
		return false
	}
}

// Run processes tasks until ctx is cancelled, Close is called, or a task
// fails. A panicking task or effect ends the loop with a *PanicError; a
// flush that exceeds its budget ends it with ErrFlushBudget.
func (l *Loop) Run(ctx context.Context) error {
	defer ReleaseGoroutine()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrLoopClosed
		case fn := <-l.tasks:
			if err := l.runTask(fn); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) runTask(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	fn()
	return Flush()
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
}
