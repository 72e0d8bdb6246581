package reactive

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoopFlushesAfterEachTask(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	results := make(chan int, 4)
	var count *Signal[int]
	owner := NewOwner(nil)
	defer owner.Dispose()

	loop.Dispatch(func() {
		count = NewSignal(0)
		WithOwner(owner, func() {
			Watch(func() { results <- count.Get() })
		})
	})
	loop.Dispatch(func() {
		count.Set(1)
		count.Set(2)
	})

	for _, want := range []int{0, 2} {
		select {
		case got := <-results:
			if got != want {
				t.Fatalf("expected %d, got %d", want, got)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for effect")
		}
	}

	loop.Close()
	if err := <-errCh; !errors.Is(err, ErrLoopClosed) {
		t.Errorf("expected ErrLoopClosed, got %v", err)
	}
	if loop.Dispatch(func() {}) {
		t.Error("dispatch after close should report false")
	}
}

func TestLoopPanicEndsRun(t *testing.T) {
	loop := NewLoop(1)
	loop.Dispatch(func() { panic("boom") })

	err := loop.Run(context.Background())
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %v", err)
	}
	if pe.Value != "boom" || len(pe.Stack) == 0 {
		t.Errorf("unexpected panic error %+v", pe)
	}
}

func TestLoopContextCancel(t *testing.T) {
	loop := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoopQueueFull(t *testing.T) {
	loop := NewLoop(1)
	if !loop.Dispatch(func() {}) {
		t.Fatal("first dispatch should fit")
	}
	if loop.Dispatch(func() {}) {
		t.Error("second dispatch should be dropped")
	}
}
