package reactive

import "sync/atomic"

// Effect represents a reactive side effect that runs when its dependencies change.
//
// Effects run immediately when created. A change to anything they read marks
// them pending, and Flush re-runs each pending effect once. They can return a
// Cleanup function that is called before the effect re-runs or when the
// effect is disposed.
type Effect struct {
	id uint64

	// fn is the effect function to run.
	fn func() Cleanup

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	deps deps

	// owner is the Owner that owns this effect.
	owner *Owner

	// pending indicates the effect is scheduled for re-run.
	pending atomic.Bool

	// disposed indicates the effect has been disposed.
	disposed atomic.Bool

	// runs counts executions, including the first one.
	runs atomic.Uint64
}

// MarkDirty marks the effect as needing to re-run.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}

	// CAS so that any number of writes schedule a single re-run
	if e.pending.CompareAndSwap(false, true) {
		e.owner.scheduleEffect(e)
	}
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() uint64 {
	return e.runs.Load()
}

// Pending reports whether the effect is waiting for the next flush.
func (e *Effect) Pending() bool {
	return e.pending.Load()
}

// run executes the effect function.
// A panic in the body propagates to the caller after the tracking context
// has been restored.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.deps.release(e)

	oldListener := setCurrentListener(e)
	defer setCurrentListener(oldListener)

	e.runs.Add(1)
	e.cleanup = e.fn()
}

func (e *Effect) dependOn(s *source) {
	e.deps.add(s)
}

// Dispose stops the effect and unsubscribes it from all sources.
// Disposing twice is a no-op.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.deps.release(e)
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed.Load()
}

// CreateEffect creates and runs a new effect within the current owner context.
// Outside any owner the effect belongs to the process root and lives until
// it is disposed explicitly.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	owner := getCurrentOwner()
	if owner == nil {
		owner = root
	}

	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}
	owner.registerEffect(e)

	e.run()
	return e
}

// Watch is CreateEffect for bodies that never need a cleanup.
func Watch(fn func()) *Effect {
	return CreateEffect(func() Cleanup {
		fn()
		return nil
	})
}

var _ Listener = (*Effect)(nil)
