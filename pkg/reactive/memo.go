package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and recomputes on the
// next read.
//
// Memos can also be subscribed to, behaving like signals themselves.
type Memo[T any] struct {
	src source

	// compute is the function that computes the memo's value.
	compute func() T

	// value is the cached computed value.
	value   T
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	valid atomic.Bool

	deps deps

	// computing prevents infinite recursion in circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation runs lazily on first Get.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		src:     source{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary.
// Creates a dependency on this memo for the current listener.
func (m *Memo[T]) Get() T {
	m.src.track()

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// ReadAny implements Cell.
func (m *Memo[T]) ReadAny() any {
	return m.Get()
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the value is invalid.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// MarkDirty invalidates the memo and propagates to subscribers.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.src.notify()
	}
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.src.id
}

func (m *Memo[T]) dependOn(s *source) {
	m.deps.add(s)
}

// recompute runs the computation and updates the cached value.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Circular dependency, keep the stale value
		return
	}
	defer m.computing.Store(false)

	m.deps.release(m)

	old := setCurrentListener(m)
	defer setCurrentListener(old)

	newValue := m.compute()

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

var (
	_ Cell     = (*Memo[int])(nil)
	_ Listener = (*Memo[int])(nil)
)
