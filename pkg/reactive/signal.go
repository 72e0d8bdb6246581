package reactive

import (
	"reflect"
	"sync"
)

// Signal is a reactive value container.
// Reading a Signal's value inside an effect or memo computation subscribes
// that listener to changes of the value.
type Signal[T any] struct {
	src source

	mu    sync.RWMutex
	value T

	// equal decides whether a Set changed the value. Nil means defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{src: source{id: nextID()}, value: initial}
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	v := s.Peek()
	s.src.track()
	return v
}

// ReadAny returns the current value as an interface and subscribes the
// current listener. It implements Cell.
func (s *Signal[T]) ReadAny() any {
	return s.Get()
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies subscribers if it differs from the old one.
func (s *Signal[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update replaces the value with fn(old) under the signal's lock.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.src.notify()
	}
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.src.id
}

// Subscribers returns how many listeners currently depend on the signal.
func (s *Signal[T]) Subscribers() int {
	return s.src.count()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals compares scalars with == and everything else with
// reflect.DeepEqual.
func defaultEquals[T any](a, b T) bool {
	switch any(a).(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return any(a) == any(b)
	}
	return reflect.DeepEqual(a, b)
}

var _ Cell = (*Signal[int])(nil)
