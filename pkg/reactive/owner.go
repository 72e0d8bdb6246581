package reactive

import (
	"sync"
	"sync/atomic"
)

// Owner is the scope of a mounted subtree. It owns the effects created
// under it, cleanup callbacks, context values and child owners, and
// disposing it disposes all of them.
//
// Owners created with a nil parent hang off the process root, which is
// what Flush walks.
type Owner struct {
	id       uint64
	parent   *Owner
	disposed atomic.Bool

	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()
	queue    []*Effect
	values   map[any]any
}

// root is the process-wide owner. It is never disposed.
var root = &Owner{id: nextID()}

// NewOwner creates an Owner under parent, or under the process root when
// parent is nil.
func NewOwner(parent *Owner) *Owner {
	if parent == nil {
		parent = root
	}
	o := &Owner{id: nextID(), parent: parent}

	parent.mu.Lock()
	parent.children = append(parent.children, o)
	parent.mu.Unlock()
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// EffectCount returns the number of live effects registered directly on
// this Owner.
func (o *Owner) EffectCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.effects)
}

// ChildCount returns the number of live child Owners.
func (o *Owner) ChildCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.children)
}

// Idle reports whether the Owner holds no children, effects or cleanups.
func (o *Owner) Idle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.children) == 0 && len(o.effects) == 0 && len(o.cleanups) == 0
}

// registerEffect adds e to the owner. An effect created under a disposed
// owner is disposed right after its first run.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		e.disposed.Store(true)
		return
	}
	o.mu.Lock()
	o.effects = append(o.effects, e)
	o.mu.Unlock()
}

// OnCleanup registers fn to run when the owner is disposed. On a disposed
// owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.mu.Lock()
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

func (o *Owner) scheduleEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}
	o.mu.Lock()
	o.queue = append(o.queue, e)
	o.mu.Unlock()
}

// snapshot returns a copy of the children, taken under the lock.
func (o *Owner) snapshot() []*Owner {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Owner(nil), o.children...)
}

// runPending runs the queued effects of o, then of its children, in
// scheduling order. Effects not reached because the budget ran out or an
// effect panicked go back to the front of the queue.
func (o *Owner) runPending(budget EffectBudget) {
	if o.disposed.Load() {
		return
	}

	o.mu.Lock()
	queue := o.queue
	o.queue = nil
	o.mu.Unlock()

	next := 0
	defer func() {
		if next < len(queue) {
			o.mu.Lock()
			o.queue = append(queue[next:len(queue):len(queue)], o.queue...)
			o.mu.Unlock()
		}
	}()
	for next < len(queue) {
		e := queue[next]
		if !e.pending.Load() {
			next++
			continue
		}
		if budget != nil && budget.CheckEffectRun() != nil {
			return
		}
		// A panicking effect is not queued again.
		next++
		e.run()
	}

	for _, child := range o.snapshot() {
		child.runPending(budget)
	}
}

// hasPending reports whether o or a descendant has queued effects.
func (o *Owner) hasPending() bool {
	if o.disposed.Load() {
		return false
	}
	o.mu.Lock()
	queued := len(o.queue) > 0
	o.mu.Unlock()
	if queued {
		return true
	}
	for _, child := range o.snapshot() {
		if child.hasPending() {
			return true
		}
	}
	return false
}

// Dispose disposes the owner: children first, newest first, then its
// effects, then its cleanups in reverse registration order. Disposing twice
// is a no-op.
func (o *Owner) Dispose() {
	if o == root || o.disposed.Swap(true) {
		return
	}

	if p := o.parent; p != nil {
		p.mu.Lock()
		for i, c := range p.children {
			if c == o {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
	}

	o.mu.Lock()
	children, effects, cleanups := o.children, o.effects, o.cleanups
	o.children, o.effects, o.cleanups, o.queue = nil, nil, nil, nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for _, e := range effects {
		e.Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// SetValue sets a context value on this Owner.
func (o *Owner) SetValue(key, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetValue looks key up on o and then on its ancestors.
func (o *Owner) GetValue(key any) any {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return v
		}
	}
	return nil
}

// SetContext sets a context value for the current owner scope.
// It is visible to all descendant owners via GetContext.
func SetContext(key, value any) {
	if owner := getCurrentOwner(); owner != nil {
		owner.SetValue(key, value)
	}
}

// GetContext retrieves a context value from the nearest owner in the
// hierarchy. Returns nil if no value is found.
func GetContext(key any) any {
	if owner := getCurrentOwner(); owner != nil {
		return owner.GetValue(key)
	}
	return nil
}

// CurrentOwner returns the owner new effects are registered on, or nil
// outside any owner scope.
func CurrentOwner() *Owner {
	return getCurrentOwner()
}
