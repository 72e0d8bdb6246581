package reactive

// batch holds the listeners notified while Batch runs.
type batch struct {
	pending []Listener
}

// Batch runs fn with change notifications held back. When fn returns, every
// listener touched inside is marked dirty once, in the order it was first
// notified. A Batch inside another joins the outer one.
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	s := current()
	if s.batch != nil {
		fn()
		return
	}

	b := &batch{}
	s.batch = b
	defer func() {
		s.batch = nil
		b.flush()
	}()
	fn()
}

func (b *batch) flush() {
	seen := make(map[uint64]bool, len(b.pending))
	for _, l := range b.pending {
		if seen[l.ID()] {
			continue
		}
		seen[l.ID()] = true
		l.MarkDirty()
	}
}

// Untracked runs fn without recording signal reads as dependencies of the
// running listener. Signal.Peek does the same for a single read.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedValue returns the result of fn, read without tracking.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() { v = fn() })
	return v
}
