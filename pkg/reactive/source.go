package reactive

import "sync"

// source is the subscriber list shared by Signal and Memo. Subscribers are
// notified in the order they first read the source.
type source struct {
	id uint64

	mu   sync.RWMutex
	subs []Listener
}

func (s *source) subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := l.ID()
	for _, sub := range s.subs {
		if sub.ID() == id {
			return
		}
	}
	s.subs = append(s.subs, l)
}

func (s *source) unsubscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := l.ID()
	for i, sub := range s.subs {
		if sub.ID() == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *source) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// track records a read by the running listener.
func (s *source) track() {
	l := getCurrentListener()
	if l == nil {
		return
	}
	s.subscribe(l)
	if d, ok := l.(interface{ dependOn(*source) }); ok {
		d.dependOn(s)
	}
}

// notify tells every subscriber the value changed. Inside Batch the
// subscribers are queued until the batch ends.
func (s *source) notify() {
	s.mu.RLock()
	subs := append([]Listener(nil), s.subs...)
	s.mu.RUnlock()

	if b := current().batch; b != nil {
		b.pending = append(b.pending, subs...)
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// deps is the set of sources a listener read during its last run.
type deps struct {
	mu      sync.Mutex
	sources []*source
}

func (d *deps) add(s *source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, have := range d.sources {
		if have == s {
			return
		}
	}
	d.sources = append(d.sources, s)
}

// release unsubscribes l from everything it read and forgets the sources.
func (d *deps) release(l Listener) {
	d.mu.Lock()
	sources := d.sources
	d.sources = nil
	d.mu.Unlock()

	for _, s := range sources {
		s.unsubscribe(l)
	}
}
