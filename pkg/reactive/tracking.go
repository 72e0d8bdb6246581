package reactive

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// scope is the reactive state of one goroutine.
type scope struct {
	// listener records signal reads; nil reads are untracked.
	listener Listener

	// owner receives effects created on this goroutine.
	owner *Owner

	// batch is the Batch in progress, if any.
	batch *batch
}

// scopes maps goroutine ids to their *scope.
var scopes sync.Map

// goid parses the id from the "goroutine N [running]:" stack header.
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// current returns the calling goroutine's scope.
func current() *scope {
	id := goid()
	if s, ok := scopes.Load(id); ok {
		return s.(*scope)
	}
	s, _ := scopes.LoadOrStore(id, &scope{})
	return s.(*scope)
}

func getCurrentListener() Listener {
	return current().listener
}

func setCurrentListener(l Listener) Listener {
	s := current()
	old := s.listener
	s.listener = l
	return old
}

func getCurrentOwner() *Owner {
	return current().owner
}

// WithOwner runs fn with owner as the current owner, so that effects created
// inside belong to it. A goroutine spawned by a component uses it to attach
// its effects to the component's owner:
//
//	go func() {
//	    WithOwner(parent, func() {
//	        Watch(...)
//	    })
//	}()
func WithOwner(owner *Owner, fn func()) {
	s := current()
	old := s.owner
	s.owner = owner
	defer func() { s.owner = old }()
	fn()
}

// WithListener runs fn with l tracking every signal read.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// ReleaseGoroutine drops the tracking state of the calling goroutine.
// Long-lived goroutines that touched reactive state call it before exiting.
func ReleaseGoroutine() {
	scopes.Delete(goid())
}
