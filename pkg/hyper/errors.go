package hyper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidChild is returned for a child that is not a node, a
	// primitive or a reactive value.
	ErrInvalidChild = errors.New("invalid child")

	// ErrInvalidHandler is returned for an "on" entry that is not an event
	// handler function.
	ErrInvalidHandler = errors.New("invalid event handler")

	// ErrInvalidRef is returned for a "ref" value that cannot receive the node.
	ErrInvalidRef = errors.New("invalid ref callback")

	// ErrInvalidMapping is returned when a directive or spread value is not a
	// property mapping.
	ErrInvalidMapping = errors.New("invalid property mapping")

	// ErrFragmentDirective is returned for properties on a fragment, which
	// has no attributes, styles or listeners.
	ErrFragmentDirective = errors.New("property not supported on fragment")

	// ErrDynamicTemplate is returned when a template render creates a
	// reactive binding, listener or ref. Clones would not carry them.
	ErrDynamicTemplate = errors.New("template render created live bindings")

	// ErrNilComponent is returned when a component tag is a nil function.
	ErrNilComponent = errors.New("nil component")

	// ErrNilComponentResult is returned when a mounted component returns no node.
	ErrNilComponentResult = errors.New("component returned nil node")
)

// Error describes a failed construction step. Err is the underlying cause,
// either one of the sentinels above or the error reported by the DOM
// substrate, unmodified.
type Error struct {
	// Op is the step that failed: "create", "prop", "child", "bind",
	// "template" or "render".
	Op string

	// Tag is the element being constructed, if any.
	Tag string

	// Key is the property key, if any.
	Key string

	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("hyper: ")
	sb.WriteString(e.Op)
	if e.Tag != "" {
		fmt.Fprintf(&sb, " <%s>", e.Tag)
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, " %q", e.Key)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns err as an *Error, keeping an existing one.
func wrap(op, tag, key string, err error) error {
	if err == nil {
		return nil
	}
	var he *Error
	if errors.As(err, &he) {
		return err
	}
	return &Error{Op: op, Tag: tag, Key: key, Err: err}
}

// capture runs fn and converts a panic carrying an *Error back into an
// error. Any other panic is re-raised.
func capture(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if he, ok := r.(*Error); ok {
				err = he
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
