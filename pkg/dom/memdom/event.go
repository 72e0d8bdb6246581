package memdom

import "github.com/vango-dev/hyperdom/pkg/dom"

// Event is a synthetic event.
type Event struct {
	typ       string
	bubbles   bool
	target    dom.Node
	current   dom.Node
	stopped   bool
	prevented bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, bubbles bool) *Event {
	return &Event{typ: typ, bubbles: bubbles}
}

func (ev *Event) Type() string            { return ev.typ }
func (ev *Event) Target() dom.Node        { return ev.target }
func (ev *Event) CurrentTarget() dom.Node { return ev.current }
func (ev *Event) StopPropagation()        { ev.stopped = true }
func (ev *Event) PreventDefault()         { ev.prevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (ev *Event) DefaultPrevented() bool { return ev.prevented }

// DispatchEvent runs the listeners of the element and, for bubbling events,
// of its ancestors. It reports false if a listener prevented the default.
func (e *Element) DispatchEvent(ev *Event) bool {
	ev.target = e
	var n dom.Node = e
	for n != nil {
		if el, ok := n.(*Element); ok {
			ev.current = el
			listeners := append([]dom.EventListener(nil), el.listeners[ev.typ]...)
			for _, l := range listeners {
				l(ev)
			}
		}
		if ev.stopped || !ev.bubbles {
			break
		}
		n = n.ParentNode()
	}
	ev.current = nil
	return !ev.prevented
}

var _ dom.Event = (*Event)(nil)
