package hyper

import (
	"fmt"
	"strings"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

// A static value is applied once, synchronously, and creates no effect.
// A reactive value (getter or cell) is applied by an effect: the first run
// is synchronous, later runs happen at the next reactive.Flush after a
// source changes. Values are never compared; the effect simply re-applies.
//
// Errors from a first run are returned. Errors from later runs panic out
// of reactive.Flush as *Error.

// BindText keeps the text node's data equal to get().
func BindText(node dom.Text, get func() any) {
	_ = bind("text", func() error {
		node.SetData(stringify(get()))
		return nil
	})
}

// BindAttr keeps attribute name in sync with get(). A nil result removes
// the attribute; it comes back on the next non-nil result.
func BindAttr(el dom.Element, name string, get func() any) error {
	return bind("attribute", func() error {
		v := get()
		if v == nil {
			el.RemoveAttribute(name)
			return nil
		}
		return el.SetAttribute(name, stringify(v))
	})
}

// BindAttrDirect keeps property name, such as innerHTML, in sync with get().
func BindAttrDirect(el dom.Element, name string, get func() any) error {
	return bind("property", func() error {
		return el.SetProperty(name, get())
	})
}

// BindClassList adds or removes each class in mapping by the truthiness of
// its value. Each entry is bound on its own.
func BindClassList(el dom.Element, mapping any) error {
	entries, err := mappingEntries(mapping)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Key
		err := applyEntry("classList", entry.Value, func(on any) error {
			if truthy(on) {
				return el.ClassList().Add(name)
			}
			return el.ClassList().Remove(name)
		})
		if err != nil {
			return fmt.Errorf("class %q: %w", name, err)
		}
	}
	return nil
}

// BindShow sets display to "" when value is truthy and to "none" otherwise.
func BindShow(el dom.Element, value any) error {
	return applyEntry("show", value, func(v any) error {
		if truthy(v) {
			el.Style().Set("display", "")
		} else {
			el.Style().Set("display", "none")
		}
		return nil
	})
}

// BindStyle applies each entry of mapping as a style field. Names starting
// with "--" are custom properties. Each entry is bound on its own.
func BindStyle(el dom.Element, mapping any) error {
	entries, err := mappingEntries(mapping)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Key
		set := el.Style().Set
		if strings.HasPrefix(name, "--") {
			set = el.Style().SetProperty
		}
		_ = applyEntry("style", entry.Value, func(v any) error {
			set(name, stringify(v))
			return nil
		})
	}
	return nil
}

// applyEntry applies value once if static, or binds it if reactive.
func applyEntry(directive string, value any, apply func(any) error) error {
	v := Resolve(value)
	if v.Reactive() {
		return bind(directive, func() error { return apply(v.Get()) })
	}
	Current().metrics.binding(directive, false)
	return apply(v.Literal())
}

// bind runs apply in an effect owned by the current owner.
func bind(directive string, apply func() error) error {
	noteLive(directive + " binding")
	Current().metrics.binding(directive, true)

	first := true
	var firstErr error
	eff := reactive.Watch(func() {
		err := apply()
		if first {
			first = false
			firstErr = err
			return
		}
		if err != nil {
			panic(&Error{Op: "bind", Key: directive, Err: err})
		}
	})
	if firstErr != nil {
		eff.Dispose()
		return firstErr
	}
	return nil
}

// addListeners attaches one listener per entry of handlers.
func addListeners(el dom.Element, handlers any) error {
	entries, err := mappingEntries(handlers)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		l, err := toListener(entry.Value)
		if err != nil {
			return fmt.Errorf("%q: %w", entry.Key, err)
		}
		if l == nil {
			continue
		}
		noteLive("listener")
		Current().metrics.binding("on", false)
		el.AddEventListener(entry.Key, l)
	}
	return nil
}

func toListener(h any) (dom.EventListener, error) {
	switch h := h.(type) {
	case nil:
		return nil, nil
	case dom.EventListener:
		return h, nil
	case func(dom.Event):
		return h, nil
	case func():
		return func(dom.Event) { h() }, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidHandler, h)
	}
}

// callRef hands the constructed node to a ref value.
func callRef(node dom.Node, ref any) error {
	switch r := ref.(type) {
	case nil:
		return nil
	case func(dom.Node):
		noteLive("ref")
		r(node)
	case func(dom.Element):
		el, ok := node.(dom.Element)
		if !ok {
			return fmt.Errorf("%w: %s is not an element", ErrInvalidRef, node.NodeType())
		}
		noteLive("ref")
		r(el)
	case *dom.Node:
		noteLive("ref")
		*r = node
	default:
		return fmt.Errorf("%w: %T", ErrInvalidRef, ref)
	}
	return nil
}

// probe records the first live binding created while a template renders.
type probe struct {
	reason string
}

type probeKey struct{}

func noteLive(reason string) {
	if p, ok := reactive.GetContext(probeKey{}).(*probe); ok && p.reason == "" {
		p.reason = reason
	}
}
