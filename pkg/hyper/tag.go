package hyper

import "github.com/vango-dev/hyperdom/pkg/dom"

// Node is the node type constructed by H. Compiled code refers to it as
// h.Node.
type Node = dom.Node

// Component builds a node from its props.
type Component func(Props) dom.Node

// Tag is the set of values H accepts as a tag: an element name ("" for a
// fragment) or a component function.
type Tag interface {
	string | Component | func(Props) dom.Node
}

// Descriptor is a resolved tag: a host element name or a component.
type Descriptor struct {
	host      string
	component Component
	isComp    bool
}

// HostTag describes a host element. The empty name describes a fragment.
func HostTag(name string) Descriptor {
	return Descriptor{host: name}
}

// ComponentRef describes a component.
func ComponentRef(c Component) Descriptor {
	return Descriptor{component: c, isComp: true}
}

// IsComponent reports whether the descriptor is a component.
func (d Descriptor) IsComponent() bool {
	return d.isComp
}

// IsFragment reports whether the descriptor is the fragment tag.
func (d Descriptor) IsFragment() bool {
	return !d.isComp && d.host == ""
}

// Name returns the host element name, or "" for fragments and components.
func (d Descriptor) Name() string {
	return d.host
}

// Component returns the component, or nil for host tags.
func (d Descriptor) Component() Component {
	return d.component
}

func (d Descriptor) String() string {
	switch {
	case d.isComp:
		return "component"
	case d.host == "":
		return "fragment"
	default:
		return d.host
	}
}

func descriptorOf[T Tag](tag T) Descriptor {
	switch t := any(tag).(type) {
	case string:
		return HostTag(t)
	case Component:
		return ComponentRef(t)
	case func(Props) dom.Node:
		return ComponentRef(t)
	}
	panic("unreachable")
}
