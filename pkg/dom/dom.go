// Package dom defines the host document surface the rendering engine writes
// to. It is the subset of the browser DOM that element construction and
// directive bindings need: creating nodes, setting attributes and
// properties, class and style manipulation, and event listeners.
//
// Two substrates implement it: memdom, an in-memory document for tests and
// tooling, and jsdom, which wraps the browser DOM under js/wasm.
package dom

// NodeType identifies the kind of a Node.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	DocumentFragmentNode
	DocumentNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case DocumentFragmentNode:
		return "fragment"
	case DocumentNode:
		return "document"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is any node of a document tree.
type Node interface {
	NodeType() NodeType
	OwnerDocument() Document

	// ParentNode returns nil for detached nodes.
	ParentNode() Node
	ChildNodes() []Node

	// AppendChild moves child under the node. Appending a fragment moves
	// the fragment's children and leaves it empty.
	AppendChild(child Node) error

	// ReplaceWith replaces the node with nodes in its parent. It is a no-op
	// for detached nodes.
	ReplaceWith(nodes ...Node) error

	// Remove detaches the node from its parent.
	Remove()

	// CloneNode copies the node, and its descendants when deep is set.
	// Event listeners are not copied.
	CloneNode(deep bool) Node

	TextContent() string
}

// Element is a host element.
type Element interface {
	Node

	TagName() string
	SetAttribute(name, value string) error
	RemoveAttribute(name string)
	GetAttribute(name string) (string, bool)

	// SetProperty assigns an element property such as innerHTML.
	SetProperty(name string, value any) error

	ClassList() ClassList
	Style() Style
	AddEventListener(typ string, listener EventListener)
}

// Text is a text node.
type Text interface {
	Node
	Data() string
	SetData(data string)
}

// Fragment is a document fragment.
type Fragment interface {
	Node
}

// Document creates nodes.
type Document interface {
	CreateElement(tag string) (Element, error)
	CreateTextNode(data string) Text
	CreateDocumentFragment() Fragment
}

// Style is an element's inline style declaration.
type Style interface {
	// Set assigns a standard property by its camelCase field name, as in
	// el.style.backgroundColor = "red". An empty value removes it.
	Set(name, value string)

	// SetProperty assigns a property by its CSS name. It is the only way to
	// set custom properties (--name).
	SetProperty(name, value string)

	Get(name string) string
}

// ClassList is an element's class token set.
type ClassList interface {
	Add(tokens ...string) error
	Remove(tokens ...string) error
	Contains(token string) bool
}

// Event is a dispatched DOM event.
type Event interface {
	Type() string
	Target() Node
	CurrentTarget() Node
	StopPropagation()
	PreventDefault()
}

// EventListener handles events.
type EventListener func(Event)
