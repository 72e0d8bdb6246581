//go:build js && wasm

// Package jsdom implements the dom interfaces on top of the browser DOM
// through syscall/js.
package jsdom

import (
	"fmt"
	"syscall/js"

	"github.com/vango-dev/hyperdom/pkg/dom"
)

// Document wraps the browser document.
type Document struct {
	v js.Value
}

// Global returns the page's document.
func Global() *Document {
	return &Document{v: js.Global().Get("document")}
}

// GetElementByID returns the element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	v := d.v.Call("getElementById", id)
	if !v.Truthy() {
		return nil
	}
	return &Element{node{v}}
}

func (d *Document) CreateElement(tag string) (el dom.Element, err error) {
	err = catch(func() {
		el = &Element{node{d.v.Call("createElement", tag)}}
	})
	return el, err
}

func (d *Document) CreateTextNode(data string) dom.Text {
	return &Text{node{d.v.Call("createTextNode", data)}}
}

func (d *Document) CreateDocumentFragment() dom.Fragment {
	return &Fragment{node{d.v.Call("createDocumentFragment")}}
}

// Wrap returns the dom view of a browser node.
func Wrap(v js.Value) dom.Node {
	switch v.Get("nodeType").Int() {
	case 1:
		return &Element{node{v}}
	case 3:
		return &Text{node{v}}
	case 11:
		return &Fragment{node{v}}
	default:
		return &node{v}
	}
}

// Value returns the browser value behind a node created by this package.
func Value(n dom.Node) js.Value {
	switch v := n.(type) {
	case *Element:
		return v.v
	case *Text:
		return v.v
	case *Fragment:
		return v.v
	case *node:
		return v.v
	}
	return js.Undefined()
}

// catch converts a thrown DOMException into an error.
func catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = fmt.Errorf("jsdom: %s", jsErr.Get("name").String()+": "+jsErr.Get("message").String())
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

type node struct {
	v js.Value
}

func (n *node) NodeType() dom.NodeType {
	switch n.v.Get("nodeType").Int() {
	case 1:
		return dom.ElementNode
	case 3:
		return dom.TextNode
	case 8:
		return dom.CommentNode
	case 9:
		return dom.DocumentNode
	default:
		return dom.DocumentFragmentNode
	}
}

func (n *node) OwnerDocument() dom.Document {
	return &Document{v: n.v.Get("ownerDocument")}
}

func (n *node) ParentNode() dom.Node {
	p := n.v.Get("parentNode")
	if p.IsNull() || p.IsUndefined() {
		return nil
	}
	return Wrap(p)
}

func (n *node) ChildNodes() []dom.Node {
	list := n.v.Get("childNodes")
	out := make([]dom.Node, list.Length())
	for i := range out {
		out[i] = Wrap(list.Index(i))
	}
	return out
}

func (n *node) AppendChild(child dom.Node) error {
	return catch(func() { n.v.Call("appendChild", Value(child)) })
}

func (n *node) ReplaceWith(nodes ...dom.Node) error {
	args := make([]any, len(nodes))
	for i, c := range nodes {
		args[i] = Value(c)
	}
	return catch(func() { n.v.Call("replaceWith", args...) })
}

func (n *node) Remove() {
	n.v.Call("remove")
}

func (n *node) CloneNode(deep bool) dom.Node {
	return Wrap(n.v.Call("cloneNode", deep))
}

func (n *node) TextContent() string {
	return n.v.Get("textContent").String()
}

// Element wraps an HTMLElement.
type Element struct {
	node
}

func (e *Element) TagName() string {
	return e.v.Get("tagName").String()
}

func (e *Element) SetAttribute(name, value string) error {
	return catch(func() { e.v.Call("setAttribute", name, value) })
}

func (e *Element) RemoveAttribute(name string) {
	e.v.Call("removeAttribute", name)
}

func (e *Element) GetAttribute(name string) (string, bool) {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return "", false
	}
	return v.String(), true
}

func (e *Element) SetProperty(name string, value any) error {
	return catch(func() { e.v.Set(name, value) })
}

func (e *Element) ClassList() dom.ClassList {
	return &classList{e.v.Get("classList")}
}

func (e *Element) Style() dom.Style {
	return &style{e.v.Get("style")}
}

// AddEventListener registers listener. The js.Func is kept alive for the
// life of the page.
func (e *Element) AddEventListener(typ string, listener dom.EventListener) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		listener(&event{args[0]})
		return nil
	})
	e.v.Call("addEventListener", typ, fn)
}

// Text wraps a browser text node.
type Text struct {
	node
}

func (t *Text) Data() string {
	return t.v.Get("data").String()
}

func (t *Text) SetData(data string) {
	t.v.Set("data", data)
}

// Fragment wraps a DocumentFragment.
type Fragment struct {
	node
}

type classList struct {
	v js.Value
}

func (c *classList) Add(tokens ...string) error {
	return catch(func() { c.v.Call("add", toArgs(tokens)...) })
}

func (c *classList) Remove(tokens ...string) error {
	return catch(func() { c.v.Call("remove", toArgs(tokens)...) })
}

func (c *classList) Contains(token string) bool {
	return c.v.Call("contains", token).Bool()
}

type style struct {
	v js.Value
}

func (s *style) Set(name, value string) {
	s.v.Set(name, value)
}

func (s *style) SetProperty(name, value string) {
	s.v.Call("setProperty", name, value)
}

func (s *style) Get(name string) string {
	return s.v.Get(name).String()
}

type event struct {
	v js.Value
}

func (ev *event) Type() string            { return ev.v.Get("type").String() }
func (ev *event) Target() dom.Node        { return Wrap(ev.v.Get("target")) }
func (ev *event) CurrentTarget() dom.Node { return Wrap(ev.v.Get("currentTarget")) }
func (ev *event) StopPropagation()        { ev.v.Call("stopPropagation") }
func (ev *event) PreventDefault()         { ev.v.Call("preventDefault") }

func toArgs(tokens []string) []any {
	args := make([]any, len(tokens))
	for i, t := range tokens {
		args[i] = t
	}
	return args
}

var (
	_ dom.Document = (*Document)(nil)
	_ dom.Element  = (*Element)(nil)
	_ dom.Text     = (*Text)(nil)
	_ dom.Fragment = (*Fragment)(nil)
)
