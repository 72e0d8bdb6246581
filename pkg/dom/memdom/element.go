package memdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/hyperdom/pkg/dom"
)

// Element is an HTML element.
type Element struct {
	node

	listeners map[string][]dom.EventListener

	// props holds properties without an attribute or tree reflection.
	props map[string]any
}

// TagName returns the uppercased element name, as HTML documents do.
func (e *Element) TagName() string {
	return strings.ToUpper(e.n.Data)
}

// SetAttribute sets name to value. Names are lowercased.
func (e *Element) SetAttribute(name, value string) error {
	if err := validateName(name); err != nil {
		return err
	}
	setAttr(e.n, strings.ToLower(name), value)
	return nil
}

func (e *Element) RemoveAttribute(name string) {
	removeAttr(e.n, strings.ToLower(name))
}

func (e *Element) GetAttribute(name string) (string, bool) {
	return getAttr(e.n, strings.ToLower(name))
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// SetProperty assigns a property. innerHTML and textContent replace the
// children, className and id reflect to attributes, anything else is kept
// as an expando readable through Property.
func (e *Element) SetProperty(name string, value any) error {
	switch name {
	case "innerHTML":
		return e.setInnerHTML(stringify(value))
	case "textContent":
		e.removeChildren()
		if s := stringify(value); s != "" {
			e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
		}
		return nil
	case "className":
		setAttr(e.n, "class", stringify(value))
		return nil
	case "id":
		setAttr(e.n, "id", stringify(value))
		return nil
	}
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
	return nil
}

// Property reads a property set with SetProperty.
func (e *Element) Property(name string) any {
	switch name {
	case "innerHTML":
		return e.InnerHTML()
	case "textContent":
		return e.TextContent()
	case "className":
		v, _ := getAttr(e.n, "class")
		return v
	case "id":
		v, _ := getAttr(e.n, "id")
		return v
	}
	return e.props[name]
}

func (e *Element) setInnerHTML(src string) error {
	nodes, err := html.ParseFragment(strings.NewReader(src), e.n)
	if err != nil {
		return fmt.Errorf("memdom: parse innerHTML: %w", err)
	}
	e.removeChildren()
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	return nil
}

func (e *Element) removeChildren() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

func (e *Element) ClassList() dom.ClassList {
	return &classList{el: e}
}

func (e *Element) Style() dom.Style {
	return &style{el: e}
}

func (e *Element) AddEventListener(typ string, listener dom.EventListener) {
	if listener == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]dom.EventListener)
	}
	e.listeners[typ] = append(e.listeners[typ], listener)
}

// ListenerCount returns the number of listeners registered for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// OuterHTML serializes the element.
func (e *Element) OuterHTML() string {
	return OuterHTML(e)
}

// Click dispatches a bubbling click event at the element.
func (e *Element) Click() bool {
	return e.DispatchEvent(NewEvent("click", true))
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

var _ dom.Element = (*Element)(nil)
