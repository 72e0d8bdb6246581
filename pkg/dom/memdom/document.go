package memdom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/hyperdom/pkg/dom"
)

// Document is an in-memory HTML document with an html, head and body
// skeleton.
type Document struct {
	root *html.Node
	body *html.Node

	// nodes maps every html node handed out to its wrapper, so identity and
	// listeners survive round trips through ParentNode and ChildNodes.
	nodes map[*html.Node]dom.Node
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{
		root:  &html.Node{Type: html.DocumentNode},
		nodes: make(map[*html.Node]dom.Node),
	}
	htmlEl := newElementNode("html")
	head := newElementNode("head")
	d.body = newElementNode("body")
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(d.body)
	d.root.AppendChild(htmlEl)
	return d
}

// ParseDocument builds a document from HTML source.
func ParseDocument(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	d := &Document{root: root, nodes: make(map[*html.Node]dom.Node)}
	d.body = findElement(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if d.body == nil {
		d.body = newElementNode("body")
		root.AppendChild(d.body)
	}
	return d, nil
}

func newElementNode(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.wrap(d.body).(*Element)
}

// CreateElement creates a detached element. HTML element names are
// lowercased; invalid names fail with ErrInvalidCharacter.
func (d *Document) CreateElement(tag string) (dom.Element, error) {
	if err := validateName(tag); err != nil {
		return nil, err
	}
	return d.wrap(newElementNode(strings.ToLower(tag))).(*Element), nil
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) dom.Text {
	return d.wrap(&html.Node{Type: html.TextNode, Data: data}).(*Text)
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() dom.Fragment {
	return d.wrap(&html.Node{Type: html.DocumentNode}).(*Fragment)
}

// GetElementByID returns the first attached element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	n := findElement(d.root, func(n *html.Node) bool {
		v, ok := getAttr(n, "id")
		return ok && v == id
	})
	if n == nil {
		return nil
	}
	return d.wrap(n).(*Element)
}

// wrap returns the wrapper of n, creating it on first use.
func (d *Document) wrap(n *html.Node) dom.Node {
	if w, ok := d.nodes[n]; ok {
		return w
	}
	base := node{doc: d, n: n}
	var w dom.Node
	switch n.Type {
	case html.ElementNode:
		w = &Element{node: base}
	case html.TextNode:
		w = &Text{node: base}
	case html.DocumentNode:
		w = &Fragment{node: base}
	default:
		w = &Comment{node: base}
	}
	d.nodes[n] = w
	return w
}

// unwrap returns the base of a node created by this document.
func (d *Document) unwrap(n dom.Node) (*node, error) {
	var base *node
	switch v := n.(type) {
	case *Element:
		base = &v.node
	case *Text:
		base = &v.node
	case *Fragment:
		base = &v.node
	case *Comment:
		base = &v.node
	default:
		return nil, ErrWrongDocument
	}
	if base.doc != d {
		return nil, ErrWrongDocument
	}
	return base, nil
}

// insert moves child under parent before ref (append when ref is nil).
func (d *Document) insert(parent *html.Node, child dom.Node, ref *html.Node) error {
	if parent.Type != html.ElementNode && parent.Type != html.DocumentNode {
		return ErrHierarchyRequest
	}
	c, err := d.unwrap(child)
	if err != nil {
		return err
	}

	for p := parent; p != nil; p = p.Parent {
		if p == c.n {
			return ErrHierarchyRequest
		}
	}

	if c.n.Type == html.DocumentNode {
		for ch := c.n.FirstChild; ch != nil; {
			next := ch.NextSibling
			c.n.RemoveChild(ch)
			parent.InsertBefore(ch, ref)
			ch = next
		}
		return nil
	}

	if c.n == ref {
		return nil
	}
	if c.n.Parent != nil {
		c.n.Parent.RemoveChild(c.n)
	}
	parent.InsertBefore(c.n, ref)
	return nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

var _ dom.Document = (*Document)(nil)
