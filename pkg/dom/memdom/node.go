package memdom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/hyperdom/pkg/dom"
)

// node holds what every wrapper shares.
type node struct {
	doc *Document
	n   *html.Node
}

// HTML returns the underlying html node.
func (b *node) HTML() *html.Node {
	return b.n
}

func (b *node) NodeType() dom.NodeType {
	switch b.n.Type {
	case html.ElementNode:
		return dom.ElementNode
	case html.TextNode:
		return dom.TextNode
	case html.DocumentNode:
		return dom.DocumentFragmentNode
	default:
		return dom.CommentNode
	}
}

func (b *node) OwnerDocument() dom.Document {
	return b.doc
}

func (b *node) ParentNode() dom.Node {
	p := b.n.Parent
	if p == nil || p == b.doc.root {
		return nil
	}
	return b.doc.wrap(p)
}

func (b *node) ChildNodes() []dom.Node {
	var out []dom.Node
	for c := b.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, b.doc.wrap(c))
	}
	return out
}

func (b *node) AppendChild(child dom.Node) error {
	return b.doc.insert(b.n, child, nil)
}

func (b *node) ReplaceWith(nodes ...dom.Node) error {
	parent := b.n.Parent
	if parent == nil {
		return nil
	}

	bases := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		base, err := b.doc.unwrap(n)
		if err != nil {
			return err
		}
		bases[base.n] = true
	}

	ref := b.n.NextSibling
	for ref != nil && bases[ref] {
		ref = ref.NextSibling
	}
	if !bases[b.n] {
		parent.RemoveChild(b.n)
	}
	for _, n := range nodes {
		if err := b.doc.insert(parent, n, ref); err != nil {
			return err
		}
	}
	return nil
}

func (b *node) Remove() {
	if b.n.Parent != nil {
		b.n.Parent.RemoveChild(b.n)
	}
}

func (b *node) CloneNode(deep bool) dom.Node {
	return b.doc.wrap(cloneHTML(b.n, deep))
}

func (b *node) TextContent() string {
	if b.n.Type != html.ElementNode && b.n.Type != html.DocumentNode {
		return b.n.Data
	}
	var sb strings.Builder
	collectText(b.n, &sb)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			collectText(c, sb)
		}
	}
}

func cloneHTML(n *html.Node, deep bool) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	if deep {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			c.AppendChild(cloneHTML(ch, true))
		}
	}
	return c
}

// Text is a text node.
type Text struct {
	node
}

func (t *Text) Data() string {
	return t.n.Data
}

func (t *Text) SetData(data string) {
	t.n.Data = data
}

// Fragment is a document fragment.
type Fragment struct {
	node
}

// Comment is a comment node, produced only by parsing.
type Comment struct {
	node
}

var (
	_ dom.Text     = (*Text)(nil)
	_ dom.Fragment = (*Fragment)(nil)
	_ dom.Node     = (*Comment)(nil)
)
