package memdom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/hyperdom/pkg/dom"
)

// OuterHTML serializes a node created by a memdom Document. Fragments
// serialize as the concatenation of their children.
func OuterHTML(n dom.Node) string {
	var hn *html.Node
	switch v := n.(type) {
	case *Element:
		hn = v.n
	case *Text:
		hn = v.n
	case *Fragment:
		hn = v.n
	case *Comment:
		hn = v.n
	default:
		return ""
	}

	var sb strings.Builder
	if hn.Type == html.DocumentNode {
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			_ = html.Render(&sb, c)
		}
		return sb.String()
	}
	_ = html.Render(&sb, hn)
	return sb.String()
}

// Render serializes the whole document.
func (d *Document) Render() string {
	var sb strings.Builder
	_ = html.Render(&sb, d.root)
	return sb.String()
}
