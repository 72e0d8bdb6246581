package hyper

import "github.com/vango-dev/hyperdom/pkg/dom"

// H builds a node with the current engine. It is the entry point compiled
// code calls. A failure panics with an *Error, which Render and Scope turn
// back into an error.
func H[T Tag](tag T, props Props, children Children) dom.Node {
	node, err := Current().Build(descriptorOf(tag), props, children)
	if err != nil {
		panic(err)
	}
	return node
}

// Fragment builds a fragment holding children. It is H("", nil, children).
func Fragment(children Children) dom.Node {
	return H("", nil, children)
}
