package hyper

import (
	"fmt"
	"sync"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

// Stamp renders a static subtree once and hands out deep clones of it.
//
// Clones carry no bindings, listeners or refs, so a render that creates any
// of them makes every Instance call fail with ErrDynamicTemplate.
type Stamp struct {
	render  func() dom.Node
	metrics *metrics

	once sync.Once
	node dom.Node
	err  error
}

// NewStamp returns a stamp for render. render is called at most once,
// on the first Instance call.
func NewStamp(render func() dom.Node) *Stamp {
	return &Stamp{render: render}
}

// Instance returns a new clone of the canonical node.
func (t *Stamp) Instance() (dom.Node, error) {
	t.once.Do(t.build)
	if t.err != nil {
		return nil, t.err
	}
	t.metrics.templateCloned()
	return t.node.CloneNode(true), nil
}

func (t *Stamp) build() {
	p := &probe{}
	owner := reactive.NewOwner(reactive.CurrentOwner())
	owner.SetValue(probeKey{}, p)
	defer owner.Dispose()
	defer func() {
		if r := recover(); r != nil {
			t.err = &Error{Op: "template", Err: fmt.Errorf("render panicked: %v", r)}
			panic(r)
		}
	}()

	var node dom.Node
	err := capture(func() {
		reactive.WithOwner(owner, func() {
			node = t.render()
		})
	})
	switch {
	case err != nil:
		t.err = err
	case p.reason != "":
		t.err = &Error{Op: "template", Err: fmt.Errorf("%w: %s", ErrDynamicTemplate, p.reason)}
	case node == nil:
		t.err = &Error{Op: "template", Err: ErrNilComponentResult}
	default:
		t.node = node
	}
}

// Template returns a factory producing clones of render's node, panicking
// with an *Error if the template cannot be instantiated.
func (e *Engine) Template(render func() dom.Node) func() dom.Node {
	t := NewStamp(render)
	t.metrics = e.metrics
	return t.mustInstance
}

// Template is Engine.Template without clone metrics.
func Template(render func() dom.Node) func() dom.Node {
	return NewStamp(render).mustInstance
}

func (t *Stamp) mustInstance() dom.Node {
	node, err := t.Instance()
	if err != nil {
		panic(wrap("template", "", "", err))
	}
	return node
}
