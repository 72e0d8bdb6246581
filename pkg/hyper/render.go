package hyper

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

// Mount is a constructed tree together with the owner of its bindings.
type Mount struct {
	// Node is the constructed root. For a fragment it is empty once mounted;
	// the mounted nodes are its former children.
	Node dom.Node

	nodes   []dom.Node
	owner   *reactive.Owner
	engine  *Engine
	unmount sync.Once
}

// Owner returns the owner of every binding created during construction.
func (m *Mount) Owner() *reactive.Owner {
	return m.owner
}

// Nodes returns the top-level nodes of the tree.
func (m *Mount) Nodes() []dom.Node {
	return m.nodes
}

// Unmount disposes every binding of the tree and detaches its nodes.
// Unmounting twice is a no-op.
func (m *Mount) Unmount() {
	m.unmount.Do(func() {
		m.owner.Dispose()
		for _, n := range m.nodes {
			n.Remove()
		}
		m.engine.metrics.mounted(-1)
		m.engine.logger.Debug("unmounted", "nodes", len(m.nodes))
	})
}

// Scope runs fn under a fresh owner and returns the node it built. Bindings
// created by fn belong to the mount. A panic carrying an *Error is returned
// as an error; other panics propagate.
func (e *Engine) Scope(fn func() dom.Node) (*Mount, error) {
	owner := reactive.NewOwner(reactive.CurrentOwner())
	owner.SetValue(engineKey{}, e)

	var node dom.Node
	err := capture(func() {
		reactive.WithOwner(owner, func() {
			node = fn()
		})
	})
	if err == nil && node == nil {
		err = &Error{Op: "render", Err: ErrNilComponentResult}
	}
	if err != nil {
		owner.Dispose()
		return nil, err
	}

	m := &Mount{Node: node, owner: owner, engine: e}
	if node.NodeType() == dom.DocumentFragmentNode {
		m.nodes = node.ChildNodes()
	} else {
		m.nodes = []dom.Node{node}
	}
	e.metrics.mounted(1)
	return m, nil
}

// Render builds app(props) and puts it in place of host. host is usually
// an empty placeholder element; a nil host leaves the tree detached.
func (e *Engine) Render(app Component, host dom.Node, props Props) (*Mount, error) {
	_, span := e.tracer.Start(context.Background(), "hyper.Render")
	defer span.End()

	m, err := e.Scope(func() dom.Node { return app(props) })
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("render failed", "error", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("hyper.nodes", len(m.nodes)),
		attribute.Int("hyper.effects", m.owner.EffectCount()),
	)

	if host != nil {
		if err := host.ReplaceWith(m.Node); err != nil {
			m.Unmount()
			err = &Error{Op: "render", Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	e.logger.Debug("mounted", "nodes", len(m.nodes), "effects", m.owner.EffectCount())
	return m, nil
}

// Render renders with the current engine, or with a new engine for the
// host's document when they differ.
func Render(app Component, host dom.Node, props Props) (*Mount, error) {
	e := Current()
	if host != nil {
		if doc := host.OwnerDocument(); doc != nil && doc != e.doc {
			e = &Engine{doc: doc, logger: e.logger, metrics: e.metrics, tracer: e.tracer}
		}
	}
	return e.Render(app, host, props)
}
