package hyper

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

const tracerName = "github.com/vango-dev/hyperdom/pkg/hyper"

// Engine constructs nodes in one document.
type Engine struct {
	doc     dom.Document
	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics registers the engine's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = newMetrics(reg)
	}
}

// WithTracerProvider sets the provider used for Render spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// New creates an engine for doc.
func New(doc dom.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:    doc,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the document the engine creates nodes in.
func (e *Engine) Document() dom.Document {
	return e.doc
}

var (
	defaultEngine   *Engine
	defaultEngineMu sync.Mutex
)

// Default returns the engine used outside any mounted scope. Under js/wasm
// it targets the page document, elsewhere a fresh in-memory document.
func Default() *Engine {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New(defaultDocument())
	}
	return defaultEngine
}

// SetDefault replaces the default engine.
func SetDefault(e *Engine) {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	defaultEngine = e
}

type engineKey struct{}

// Current returns the engine of the innermost mounted scope, or Default.
func Current() *Engine {
	if e, ok := reactive.GetContext(engineKey{}).(*Engine); ok {
		return e
	}
	return Default()
}

// within runs fn with e as the current engine. The owner it creates for
// that is disposed again when fn left nothing alive under it.
func (e *Engine) within(fn func()) {
	if Current() == e {
		fn()
		return
	}
	owner := reactive.NewOwner(reactive.CurrentOwner())
	owner.SetValue(engineKey{}, e)
	defer func() {
		if owner.Idle() {
			owner.Dispose()
		}
	}()
	reactive.WithOwner(owner, fn)
}

// Build constructs one node. A component is invoked with the merged props
// and its node is returned unchanged; a host tag is created and its props
// and children are applied in order.
//
// Every error is an *Error. Panics raised by components propagate.
func (e *Engine) Build(tag Descriptor, props Props, children Children) (dom.Node, error) {
	var (
		node dom.Node
		err  error
	)
	e.within(func() {
		if tag.IsComponent() {
			node, err = e.buildComponent(tag.component, props, children)
			return
		}
		node, err = e.buildHost(tag.host, props, children)
	})
	return node, err
}

func (e *Engine) buildComponent(c Component, props Props, children Children) (dom.Node, error) {
	if c == nil {
		return nil, &Error{Op: "create", Err: ErrNilComponent}
	}

	merged := make(Props, 0, len(props)+1)
	if len(children) > 0 {
		merged = append(merged, Prop{Key: "children", Value: children})
	}
	merged = append(merged, props...)
	merged, err := merged.Normalize()
	if err != nil {
		return nil, &Error{Op: "prop", Err: err}
	}

	e.metrics.nodeCreated("component")
	return c(merged), nil
}

func (e *Engine) buildHost(tag string, props Props, children Children) (dom.Node, error) {
	var (
		node dom.Node
		el   dom.Element
	)
	if tag == "" {
		node = e.doc.CreateDocumentFragment()
		e.metrics.nodeCreated("fragment")
	} else {
		created, err := e.doc.CreateElement(tag)
		if err != nil {
			return nil, &Error{Op: "create", Tag: tag, Err: err}
		}
		node, el = created, created
		e.metrics.nodeCreated("element")
	}

	props, err := props.Normalize()
	if err != nil {
		return nil, &Error{Op: "prop", Tag: tag, Err: err}
	}
	for _, p := range props {
		if err := e.applyProp(node, el, p); err != nil {
			return nil, wrap("prop", tag, p.Key, err)
		}
	}

	if err := e.appendChildren(node, children); err != nil {
		return nil, wrap("child", tag, "", err)
	}
	return node, nil
}

// applyProp dispatches one property. el is nil for fragments.
func (e *Engine) applyProp(node dom.Node, el dom.Element, p Prop) error {
	if p.Key == "ref" {
		return callRef(node, p.Value)
	}
	if el == nil {
		if p.Value == nil {
			return nil
		}
		return ErrFragmentDirective
	}

	switch p.Key {
	case "on":
		return addListeners(el, p.Value)
	case "show":
		return BindShow(el, p.Value)
	case "classList":
		return BindClassList(el, p.Value)
	case "style":
		if p.Value != nil && isMapping(p.Value) {
			return BindStyle(el, p.Value)
		}
	}

	v := Resolve(p.Value)
	switch {
	case v.Kind() == Omitted:
		return nil
	case p.Key == "innerHTML" && v.Reactive():
		return BindAttrDirect(el, p.Key, v.Get)
	case p.Key == "innerHTML":
		e.metrics.binding("property", false)
		return el.SetProperty(p.Key, v.Literal())
	case v.Reactive():
		return BindAttr(el, p.Key, v.Get)
	default:
		e.metrics.binding("attribute", false)
		return el.SetAttribute(p.Key, stringify(v.Literal()))
	}
}

func (e *Engine) appendChildren(parent dom.Node, children []any) error {
	for i, child := range children {
		if err := e.appendChild(parent, child); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) appendChild(parent dom.Node, child any) error {
	switch c := child.(type) {
	case nil:
		return nil
	case dom.Node:
		return parent.AppendChild(c)
	case Children:
		return e.appendChildren(parent, c)
	case []any:
		return e.appendChildren(parent, c)
	case []dom.Node:
		for _, n := range c {
			if err := parent.AppendChild(n); err != nil {
				return err
			}
		}
		return nil
	}

	v := Resolve(child)
	switch {
	case v.Reactive():
		text := e.doc.CreateTextNode("")
		if err := parent.AppendChild(text); err != nil {
			return err
		}
		BindText(text, v.Get)
		return nil
	case isPrimitive(child):
		return parent.AppendChild(e.doc.CreateTextNode(stringify(child)))
	default:
		return fmt.Errorf("%w: %T", ErrInvalidChild, child)
	}
}
