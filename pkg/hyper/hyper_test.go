package hyper

import (
	"errors"
	"testing"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/dom/memdom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

func newTestEngine() (*Engine, *memdom.Document) {
	doc := memdom.NewDocument()
	return New(doc), doc
}

// scope builds fn with eng and fails the test on error.
func scope(t *testing.T, eng *Engine, fn func() dom.Node) *Mount {
	t.Helper()
	m, err := eng.Scope(fn)
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	t.Cleanup(m.Unmount)
	return m
}

func flush(t *testing.T) {
	t.Helper()
	if err := reactive.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func attr(t *testing.T, n dom.Node, name string) (string, bool) {
	t.Helper()
	el, ok := n.(dom.Element)
	if !ok {
		t.Fatalf("expected element, got %T", n)
	}
	return el.GetAttribute(name)
}

func TestStaticPropsCreateNoEffects(t *testing.T) {
	eng, _ := newTestEngine()

	m := scope(t, eng, func() dom.Node {
		return H("div", Props{
			{Key: "id", Value: "main"},
			{Key: "class", Value: "box"},
			{Key: "tabindex", Value: 3},
			{Key: "hidden", Value: nil},
		}, Children{"count: ", 42, nil, true})
	})

	if n := m.Owner().EffectCount(); n != 0 {
		t.Errorf("static props should create no effects, got %d", n)
	}
	want := `<div id="main" class="box" tabindex="3">count: 42true</div>`
	if got := memdom.OuterHTML(m.Node); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestReactiveAttributeKeepsIdentity(t *testing.T) {
	eng, _ := newTestEngine()
	title := reactive.NewSignal("first")

	m := scope(t, eng, func() dom.Node {
		return H("div", Props{{Key: "title", Value: title}}, nil)
	})
	el := m.Node

	if v, _ := attr(t, el, "title"); v != "first" {
		t.Fatalf("expected first, got %q", v)
	}
	if n := m.Owner().EffectCount(); n != 1 {
		t.Errorf("expected 1 effect, got %d", n)
	}

	title.Set("second")
	if v, _ := attr(t, el, "title"); v != "first" {
		t.Errorf("update should wait for Flush, got %q", v)
	}
	flush(t)

	if m.Node != el {
		t.Fatal("element identity changed")
	}
	if v, _ := attr(t, el, "title"); v != "second" {
		t.Errorf("expected second, got %q", v)
	}
}

func TestBindAttrRemovesAndRestores(t *testing.T) {
	eng, _ := newTestEngine()
	on := reactive.NewSignal(true)

	m := scope(t, eng, func() dom.Node {
		return H("a", Props{{Key: "href", Value: func() any {
			if on.Get() {
				return "/home"
			}
			return nil
		}}}, nil)
	})

	on.Set(false)
	flush(t)
	if _, ok := attr(t, m.Node, "href"); ok {
		t.Error("nil result should remove the attribute")
	}

	on.Set(true)
	flush(t)
	if v, ok := attr(t, m.Node, "href"); !ok || v != "/home" {
		t.Errorf("attribute should be restored, got %q %v", v, ok)
	}
}

func TestReactiveChildText(t *testing.T) {
	eng, _ := newTestEngine()
	count := reactive.NewSignal(0)
	double := reactive.NewMemo(func() int { return count.Get() * 2 })

	m := scope(t, eng, func() dom.Node {
		return H("p", nil, Children{"n=", count, " 2n=", double})
	})

	count.Set(4)
	flush(t)
	if got := m.Node.TextContent(); got != "n=4 2n=8" {
		t.Errorf("unexpected text %q", got)
	}
	if got := len(m.Node.ChildNodes()); got != 4 {
		t.Errorf("expected 4 text nodes, got %d", got)
	}
}

func TestClassListEntriesAreIndependent(t *testing.T) {
	eng, _ := newTestEngine()
	active := reactive.NewSignal(true)
	disabled := reactive.NewSignal(false)
	activeRuns, disabledRuns := 0, 0

	m := scope(t, eng, func() dom.Node {
		return H("button", Props{{Key: "classList", Value: Props{
			{Key: "btn", Value: true},
			{Key: "active", Value: func() bool { activeRuns++; return active.Get() }},
			{Key: "disabled", Value: func() bool { disabledRuns++; return disabled.Get() }},
			{Key: "ghost", Value: 0},
		}}}, nil)
	})
	cl := m.Node.(dom.Element).ClassList()

	if !cl.Contains("btn") || !cl.Contains("active") || cl.Contains("disabled") || cl.Contains("ghost") {
		t.Fatalf("unexpected classes %q", memdom.OuterHTML(m.Node))
	}

	active.Set(false)
	flush(t)
	if cl.Contains("active") {
		t.Error("active should be removed")
	}
	if activeRuns != 2 || disabledRuns != 1 {
		t.Errorf("only the changed entry should re-run: active=%d disabled=%d", activeRuns, disabledRuns)
	}
	if m.Owner().EffectCount() != 2 {
		t.Errorf("expected one effect per reactive entry, got %d", m.Owner().EffectCount())
	}
}

func TestStyleAndShow(t *testing.T) {
	eng, _ := newTestEngine()
	color := reactive.NewSignal("red")
	visible := reactive.NewSignal(false)

	m := scope(t, eng, func() dom.Node {
		return H("div", Props{
			{Key: "style", Value: map[string]any{
				"backgroundColor": color,
				"--gap":           "4px",
			}},
			{Key: "show", Value: visible},
		}, nil)
	})
	st := m.Node.(dom.Element).Style()

	if st.Get("background-color") != "red" || st.Get("--gap") != "4px" || st.Get("display") != "none" {
		t.Fatalf("unexpected style %s", memdom.OuterHTML(m.Node))
	}

	color.Set("blue")
	visible.Set(true)
	flush(t)
	if st.Get("backgroundColor") != "blue" {
		t.Errorf("expected blue, got %q", st.Get("backgroundColor"))
	}
	if st.Get("display") != "" {
		t.Errorf("expected display cleared, got %q", st.Get("display"))
	}
}

func TestStringStyleIsAttribute(t *testing.T) {
	eng, _ := newTestEngine()
	m := scope(t, eng, func() dom.Node {
		return H("div", Props{{Key: "style", Value: "color: red"}}, nil)
	})
	if v, _ := attr(t, m.Node, "style"); v != "color: red" {
		t.Errorf("expected raw style attribute, got %q", v)
	}
}

func TestInnerHTML(t *testing.T) {
	eng, _ := newTestEngine()
	body := reactive.NewSignal("<b>one</b>")

	m := scope(t, eng, func() dom.Node {
		return H("section", nil, Children{
			H("div", Props{{Key: "innerHTML", Value: "<i>static</i>"}}, nil),
			H("div", Props{{Key: "innerHTML", Value: body}}, nil),
		})
	})

	body.Set("<b>two</b>")
	flush(t)
	want := "<section><div><i>static</i></div><div><b>two</b></div></section>"
	if got := memdom.OuterHTML(m.Node); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
	if _, ok := attr(t, m.Node.ChildNodes()[0], "innerHTML"); ok {
		t.Error("innerHTML must not be set as an attribute")
	}
}

func TestRefAndListeners(t *testing.T) {
	eng, _ := newTestEngine()
	var ref dom.Node
	var elRef dom.Element
	clicks, focuses := 0, 0

	m := scope(t, eng, func() dom.Node {
		return H("button", Props{
			{Key: "ref", Value: func(n Node) { ref = n }},
			{Key: "on", Value: Props{
				{Key: "click", Value: func() { clicks++ }},
				{Key: "focus", Value: dom.EventListener(func(dom.Event) { focuses++ })},
			}},
		}, Children{
			H("span", Props{{Key: "ref", Value: func(el dom.Element) { elRef = el }}}, nil),
		})
	})

	if ref == nil || ref != m.Node {
		t.Fatal("ref should receive the element synchronously")
	}
	if elRef == nil || elRef.TagName() != "SPAN" {
		t.Fatal("element ref should receive the span")
	}
	btn := m.Node.(*memdom.Element)
	btn.Click()
	btn.DispatchEvent(memdom.NewEvent("focus", false))
	if clicks != 1 || focuses != 1 {
		t.Errorf("expected one click and one focus, got %d %d", clicks, focuses)
	}
}

func TestRenderClickEndToEnd(t *testing.T) {
	eng, doc := newTestEngine()
	host, _ := doc.CreateElement("div")
	_ = doc.Body().AppendChild(host)

	calls := 0
	onClick := func(dom.Event) { calls++ }
	app := func(Props) dom.Node {
		return H("button", Props{{Key: "on", Value: Props{{Key: "click", Value: onClick}}}}, Children{"Click"})
	}

	m, err := eng.Render(app, host, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Unmount()

	if host.ParentNode() != nil {
		t.Error("placeholder should be replaced")
	}
	if got := doc.Body().InnerHTML(); got != "<button>Click</button>" {
		t.Fatalf("unexpected body %q", got)
	}
	m.Node.(*memdom.Element).Click()
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
}

func TestComponentChildren(t *testing.T) {
	eng, _ := newTestEngine()
	var got Props
	Card := func(p Props) dom.Node {
		got = p
		return H("div", Props{{Key: "class", Value: "card"}}, p.Children())
	}

	m := scope(t, eng, func() dom.Node {
		return H(Card, Props{{Key: "title", Value: "t"}}, Children{"body"})
	})
	if got[0].Key != "children" || got[1].Key != "title" {
		t.Errorf("children should be injected first, got %+v", got)
	}
	if memdom.OuterHTML(m.Node) != `<div class="card">body</div>` {
		t.Errorf("unexpected html %s", memdom.OuterHTML(m.Node))
	}

	scope(t, eng, func() dom.Node {
		return H(Card, Props{{Key: "children", Value: Children{"explicit"}}}, Children{"positional"})
	})
	if c := got.Children(); len(c) != 1 || c[0] != "explicit" {
		t.Errorf("explicit children prop should win, got %v", c)
	}

	scope(t, eng, func() dom.Node {
		return H(Component(Card), nil, nil)
	})
	if _, ok := got.Get("children"); ok {
		t.Error("empty children should not be injected")
	}
}

func TestFragmentMountAndUnmount(t *testing.T) {
	eng, doc := newTestEngine()
	host, _ := doc.CreateElement("div")
	_ = doc.Body().AppendChild(host)
	label := reactive.NewSignal("x")

	app := func(Props) dom.Node {
		return Fragment(Children{
			H("h1", nil, Children{label}),
			"tail",
		})
	}
	m, err := eng.Render(app, host, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Body().InnerHTML(); got != "<h1>x</h1>tail" {
		t.Fatalf("unexpected body %q", got)
	}
	if len(m.Nodes()) != 2 {
		t.Fatalf("expected 2 mounted nodes, got %d", len(m.Nodes()))
	}

	m.Unmount()
	m.Unmount()
	if got := doc.Body().InnerHTML(); got != "" {
		t.Errorf("unmount should remove nodes, got %q", got)
	}
	if label.Subscribers() != 0 {
		t.Errorf("unmount should dispose bindings, got %d subscribers", label.Subscribers())
	}
}

func TestBuildErrors(t *testing.T) {
	eng, _ := newTestEngine()

	tests := []struct {
		name  string
		build func() dom.Node
		want  error
	}{
		{
			name:  "invalid tag",
			build: func() dom.Node { return H("no good", nil, nil) },
			want:  memdom.ErrInvalidCharacter,
		},
		{
			name:  "invalid attribute",
			build: func() dom.Node { return H("div", Props{{Key: "a b", Value: "x"}}, nil) },
			want:  memdom.ErrInvalidCharacter,
		},
		{
			name:  "invalid child",
			build: func() dom.Node { return H("div", nil, Children{struct{}{}}) },
			want:  ErrInvalidChild,
		},
		{
			name:  "invalid handler",
			build: func() dom.Node { return H("div", Props{{Key: "on", Value: Props{{Key: "click", Value: 1}}}}, nil) },
			want:  ErrInvalidHandler,
		},
		{
			name:  "invalid ref",
			build: func() dom.Node { return H("div", Props{{Key: "ref", Value: "nope"}}, nil) },
			want:  ErrInvalidRef,
		},
		{
			name:  "fragment attribute",
			build: func() dom.Node { return H("", Props{{Key: "id", Value: "x"}}, nil) },
			want:  ErrFragmentDirective,
		},
		{
			name: "bad class token",
			build: func() dom.Node {
				return H("div", Props{{Key: "classList", Value: Props{{Key: "a b", Value: true}}}}, nil)
			},
			want: memdom.ErrInvalidCharacter,
		},
		{
			name:  "nil component",
			build: func() dom.Node { return H(Component(nil), nil, nil) },
			want:  ErrNilComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Scope(tt.build)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var he *Error
			if !errors.As(err, &he) {
				t.Errorf("expected *Error, got %T", err)
			}
		})
	}
}

func TestHPanicsOutsideScope(t *testing.T) {
	defer func() {
		r := recover()
		he, ok := r.(*Error)
		if !ok {
			t.Fatalf("expected *Error panic, got %v", r)
		}
		if he.Op != "create" || !errors.Is(he, memdom.ErrInvalidCharacter) {
			t.Errorf("unexpected error %v", he)
		}
	}()
	H("<x>", nil, nil)
}

// failingElement rejects the attribute value "boom".
type failingElement struct {
	dom.Element
	attrs map[string]string
}

var errBoom = errors.New("boom")

func (f *failingElement) SetAttribute(name, value string) error {
	if value == "boom" {
		return errBoom
	}
	f.attrs[name] = value
	return nil
}

func TestBindingErrors(t *testing.T) {
	owner := reactive.NewOwner(nil)
	defer owner.Dispose()

	el := &failingElement{attrs: map[string]string{}}
	reactive.WithOwner(owner, func() {
		if err := BindAttr(el, "x", func() any { return "boom" }); !errors.Is(err, errBoom) {
			t.Errorf("first-run error should be returned, got %v", err)
		}
	})

	value := reactive.NewSignal("ok")
	reactive.WithOwner(owner, func() {
		if err := BindAttr(el, "y", func() any { return value.Get() }); err != nil {
			t.Fatal(err)
		}
	})
	if value.Subscribers() != 1 {
		t.Fatalf("expected live binding")
	}

	value.Set("boom")
	defer func() {
		r := recover()
		he, ok := r.(*Error)
		if !ok || !errors.Is(he, errBoom) {
			t.Fatalf("expected *Error panic wrapping errBoom, got %v", r)
		}
		if reactive.Pending() {
			t.Error("nothing should stay pending after the panic")
		}
	}()
	_ = reactive.Flush()
	t.Fatal("Flush should panic")
}

func TestBuildOutsideScopeReleasesOwner(t *testing.T) {
	eng, _ := newTestEngine()
	parent := reactive.NewOwner(nil)
	defer parent.Dispose()

	label := reactive.NewSignal("x")
	reactive.WithOwner(parent, func() {
		for i := 0; i < 3; i++ {
			if _, err := eng.Build(HostTag("p"), nil, Children{"static"}); err != nil {
				t.Fatalf("Build: %v", err)
			}
		}
		if parent.ChildCount() != 0 {
			t.Errorf("static builds should leave no owners, got %d", parent.ChildCount())
		}

		if _, err := eng.Build(HostTag("p"), nil, Children{label}); err != nil {
			t.Fatalf("Build: %v", err)
		}
	})
	if parent.ChildCount() != 1 {
		t.Errorf("a live binding should keep its owner, got %d", parent.ChildCount())
	}
	if label.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", label.Subscribers())
	}
}
