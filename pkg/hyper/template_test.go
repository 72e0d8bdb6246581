package hyper

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/hyperdom/pkg/dom"
	"github.com/vango-dev/hyperdom/pkg/dom/memdom"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

func TestTemplateRendersOnce(t *testing.T) {
	eng, _ := newTestEngine()
	renders := 0
	row := eng.Template(func() dom.Node {
		renders++
		return H("tr", Props{{Key: "class", Value: "row"}}, Children{
			H("td", nil, Children{"cell"}),
		})
	})

	var nodes []dom.Node
	scope(t, eng, func() dom.Node {
		for i := 0; i < 3; i++ {
			nodes = append(nodes, row())
		}
		return H("tbody", nil, Children{nodes})
	})

	if renders != 1 {
		t.Errorf("render should run once, ran %d times", renders)
	}
	if nodes[0] == nodes[1] || nodes[1] == nodes[2] {
		t.Error("instances must be distinct nodes")
	}
	for _, n := range nodes {
		if got := memdom.OuterHTML(n); got != `<tr class="row"><td>cell</td></tr>` {
			t.Errorf("unexpected clone %s", got)
		}
	}
}

func TestTemplateRejectsLiveBindings(t *testing.T) {
	eng, _ := newTestEngine()
	label := reactive.NewSignal("x")

	tests := []struct {
		name   string
		render func() dom.Node
	}{
		{"reactive child", func() dom.Node { return H("p", nil, Children{label}) }},
		{"listener", func() dom.Node {
			return H("p", Props{{Key: "on", Value: Props{{Key: "click", Value: func() {}}}}}, nil)
		}},
		{"ref", func() dom.Node { return H("p", Props{{Key: "ref", Value: func(Node) {}}}, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := NewStamp(tt.render)
			_, err := eng.Scope(func() dom.Node {
				n, err := tmpl.Instance()
				if err != nil {
					panic(err)
				}
				return n
			})
			if !errors.Is(err, ErrDynamicTemplate) {
				t.Fatalf("expected ErrDynamicTemplate, got %v", err)
			}
			if _, err := tmpl.Instance(); !errors.Is(err, ErrDynamicTemplate) {
				t.Errorf("error should be sticky, got %v", err)
			}
		})
	}

	if label.Subscribers() != 0 {
		t.Errorf("probe render bindings should be disposed, got %d", label.Subscribers())
	}
}

func TestTemplateFactoryPanics(t *testing.T) {
	factory := Template(func() dom.Node { return nil })
	defer func() {
		he, ok := recover().(*Error)
		if !ok || !errors.Is(he, ErrNilComponentResult) {
			t.Fatalf("expected *Error wrapping ErrNilComponentResult, got %v", he)
		}
	}()
	factory()
}

func TestEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	eng := New(memdom.NewDocument(), WithMetrics(reg))
	// A second engine on the same registry shares the collectors.
	_ = New(memdom.NewDocument(), WithMetrics(reg))

	count := reactive.NewSignal(1)
	m, err := eng.Scope(func() dom.Node {
		return H("div", Props{{Key: "id", Value: "a"}, {Key: "title", Value: count}}, Children{"x"})
	})
	if err != nil {
		t.Fatal(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if c := metric.GetCounter(); c != nil {
				values[key] = c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				values[key] = g.GetValue()
			}
		}
	}

	checks := map[string]float64{
		"hyperdom_engine_nodes_created_total/element":       1,
		"hyperdom_engine_bindings_total/attribute/static":   1,
		"hyperdom_engine_bindings_total/attribute/reactive": 1,
		"hyperdom_engine_active_mounts":                     1,
	}
	for key, want := range checks {
		if values[key] != want {
			t.Errorf("%s = %v, want %v", key, values[key], want)
		}
	}

	m.Unmount()
}

func TestTemplateRenderPanicIsSticky(t *testing.T) {
	renders := 0
	tmpl := NewStamp(func() dom.Node {
		renders++
		panic("boom")
	})

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("first Instance should re-raise the render panic, got %v", r)
			}
		}()
		tmpl.Instance()
	}()

	_, err := tmpl.Instance()
	var he *Error
	if !errors.As(err, &he) || he.Op != "template" {
		t.Fatalf("expected template *Error, got %v", err)
	}
	if renders != 1 {
		t.Errorf("render should run once, ran %d times", renders)
	}
}
