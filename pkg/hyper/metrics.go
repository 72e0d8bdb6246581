package hyper

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsNamespace is the namespace of the engine's Prometheus metrics.
const MetricsNamespace = "hyperdom"

// metrics holds the engine's Prometheus collectors. A nil *metrics records
// nothing.
type metrics struct {
	elements       *prometheus.CounterVec
	bindings       *prometheus.CounterVec
	templateClones prometheus.Counter
	activeMounts   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		elements: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "engine",
			Name:      "nodes_created_total",
			Help:      "Nodes constructed by H, by kind.",
		}, []string{"kind"})),

		bindings: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "engine",
			Name:      "bindings_total",
			Help:      "Directive applications, by directive and mode (static or reactive).",
		}, []string{"directive", "mode"})),

		templateClones: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "engine",
			Name:      "template_clones_total",
			Help:      "Nodes produced by cloning a template.",
		})),

		activeMounts: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: "engine",
			Name:      "active_mounts",
			Help:      "Mounted trees that have not been unmounted.",
		})),
	}
}

// register registers c, reusing an identical collector that is already
// registered so several engines can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) nodeCreated(kind string) {
	if m == nil {
		return
	}
	m.elements.WithLabelValues(kind).Inc()
}

func (m *metrics) binding(directive string, reactive bool) {
	if m == nil {
		return
	}
	mode := "static"
	if reactive {
		mode = "reactive"
	}
	m.bindings.WithLabelValues(directive, mode).Inc()
}

func (m *metrics) templateCloned() {
	if m == nil {
		return
	}
	m.templateClones.Inc()
}

func (m *metrics) mounted(delta float64) {
	if m == nil {
		return
	}
	m.activeMounts.Add(delta)
}
