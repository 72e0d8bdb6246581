package gsx

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	filesCompiled   *prometheus.CounterVec
	compileDuration prometheus.Histogram
	markupLowered   prometheus.Counter
)

// initMetrics registers the compiler metrics with the default registry the
// first time a file is compiled.
func initMetrics() {
	metricsOnce.Do(func() {
		filesCompiled = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperdom",
			Subsystem: "gsx",
			Name:      "files_compiled_total",
			Help:      "Files compiled, by result.",
		}, []string{"result"})

		compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hyperdom",
			Subsystem: "gsx",
			Name:      "compile_duration_seconds",
			Help:      "Time spent compiling one file.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		})

		markupLowered = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperdom",
			Subsystem: "gsx",
			Name:      "markup_lowered_total",
			Help:      "Elements and fragments lowered to H calls.",
		})
	})
}

func observeCompile(d time.Duration, markup int, err error) {
	initMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	filesCompiled.WithLabelValues(result).Inc()
	compileDuration.Observe(d.Seconds())
	markupLowered.Add(float64(markup))
}
