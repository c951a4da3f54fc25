package clinicseo

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/clinicseo/seo"
)

// Metrics holds the resolver counters.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	memoHits    prometheus.Counter
	failures    *prometheus.CounterVec
	fallbacks   prometheus.Counter
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicseo",
			Name:      "resolutions_total",
			Help:      "Resolved page metadata by structured data kind.",
		}, []string{"kind"}),
		memoHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicseo",
			Name:      "memo_hits_total",
			Help:      "Resolutions served from the memo.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicseo",
			Name:      "resolve_failures_total",
			Help:      "Failed resolutions by reason.",
		}, []string{"reason"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicseo",
			Name:      "fallback_renders_total",
			Help:      "Pages rendered with degraded fallback metadata.",
		}),
	}
	reg.MustRegister(
		m.resolutions,
		m.memoHits,
		m.failures,
		m.fallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) observe(meta seo.Metadata, hit bool) {
	m.resolutions.WithLabelValues(string(meta.Kind)).Inc()
	if hit {
		m.memoHits.Inc()
	}
}

func (m *Metrics) failure(err error) {
	reason := "other"
	switch {
	case seo.IsFetchFailure(err):
		reason = "fetch"
	case errors.Is(err, seo.ErrConfigurationMissing):
		reason = "configuration_missing"
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
