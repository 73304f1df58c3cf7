package build

import (
	"github.com/ancientlore/folio/cache"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	builds   prometheus.Counter
	failures prometheus.Counter
	pages    prometheus.Gauge
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer, md *cache.Markdown) *metrics {
	m := &metrics{
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_builds_total",
			Help: "Number of site builds started.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_build_failures_total",
			Help: "Number of site builds that failed.",
		}),
		pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "folio_pages",
			Help: "Pages written by the last successful build.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_build_duration_seconds",
			Help:    "Time taken by successful builds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.builds, m.failures, m.pages, m.duration,
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "folio_markdown_renders_total",
				Help: "Markdown documents rendered, excluding cache hits.",
			}, func() float64 { return float64(md.Renders()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "folio_markdown_cache_hits_total",
				Help: "Rendered Markdown served from the cache.",
			}, func() float64 { return float64(md.Hits()) }),
		)
	}
	return m
}
