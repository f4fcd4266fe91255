package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the parsing metrics. A nil *Manager is valid and records
// nothing, so components can take one unconditionally.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	pages         *prometheus.CounterVec
	sheets        prometheus.Counter
	sheetFailures *prometheus.CounterVec
	parseDuration prometheus.Histogram
	jobs          *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

// NewManager creates a manager on a fresh registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoregest",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "pages_total",
		Help:      "Pages processed, by outcome",
	}, []string{"status"})

	m.sheets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sheets_total",
		Help:      "Score sheets emitted as performance records",
	})

	m.sheetFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sheet_failures_total",
		Help:      "Pages rejected by a structural, header or consistency failure, by kind",
	}, []string{"kind"})

	m.parseDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "pdf_parse_seconds",
		Help:      "Time spent parsing one PDF",
		Buckets:   m.histogramBuckets,
	})

	m.jobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "jobs_total",
		Help:      "Parse jobs finished, by terminal status",
	}, []string{"status"})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "queue_depth",
		Help:      "Parse jobs waiting for a worker",
	})
}

// RecordPage counts one page outcome.
func (m *Manager) RecordPage(status string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(status).Inc()
}

// RecordSheets counts emitted performance records.
func (m *Manager) RecordSheets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sheets.Add(float64(n))
}

// RecordSheetFailure counts a rejected page by error kind.
func (m *Manager) RecordSheetFailure(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.sheetFailures.WithLabelValues(kind).Inc()
}

// ObserveParse records the duration of one PDF parse.
func (m *Manager) ObserveParse(d time.Duration) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(d.Seconds())
}

// RecordJob counts a job reaching a terminal status.
func (m *Manager) RecordJob(status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
}

// SetQueueDepth reports the number of queued jobs.
func (m *Manager) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
