package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phishing_detector"

// Collector records detection metrics on a dedicated registry.
//
// Metrics:
//   - phishing_detector_analyses_total: email analyses by outcome
//   - phishing_detector_analysis_duration_seconds: email analysis duration
//   - phishing_detector_urls_total: URLs seen by result (phishing, benign, invalid)
//   - phishing_detector_attachments_total: attachments seen by suspicious flag
//   - phishing_detector_narrative_fallbacks_total: narrative analyses that fell back to the default
//   - phishing_detector_threat_checks_total: reputation lookups by status
type Collector struct {
	registry *prometheus.Registry

	analysesTotal      *prometheus.CounterVec
	analysisDuration   prometheus.Histogram
	urlsTotal          *prometheus.CounterVec
	attachmentsTotal   *prometheus.CounterVec
	narrativeFallbacks prometheus.Counter
	threatChecksTotal  *prometheus.CounterVec
}

// NewCollector creates and registers the detection metrics with the registry
func NewCollector(registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of email analyses",
			},
			[]string{"outcome"},
		),

		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of email analyses in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		urlsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "urls_total",
				Help:      "Total number of URLs processed by result",
			},
			[]string{"result"},
		),

		attachmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attachments_total",
				Help:      "Total number of attachment filenames checked",
			},
			[]string{"suspicious"},
		),

		narrativeFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "narrative_fallbacks_total",
				Help:      "Total number of narrative analyses replaced by the default analysis",
			},
		),

		threatChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "threat_checks_total",
				Help:      "Total number of reputation lookups by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.analysesTotal,
		c.analysisDuration,
		c.urlsTotal,
		c.attachmentsTotal,
		c.narrativeFallbacks,
		c.threatChecksTotal,
	)

	return c
}

// ObserveURL counts one processed URL
func (c *Collector) ObserveURL(result string) {
	c.urlsTotal.WithLabelValues(result).Inc()
}

// ObserveAttachment counts one checked attachment filename
func (c *Collector) ObserveAttachment(suspicious bool) {
	label := "false"
	if suspicious {
		label = "true"
	}
	c.attachmentsTotal.WithLabelValues(label).Inc()
}

// ObserveNarrativeFallback counts one degraded narrative analysis
func (c *Collector) ObserveNarrativeFallback() {
	c.narrativeFallbacks.Inc()
}

// ObserveAnalysis records one finished email analysis
func (c *Collector) ObserveAnalysis(outcome string, seconds float64) {
	c.analysesTotal.WithLabelValues(outcome).Inc()
	c.analysisDuration.Observe(seconds)
}

// ObserveThreatCheck counts one reputation lookup
func (c *Collector) ObserveThreatCheck(status string) {
	c.threatChecksTotal.WithLabelValues(status).Inc()
}

// Handler exposes the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
