// Package metrics exposes Prometheus collectors for generation runs, Jira
// calls and the issue cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry prometheus.Gatherer

	// Generation
	GenerationRuns            *prometheus.CounterVec
	GenerationDurationSeconds *prometheus.HistogramVec
	GenerationFailures        *prometheus.CounterVec
	TestCasesGenerated        *prometheus.CounterVec
	DegradedResults           *prometheus.CounterVec

	// Jira
	JiraRequests *prometheus.CounterVec

	// Cache
	CacheLookups *prometheus.CounterVec

	// Comments
	CommentsPosted prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry, together
// with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		GenerationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_generation_runs_total",
				Help: "Generation runs by provider and outcome",
			},
			[]string{"provider", "outcome"}, // outcome: ok|degraded|empty|failed
		),
		GenerationDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testgen_generation_duration_seconds",
				Help:    "Duration of generation runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s..256s
			},
			[]string{"provider"},
		),
		GenerationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_generation_failures_total",
				Help: "Failed generation runs by stage and error kind",
			},
			[]string{"stage", "kind"},
		),
		TestCasesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_test_cases_generated_total",
				Help: "Parsed test cases by category",
			},
			[]string{"category"},
		),
		DegradedResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_degraded_results_total",
				Help: "Responses that fell back to placeholder test cases",
			},
			[]string{"provider"},
		),
		JiraRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_jira_requests_total",
				Help: "Jira API requests by operation and result",
			},
			[]string{"op", "result"}, // op: get_issue|search|add_comment, result: ok|error
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testgen_issue_cache_lookups_total",
				Help: "Issue cache lookups by result",
			},
			[]string{"result"}, // result: hit|miss|error
		),
		CommentsPosted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "testgen_comments_posted_total",
				Help: "Test case comments posted to Jira",
			},
		),
	}

	reg.MustRegister(
		m.GenerationRuns,
		m.GenerationDurationSeconds,
		m.GenerationFailures,
		m.TestCasesGenerated,
		m.DegradedResults,
		m.JiraRequests,
		m.CacheLookups,
		m.CommentsPosted,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Generation

func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationRuns.WithLabelValues(provider, outcome).Inc()
	m.GenerationDurationSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) IncGenerationFailure(stage, kind string) {
	if m == nil {
		return
	}
	m.GenerationFailures.WithLabelValues(stage, kind).Inc()
}

func (m *Metrics) IncTestCase(category string) {
	if m == nil {
		return
	}
	m.TestCasesGenerated.WithLabelValues(category).Inc()
}

func (m *Metrics) IncDegraded(provider string) {
	if m == nil {
		return
	}
	m.DegradedResults.WithLabelValues(provider).Inc()
}

// Jira

func (m *Metrics) IncJiraRequest(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JiraRequests.WithLabelValues(op, result).Inc()
}

// Cache

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Comments

func (m *Metrics) IncCommentPosted() {
	if m == nil {
		return
	}
	m.CommentsPosted.Inc()
}
