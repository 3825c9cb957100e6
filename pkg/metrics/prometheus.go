package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	turnsTotal        *prometheus.CounterVec
	turnDuration      *prometheus.HistogramVec
	contextTokens     *prometheus.HistogramVec
	compressionsTotal prometheus.Counter
	budgetUsedTokens  prometheus.Histogram
	budgetUtilization prometheus.Histogram
	modulesIncluded   prometheus.Histogram
	degradedTotal     *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder registered against the default registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWith(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWith creates a recorder registered against the given registerer.
func NewPrometheusRecorderWith(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_turns_total",
				Help: "Total number of processed conversation turns by conversation mode",
			},
			[]string{"mode"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "context_turn_duration_seconds",
				Help:    "Duration of turn processing in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		contextTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "context_window_tokens",
				Help:    "Tokens in the assembled context window by component",
				Buckets: prometheus.ExponentialBuckets(16, 2, 12),
			},
			[]string{"component"},
		),
		compressionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "context_compressions_total",
				Help: "Total number of turns where history compression ran",
			},
		),
		budgetUsedTokens: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "context_module_budget_used_tokens",
				Help:    "Tokens consumed by selected context modules per turn",
				Buckets: prometheus.ExponentialBuckets(16, 2, 12),
			},
		),
		budgetUtilization: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "context_module_budget_utilization",
				Help:    "Fraction of the module token budget consumed per turn",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		modulesIncluded: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "context_modules_included",
				Help:    "Number of context modules selected per turn",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
		),
		degradedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_degraded_total",
				Help: "Total number of turns where a dependency degraded to a fallback",
			},
			[]string{"dependency"},
		),
	}
}

// ObserveTurn records a processed conversation turn.
func (p *PrometheusRecorder) ObserveTurn(mode string, duration time.Duration) {
	p.turnsTotal.WithLabelValues(mode).Inc()
	p.turnDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// ObserveContextWindow records the assembled window size and compression outcome.
func (p *PrometheusRecorder) ObserveContextWindow(messageTokens, summaryTokens int, compressed bool) {
	p.contextTokens.WithLabelValues("messages").Observe(float64(messageTokens))
	p.contextTokens.WithLabelValues("summary").Observe(float64(summaryTokens))
	if compressed {
		p.compressionsTotal.Inc()
	}
}

// ObserveAllocation records module budget usage for a turn.
func (p *PrometheusRecorder) ObserveAllocation(usedTokens, availableTokens, includedModules int) {
	p.budgetUsedTokens.Observe(float64(usedTokens))
	if availableTokens > 0 {
		p.budgetUtilization.Observe(float64(usedTokens) / float64(availableTokens))
	}
	p.modulesIncluded.Observe(float64(includedModules))
}

// IncDegraded increments the degraded-dependency counter.
func (p *PrometheusRecorder) IncDegraded(dependency string) {
	p.degradedTotal.WithLabelValues(dependency).Inc()
}
