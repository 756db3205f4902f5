package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	CrossoverSignalsTotal *prometheus.CounterVec

	// Alert metrics
	AlertDeliveriesTotal *prometheus.CounterVec
	AlertDuration        prometheus.Histogram

	// Market data provider metrics
	ProviderRequestsTotal *prometheus.CounterVec
	ProviderErrorsTotal   *prometheus.CounterVec
	ProviderDuration      *prometheus.HistogramVec

	// Database metrics
	DBErrorsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// sizeBuckets are histogram buckets for response sizes (in bytes)
var sizeBuckets = []float64{100, 1_000, 10_000, 100_000, 1_000_000}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of series analysis requests",
			},
			[]string{"ticker", "timeframe"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trend_watch",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Duration of series analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"ticker", "status"},
		),
		AnalysisErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Total number of analysis errors by type",
			},
			[]string{"ticker", "error_type"},
		),
		CrossoverSignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "analysis",
				Name:      "crossover_signals_total",
				Help:      "Total number of detected moving-average crossovers by direction",
			},
			[]string{"ticker", "direction"},
		),
		AlertDeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "alerts",
				Name:      "deliveries_total",
				Help:      "Total number of alert delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		AlertDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "trend_watch",
				Subsystem: "alerts",
				Name:      "delivery_duration_seconds",
				Help:      "Duration of alert delivery in seconds",
				Buckets:   defaultBuckets,
			},
		),
		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "provider",
				Name:      "requests_total",
				Help:      "Total number of market data provider requests",
			},
			[]string{"provider", "operation"},
		),
		ProviderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "provider",
				Name:      "errors_total",
				Help:      "Total number of market data provider errors",
			},
			[]string{"provider", "operation"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trend_watch",
				Subsystem: "provider",
				Name:      "duration_seconds",
				Help:      "Duration of market data provider calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"provider", "operation"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors by operation",
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trend_watch",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trend_watch",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   sizeBuckets,
			},
			[]string{"method", "route"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "trend_watch",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"breaker"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trend_watch",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"breaker"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		globalMetrics = NewMetrics(prometheus.NewRegistry())
	}
	return globalMetrics
}

// RecordAnalysisRequest records a series analysis request
func (m *Metrics) RecordAnalysisRequest(ticker, timeframe string) {
	m.AnalysisRequestsTotal.WithLabelValues(ticker, timeframe).Inc()
}

// RecordAnalysisDuration records the duration of a series analysis
func (m *Metrics) RecordAnalysisDuration(ticker, status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(ticker, status).Observe(duration.Seconds())
}

// RecordAnalysisError records an analysis error
func (m *Metrics) RecordAnalysisError(ticker, errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(ticker, errorType).Inc()
}

// RecordCrossoverSignal records a detected crossover
func (m *Metrics) RecordCrossoverSignal(ticker, direction string) {
	m.CrossoverSignalsTotal.WithLabelValues(ticker, direction).Inc()
}

// RecordAlertDelivery records an alert delivery attempt
func (m *Metrics) RecordAlertDelivery(outcome string, duration time.Duration) {
	m.AlertDeliveriesTotal.WithLabelValues(outcome).Inc()
	m.AlertDuration.Observe(duration.Seconds())
}

// RecordProviderRequest records a market data provider request
func (m *Metrics) RecordProviderRequest(provider, operation string) {
	m.ProviderRequestsTotal.WithLabelValues(provider, operation).Inc()
}

// RecordProviderError records a market data provider error
func (m *Metrics) RecordProviderError(provider, operation string) {
	m.ProviderErrorsTotal.WithLabelValues(provider, operation).Inc()
}

// RecordProviderDuration records the duration of a provider call
func (m *Metrics) RecordProviderDuration(provider, operation string, duration time.Duration) {
	m.ProviderDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation string) {
	m.DBErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records an HTTP request with its outcome
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
}

// SetCircuitBreakerState records a circuit breaker state change
func (m *Metrics) SetCircuitBreakerState(breaker string, state int) {
	m.CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(breaker string) {
	m.CircuitBreakerTrips.WithLabelValues(breaker).Inc()
}
