package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rulepilot"

// Recorder 엔진 Prometheus 수집기
// ⭐ SSOT: 메트릭 이름/라벨은 여기서만 정의
// nil *Recorder 는 모든 호출이 no-op (테스트, 메트릭 비활성)
type Recorder struct {
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	priceFetches      *prometheus.CounterVec
	simulatedPaths    prometheus.Counter
	equityWeight      *prometheus.GaugeVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of engine operations in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed engine operations",
			},
			[]string{"operation"},
		),
		priceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_fetches_total",
				Help:      "Price feed fetches by source and outcome",
			},
			[]string{"source", "status"},
		),
		simulatedPaths: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulated_paths_total",
				Help:      "Total number of Monte Carlo paths simulated",
			},
		),
		equityWeight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "signal_equity_weight",
				Help:      "Most recent monthly equity weight per ticker",
			},
			[]string{"ticker"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}

	reg.MustRegister(
		r.operationDuration,
		r.operationErrors,
		r.priceFetches,
		r.simulatedPaths,
		r.equityWeight,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the process-wide Recorder registered on the default registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// ObserveOperation records the duration of op and counts it as failed when err != nil.
func (r *Recorder) ObserveOperation(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		r.operationErrors.WithLabelValues(op).Inc()
	}
}

// RecordFetch counts a price fetch outcome ("ok", "cache", "no_data", "error").
func (r *Recorder) RecordFetch(source, status string) {
	if r == nil {
		return
	}
	r.priceFetches.WithLabelValues(source, status).Inc()
}

// AddSimulatedPaths adds n Monte Carlo paths.
func (r *Recorder) AddSimulatedPaths(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.simulatedPaths.Add(float64(n))
}

// SetEquityWeight publishes the latest signal for ticker.
func (r *Recorder) SetEquityWeight(ticker string, w float64) {
	if r == nil {
		return
	}
	r.equityWeight.WithLabelValues(ticker).Set(w)
}

// ObserveHTTP records one served request; route should be a template to keep cardinality low.
func (r *Recorder) ObserveHTTP(route, method, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
