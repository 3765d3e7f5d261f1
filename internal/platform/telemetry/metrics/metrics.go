package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "simulator"

// Metrics holds the simulator collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RunsTotal           *prometheus.CounterVec
	RunDuration         prometheus.Histogram
	CaptchaTotal        *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Resolved command runs by result kind",
		},
		[]string{"kind"},
	)
	m.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time from starting a run to publishing its result",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
	m.CaptchaTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captcha_verifications_total",
			Help:      "Captcha answers by outcome",
		},
		[]string{"outcome"},
	)
	m.LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Completed logins by method",
		},
		[]string{"method"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RunsTotal,
		m.RunDuration,
		m.CaptchaTotal,
		m.LoginsTotal,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackPages exposes the live page count reported by count.
func (m *Metrics) TrackPages(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_active",
			Help:      "Page instances currently held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

// RecordRun counts a resolved run.
func (m *Metrics) RecordRun(kind string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(kind).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// RecordCaptcha counts a verified captcha answer.
func (m *Metrics) RecordCaptcha(outcome string) {
	m.CaptchaTotal.WithLabelValues(outcome).Inc()
}

// RecordLogin counts a completed login.
func (m *Metrics) RecordLogin(method string) {
	m.LoginsTotal.WithLabelValues(method).Inc()
}

// RequestTracking records request counts and latency. route labels the
// request; unmatched requests share one label to keep cardinality bounded.
func (m *Metrics) RequestTracking(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			label := "other"
			if route != nil {
				if value := route(r); value != "" {
					label = value
				}
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(recorder.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
