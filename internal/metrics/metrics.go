package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface the handlers talk to. A noop
// implementation backs it when metrics are disabled.
type Recorder interface {
	RecordLaunch(outcome string)
	RecordCodeExchange(success bool)
	RecordTokenRefresh(success bool)
	RecordProfileProbe(valid bool)
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}

// Launch outcomes recorded by the orchestrator.
const (
	LaunchNewUser   = "new_user"
	LaunchRefreshed = "refreshed"
	LaunchValid     = "valid"
	LaunchReauth    = "reauth"
	LaunchError     = "error"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	LaunchesTotal       *prometheus.CounterVec
	CodeExchangesTotal  *prometheus.CounterVec
	TokenRefreshesTotal *prometheus.CounterVec
	ProfileProbesTotal  *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the Prometheus recorder when enabled, a noop otherwise.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopRecorder()
	}
	once.Do(func() {
		defaultMetrics = newMetrics()
	})
	return defaultMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		LaunchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ltibridge_launches_total",
			Help: "LTI launches by outcome",
		}, []string{"outcome"}),
		CodeExchangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ltibridge_code_exchanges_total",
			Help: "OAuth2 authorization code exchanges by result",
		}, []string{"result"}),
		TokenRefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ltibridge_token_refreshes_total",
			Help: "OAuth2 refresh token exchanges by result",
		}, []string{"result"}),
		ProfileProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ltibridge_profile_probes_total",
			Help: "Bearer token probes against the platform profile API by result",
		}, []string{"result"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ltibridge_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ltibridge_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (m *Metrics) RecordLaunch(outcome string) {
	m.LaunchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCodeExchange(success bool) {
	m.CodeExchangesTotal.WithLabelValues(resultLabel(success)).Inc()
}

func (m *Metrics) RecordTokenRefresh(success bool) {
	m.TokenRefreshesTotal.WithLabelValues(resultLabel(success)).Inc()
}

func (m *Metrics) RecordProfileProbe(valid bool) {
	m.ProfileProbesTotal.WithLabelValues(resultLabel(valid)).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
