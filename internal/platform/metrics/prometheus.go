package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus metrics. All methods are safe on a nil
// receiver so callers that run without metrics need no guards.
type MetricsManager struct {
	Registry             *prometheus.Registry
	ListingsCreatedTotal prometheus.Counter
	ListingsExpiredTotal prometheus.Counter
	StatusChangesTotal   *prometheus.CounterVec
	ImpressionsTotal     prometheus.Counter
	ClicksTotal          prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec
	APILatency           *prometheus.HistogramVec
}

// NewMetricsManager registers the service metrics on a private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_expired_total",
			Help:      "Total number of listings moved to Expired.",
		}),
		StatusChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_status_changes_total",
			Help:      "Listing status transitions by target status.",
		}, []string{"status"}),
		ImpressionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_impressions_total",
			Help:      "Total number of recorded listing impressions.",
		}),
		ClicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_clicks_total",
			Help:      "Total number of recorded listing clicks.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route and status code.",
		}, []string{"route", "code"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsExpiredTotal,
		m.StatusChangesTotal,
		m.ImpressionsTotal,
		m.ClicksTotal,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) ListingCreated() {
	if m == nil {
		return
	}
	m.ListingsCreatedTotal.Inc()
}

func (m *MetricsManager) ListingsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.ListingsExpiredTotal.Add(float64(n))
}

func (m *MetricsManager) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.StatusChangesTotal.WithLabelValues(status).Inc()
}

func (m *MetricsManager) ImpressionRecorded() {
	if m == nil {
		return
	}
	m.ImpressionsTotal.Inc()
}

func (m *MetricsManager) ClickRecorded() {
	if m == nil {
		return
	}
	m.ClicksTotal.Inc()
}

// ObserveRequest records latency for every request and counts responses with status >= 400.
func (m *MetricsManager) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if code >= http.StatusBadRequest {
		m.APIErrorsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
}

// NewMetricsServer returns the HTTP server exposing /metrics, or nil when port is empty.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	if port == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer blocks serving /metrics until the server is shut down.
func StartMetricsServer(server *http.Server, appLogger *logger.Logger) error {
	if server == nil {
		appLogger.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}
	appLogger.Info("Prometheus metrics server starting", zap.String("addr", server.Addr), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
