package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API and workflow flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	noticesIssuedTotal       *prometheus.CounterVec
	dispatchFailedTotal      *prometheus.CounterVec
	dispatchDuration         *prometheus.HistogramVec
	acknowledgementsTotal    *prometheus.CounterVec
	allocationRetriesTotal   *prometheus.CounterVec
	allocationConflictsTotal *prometheus.CounterVec
	casesAssignedTotal       *prometheus.CounterVec
	noticesExpiredTotal      prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "collections_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		noticesIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "notices_issued_total",
				Help:      "Total number of notices issued grouped by final status.",
			},
			[]string{"status"},
		),
		dispatchFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "notice_dispatch_failed_total",
				Help:      "Total number of failed notice deliveries grouped by mode and reason.",
			},
			[]string{"mode", "reason"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "collections_engine",
				Name:      "notice_dispatch_duration_seconds",
				Help:      "Notice delivery duration in seconds grouped by communication mode.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"mode"},
		),
		acknowledgementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "acknowledgements_total",
				Help:      "Total number of recorded acknowledgements grouped by outcome.",
			},
			[]string{"outcome"},
		),
		allocationRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "sequence_allocation_retries_total",
				Help:      "Total number of sequence allocation retries grouped by prefix.",
			},
			[]string{"prefix"},
		),
		allocationConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "sequence_allocation_conflicts_total",
				Help:      "Total number of exhausted sequence allocation attempts grouped by prefix.",
			},
			[]string{"prefix"},
		),
		casesAssignedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "cases_assigned_total",
				Help:      "Total number of lawyer assignments grouped by case type.",
			},
			[]string{"case_type"},
		),
		noticesExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "collections_engine",
				Name:      "notices_expired_total",
				Help:      "Total number of notices flipped to expired by the scanner.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.noticesIssuedTotal,
		m.dispatchFailedTotal,
		m.dispatchDuration,
		m.acknowledgementsTotal,
		m.allocationRetriesTotal,
		m.allocationConflictsTotal,
		m.casesAssignedTotal,
		m.noticesExpiredTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncNoticeIssued(status string) {
	if m == nil {
		return
	}
	m.noticesIssuedTotal.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *Metrics) IncDispatchFailed(mode string, reason string) {
	if m == nil {
		return
	}
	reasonLabel := normalizeLabel(reason)
	m.dispatchFailedTotal.WithLabelValues(normalizeLabel(mode), reasonLabel).Inc()
}

func (m *Metrics) ObserveDispatchDuration(mode string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.dispatchDuration.WithLabelValues(normalizeLabel(mode)).Observe(seconds)
}

func (m *Metrics) IncAcknowledgement(outcome string) {
	if m == nil {
		return
	}
	m.acknowledgementsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncAllocationRetry(prefix string) {
	if m == nil {
		return
	}
	m.allocationRetriesTotal.WithLabelValues(normalizeLabel(prefix)).Inc()
}

func (m *Metrics) IncAllocationConflict(prefix string) {
	if m == nil {
		return
	}
	m.allocationConflictsTotal.WithLabelValues(normalizeLabel(prefix)).Inc()
}

func (m *Metrics) IncCaseAssigned(caseType string) {
	if m == nil {
		return
	}
	m.casesAssignedTotal.WithLabelValues(normalizeLabel(caseType)).Inc()
}

func (m *Metrics) AddNoticesExpired(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.noticesExpiredTotal.Add(float64(count))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
