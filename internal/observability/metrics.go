package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hrm"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	authOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Authentication operations by outcome.",
	}, []string{"operation", "outcome"})

	mailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "deliveries_total",
		Help:      "Outbound mail deliveries by template and outcome.",
	}, []string{"template", "outcome"})

	tenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tenancy",
		Name:      "resolutions_total",
		Help:      "Tenant resolutions performed by the schema router.",
	}, []string{"outcome"})

	throttled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "throttled_total",
		Help:      "Requests rejected by a rate limit.",
	}, []string{"scope"})
)

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveAuth counts an auth operation. The outcome is "success" or the
// lowercased error code.
func ObserveAuth(operation string, err error) {
	authOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

func ObserveMail(template string, err error) {
	mailDeliveries.WithLabelValues(template, Outcome(err)).Inc()
}

func ObserveTenantResolution(outcome string) {
	tenantResolutions.WithLabelValues(outcome).Inc()
}

func ObserveThrottled(scope string) {
	throttled.WithLabelValues(scope).Inc()
}

func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return strings.ToLower(string(appErr.Code))
	}
	return "error"
}
