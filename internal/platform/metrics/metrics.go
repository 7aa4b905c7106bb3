package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the client's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_client",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests sent to backend services.",
		},
		[]string{"service", "method", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinema_client",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests sent to backend services.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"service", "method"},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_client",
			Subsystem: "store",
			Name:      "fetch_failures_total",
			Help:      "Resource fetches that ended with a stored error.",
		},
		[]string{"resource"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_client",
			Subsystem: "store",
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema_client",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of gateway requests handled.",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(
		upstreamRequests,
		upstreamDuration,
		fetchFailures,
		reservations,
		gatewayRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordUpstream records one backend round trip. status is 0 when the request
// never produced a response.
func RecordUpstream(service, method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	method = strings.ToUpper(method)
	upstreamRequests.WithLabelValues(service, method, label).Inc()
	upstreamDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordFetchFailure(resource string) {
	fetchFailures.WithLabelValues(resource).Inc()
}

func RecordReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

// InstrumentHandler wraps the gateway with request counting. route resolves
// the low-cardinality route pattern once the router has matched.
func InstrumentHandler(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := route(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		gatewayRequests.WithLabelValues(strings.ToUpper(r.Method), pattern, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
