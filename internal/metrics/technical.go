package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trouvemamission"

var (
	// RestRequestsTotal общее количество HTTP запросов по шаблону маршрута
	RestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"route", "method"},
	)

	// RestResponseDuration гистограмма длительности HTTP запросов в секундах
	RestResponseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)

	// RestEndpointsResponsesTotal счётчик ответов по статусам
	RestEndpointsResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_responses_total",
			Help:      "Statuses for HTTP responses.",
		},
		[]string{"route", "status"},
	)

	// RestRequestSize размер тела запроса
	RestRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes.",
			Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"route", "method"},
	)
)

// IncRestRequestsTotal увеличивает счётчик HTTP запросов.
func IncRestRequestsTotal(route, method string) {
	RestRequestsTotal.WithLabelValues(route, method).Inc()
}

// ObserveRestResponseDuration записывает длительность HTTP запроса.
func ObserveRestResponseDuration(route, method string, served time.Duration) {
	RestResponseDuration.WithLabelValues(route, method).Observe(served.Seconds())
}

// IncRestResponsesStatusesTotal увеличивает счётчик ответов по статусу.
func IncRestResponsesStatusesTotal(route string, status int) {
	RestEndpointsResponsesTotal.WithLabelValues(route, http.StatusText(status)).Inc()
}

// ObserveRestRequestSize записывает размер тела запроса. Пустые тела не учитываются.
func ObserveRestRequestSize(route, method string, size int64) {
	if size <= 0 {
		return
	}
	RestRequestSize.WithLabelValues(route, method).Observe(float64(size))
}
