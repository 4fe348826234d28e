package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trouvemamission-service/internal/metrics"
)

// MetricsMiddleware собирает метрики для всех HTTP запросов.
// Шаблон маршрута известен только после роутинга, поэтому метрики пишутся после next.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Обёртка для ResponseWriter для получения статус-кода
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := getEndpoint(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.IncRestRequestsTotal(endpoint, r.Method)
		metrics.ObserveRestResponseDuration(endpoint, r.Method, time.Since(start))
		metrics.IncRestResponsesStatusesTotal(endpoint, status)
		metrics.ObserveRestRequestSize(endpoint, r.Method, r.ContentLength)
	})
}

// getEndpoint нормализует путь для метрик, используя шаблон маршрута вместо конкретного пути.
// Это позволяет группировать метрики по эндпоинтам, а не по конкретным значениям параметров
func getEndpoint(r *http.Request) string {
	if r == nil {
		return "/"
	}
	// Пытаемся получить шаблон маршрута (например, "/api/projects/{id}") из контекста
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	// Если шаблон недоступен, используем реальный путь
	if path := r.URL.Path; path != "" {
		return path
	}
	return "/"
}
