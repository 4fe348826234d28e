package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/assignments"
	authhandler "trouvemamission-service/internal/http/handler/auth"
	"trouvemamission-service/internal/http/handler/collaborators"
	"trouvemamission-service/internal/http/handler/common"
	"trouvemamission-service/internal/http/handler/dashboard"
	"trouvemamission-service/internal/http/handler/projects"
	"trouvemamission-service/internal/http/handler/users"
	"trouvemamission-service/internal/http/middleware"
	"trouvemamission-service/internal/http/swagger"
	"trouvemamission-service/internal/service"
)

// Handler агрегирует HTTP-эндпоинты.
type Handler struct {
	service     *service.Service
	auth        *service.Auth
	swaggerSpec []byte
}

func New(service *service.Service, auth *service.Auth, spec []byte) *Handler {
	return &Handler{service: service, auth: auth, swaggerSpec: spec}
}

// Router возвращает готовый chi.Router со всеми зарегистрированными маршрутами и middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	// Middleware применяются в порядке объявления
	r.Use(chimw.RequestID)              // Добавляет уникальный ID каждому запросу
	r.Use(chimw.RealIP)                 // Определяет реальный IP клиента
	r.Use(middleware.PanicMiddleware)   // Перехватывает паники
	r.Use(middleware.LoggerMiddleware)  // Логирует все запросы
	r.Use(middleware.MetricsMiddleware) // Собирает метрики Prometheus
	swagger.RegisterRoutes(r, h.swaggerSpec)

	// Health check эндпоинт для проверки доступности сервиса
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.HealthCheck(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics endpoint для сбора метрик
	r.Handle("/metrics", promhttp.Handler())

	authHandler := authhandler.New(h.auth)
	authHandler.RegisterPublic(r)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Authenticate(h.auth))
		authHandler.RegisterSession(api)
		h.registerReadRoutes(api)
		h.registerWriteRoutes(api)
		h.registerAdminRoutes(api)
	})

	return r
}

// registerReadRoutes чтение доступно любому вошедшему пользователю.
func (h *Handler) registerReadRoutes(r chi.Router) {
	r.Group(func(router chi.Router) {
		assignments.New(h.service).RegisterRead(router)
		collaborators.New(h.service).RegisterRead(router)
		projects.New(h.service).RegisterRead(router)
		dashboard.New(h.service).Register(router)
	})
}

func (h *Handler) registerWriteRoutes(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleManager))
		assignments.New(h.service).RegisterWrite(router)
		collaborators.New(h.service).RegisterWrite(router)
		projects.New(h.service).RegisterWrite(router)
	})
}

func (h *Handler) registerAdminRoutes(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(domain.RoleAdmin))
		users.New(h.auth).Register(router)
	})
}
