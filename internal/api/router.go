package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/announcements"
	"github.com/sungwon/ion-notify/internal/auth"
	"github.com/sungwon/ion-notify/internal/directory"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Directory  directory.Directory
	Dispatcher *announcements.Dispatcher
	JWT        *auth.JWTService
	Readiness  []ReadinessCheck
	Log        zerolog.Logger
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(d.Log))
	r.Use(RecoverMiddleware(d.Log))
	r.Use(MetricsMiddleware)

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(d.Readiness...))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.JWTAuth(d.JWT))

		r.Post("/announcements/{id}/posted", AnnouncementPostedHandler(d.Directory, d.Dispatcher))
		r.Post("/announcement-requests/{id}/teacher-approval", TeacherApprovalHandler(d.Directory, d.Dispatcher))
		r.Post("/announcement-requests/{id}/admin-approval", AdminApprovalHandler(d.Directory, d.Dispatcher))
	})

	return r
}
