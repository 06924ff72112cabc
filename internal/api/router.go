package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carepath/scheduling/internal/appointment"
	"github.com/carepath/scheduling/internal/schedule"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Schedules    *schedule.Service
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	JWTSecret    []byte
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware)

	// Unauthenticated surface
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Public doctor availability, consumed by the booking calendar.
	r.Get("/doctors/{id}/schedule", getScheduleHandler(cfg.Schedules))
	r.Get("/doctors/{id}/availability/days", availableDaysHandler(cfg.Schedules))
	r.Get("/doctors/{id}/availability/slots", daySlotsHandler(cfg.Schedules))
	r.Get("/doctors/{id}/appointments/booked", bookedSlotsHandler(cfg.Appointments))

	// Authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(Auth(cfg.JWTSecret))

		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(RolePatient))
			r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(RoleDoctor))
			r.Put("/doctors/me/schedule", updateScheduleHandler(cfg.Schedules))
			r.Post("/doctors/me/schedule/changes/{token}/apply", applyScheduleChangeHandler(cfg.Schedules))
		})
	})

	return r
}
