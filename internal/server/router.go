// Package server wires the HTTP routes of the task service.
package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/auth"
	"taskhub-backend/internal/logging"
	"taskhub-backend/internal/metrics"
	"taskhub-backend/internal/response"
	"taskhub-backend/internal/suggest"
	"taskhub-backend/internal/tasks"
)

type Deps struct {
	DB          *sql.DB
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Tasks       *tasks.Store
	Suggest     *suggest.Service
	Events      *analytics.Recorder
	JWTSecret   []byte
	CORSOrigins []string
}

// New builds the router. Task routes require a bearer token only when a JWT
// secret is configured.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "db unavailable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authed := len(d.JWTSecret) > 0
	mw := auth.New(d.JWTSecret)

	if authed {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.RegisterHandler(d.DB, d.JWTSecret, d.Logger))
			r.Post("/login", auth.LoginHandler(d.DB, d.JWTSecret, d.Logger))
			r.Post("/logout", auth.LogoutHandler())
			r.Get("/me", mw.Wrap(auth.MeHandler(d.DB)))
			r.Delete("/account", mw.Wrap(auth.DeleteAccountHandler(d.DB, d.Logger)))
		})
	}

	taskHandler := tasks.NewHandler(d.Tasks, d.Events, d.Logger)
	suggestHandler := suggest.NewHandler(d.Suggest, d.Events, d.Logger)

	r.Route("/tasks", func(r chi.Router) {
		if authed {
			r.Use(mw.Handler)
		}
		suggestHandler.Routes(r)
		taskHandler.Routes(r)
	})

	r.Group(func(r chi.Router) {
		if authed {
			r.Use(mw.Handler)
		}
		r.Post("/events/suggestions", analytics.SuggestionFeedbackHandler(d.Events))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
