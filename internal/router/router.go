package router

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/i-christian/fileDrop/internal/files"
	"github.com/i-christian/fileDrop/internal/middlewares"
	"github.com/i-christian/fileDrop/internal/public"
)

type RoutesConfig struct {
	AllowedOrigins []string
	Rps            float64
	Burst          int
	LimiterEnabled bool
}

func RegisterRoutes(config *RoutesConfig, pH *public.PublicHandler, fH *files.FileHandler) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middlewares.Metrics)
	r.Use(middleware.CleanPath)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.RateLimit(config.Rps, config.Burst, config.LimiterEnabled))

	// CORS setup
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Checksum-Blake2b"},
		MaxAge:         300,
	}))

	r.Handle("/debug/vars", expvar.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthcheck", pH.HealthStatus)

		r.Route("/files", func(r chi.Router) {
			r.Post("/", fH.Upload)
			r.Get("/list", fH.List)
			r.Get("/download/*", fH.Download)
		})
	})

	return r
}
