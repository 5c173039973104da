package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/maraichr/conveyor/internal/api/handler"
	apimw "github.com/maraichr/conveyor/internal/api/middleware"
	"github.com/maraichr/conveyor/internal/auth"
	"github.com/maraichr/conveyor/internal/engine"
	"github.com/maraichr/conveyor/internal/store"
)

// RouterDeps holds optional dependencies for the router.
type RouterDeps struct {
	Producer    *engine.Producer
	Verifier    *auth.Verifier
	AuthEnabled bool
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps == nil {
		deps = &RouterDeps{}
	}

	authn := auth.DevModeMiddleware(logger)
	if deps.AuthEnabled && deps.Verifier != nil {
		authn = auth.RequireAuth(deps.Verifier, logger)
	}

	read := auth.RequireScope("conveyor:read")
	write := auth.RequireScope("conveyor:write")
	execute := auth.RequireScope("conveyor:execute")

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authn)

		pipelines := apihandler.NewPipelineHandler(logger, s)
		executions := apihandler.NewExecutionHandler(logger, s, deps.Producer)

		r.Route("/pipelines", func(r chi.Router) {
			r.With(read).Get("/", pipelines.List)
			r.With(write).Post("/", pipelines.Create)
			r.Route("/{slug}", func(r chi.Router) {
				r.With(read).Get("/", pipelines.Get)
				r.With(write).Put("/", pipelines.Update)
				r.With(write).Delete("/", pipelines.Delete)

				r.Route("/executions", func(r chi.Router) {
					r.With(read).Get("/", executions.List)
					r.With(execute).Post("/", executions.Trigger)
				})
			})
		})

		r.Route("/executions", func(r chi.Router) {
			r.With(read).Get("/{executionID}", executions.Get)
			r.With(read).Get("/{executionID}/stages/{refID}/deployment-details", executions.DeploymentDetails)
		})
	})

	return r
}
