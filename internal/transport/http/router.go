package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"statusreg/internal/platform/health"
	"statusreg/internal/platform/metrics"
	"statusreg/internal/platform/middleware"
	"statusreg/internal/statuslist/handler"
	authmw "statusreg/pkg/platform/middleware/auth"
	"statusreg/pkg/platform/middleware/metadata"
	"statusreg/pkg/platform/middleware/requesttime"
)

// Dependencies are the collaborators the router mounts. Metrics and
// MetricsHandler are optional.
type Dependencies struct {
	Logger         *slog.Logger
	StatusLists    *handler.Handler
	Health         *health.Handler
	Validator      authmw.JWTValidator
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
}

// NewRouter wires public endpoints. Ops routes are unauthenticated; every
// status list route requires a bearer token naming the owner.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	deps.Health.Register(r)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.RequestTimeout > 0 {
			r.Use(middleware.Timeout(deps.RequestTimeout))
		}
		r.Use(middleware.ContentTypeJSON)
		r.Use(authmw.RequireAuth(deps.Validator, deps.Logger))
		deps.StatusLists.Register(r)
	})

	return r
}
