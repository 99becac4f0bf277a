package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/events"
	"github.com/gatherly/gatherly/internal/observability"
	"github.com/gatherly/gatherly/internal/roles"
	"github.com/gatherly/gatherly/internal/shared"
	"github.com/gatherly/gatherly/internal/users"
	"github.com/gatherly/gatherly/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware
	Metrics        *observability.Metrics

	AuthHandler   *auth.Handler
	UsersHandler  *users.Handler
	RolesHandler  *roles.Handler
	EventsHandler *events.Handler
	JobsHandler   *jobs.Handler
}

// NewRouter constructs the chi.Router with Gatherly defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)

	if params.UsersHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.Authz.RequireAny(shared.PermUserView, shared.PermUserManageAll))
			params.UsersHandler.MountRoutes(r)
		})
	}
	if params.RolesHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.Authz.RequireAny(shared.PermRoleView, shared.PermRoleManageAll, shared.PermPermissionView))
			params.RolesHandler.MountRoutes(r)
		})
	}
	// Event routes carry no blanket permission guard: visibility and
	// management rights depend on the individual event, so the service
	// decides per record.
	if params.EventsHandler != nil {
		params.EventsHandler.MountRoutes(r)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
