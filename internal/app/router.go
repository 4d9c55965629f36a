package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bless15/nacos-admin/internal/auth"
	"github.com/bless15/nacos-admin/internal/interests"
	"github.com/bless15/nacos-admin/internal/members"
	"github.com/bless15/nacos-admin/internal/observability"
	"github.com/bless15/nacos-admin/internal/partners"
	"github.com/bless15/nacos-admin/internal/projects"
	"github.com/bless15/nacos-admin/internal/resources"
	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/users"
	"github.com/bless15/nacos-admin/internal/view"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Audit            shared.Recorder
	AuthHandler      *auth.Handler
	MembersHandler   *members.Handler
	ProjectsHandler  *projects.Handler
	ResourcesHandler *resources.Handler
	PartnersHandler  *partners.Handler
	InterestsHandler *interests.Handler
	UsersHandler     *users.Handler
	Dashboard        *Dashboard
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Audit:          params.Audit,
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

	// Landing page for unauthenticated visitors.
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.Identity() != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		data := view.TemplateData{
			Title:       "NACOS",
			CSRFToken:   csrfToken,
			Flash:       sess.TakeFlash(),
			CurrentPath: r.URL.Path,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", params.Dashboard.ServeHTTP)

	r.Route("/auth", params.AuthHandler.WithLoginLimiter(LoginRateLimiter(params.Config)).MountRoutes)
	r.Route("/members", params.MembersHandler.MountRoutes)
	r.Route("/projects", params.ProjectsHandler.MountRoutes)
	r.Route("/resources", params.ResourcesHandler.MountRoutes)
	r.Route("/partners", params.PartnersHandler.MountRoutes)
	r.Route("/interests", params.InterestsHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)

	// Public partnership enquiry form, no authentication required.
	r.Route("/partner-with-us", params.InterestsHandler.MountPublicRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
