package app

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/bless15/nacos-admin/internal/interests"
	"github.com/bless15/nacos-admin/internal/members"
	"github.com/bless15/nacos-admin/internal/partners"
	"github.com/bless15/nacos-admin/internal/projects"
	"github.com/bless15/nacos-admin/internal/resources"
	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/view"
)

// DashboardStats aggregates the headline counts shown on the home screen.
type DashboardStats struct {
	Members          int
	PendingMembers   int
	Projects         int
	Resources        int
	Partners         int
	PendingInterests int
}

// Dashboard renders the authenticated landing screen with counts gathered
// concurrently from each module.
type Dashboard struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	members   *members.Service
	projects  *projects.Service
	resources *resources.Service
	partners  *partners.Service
	interests *interests.Service
}

// NewDashboard constructs the dashboard handler.
func NewDashboard(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, m *members.Service, p *projects.Service, r *resources.Service, pa *partners.Service, i *interests.Service) *Dashboard {
	return &Dashboard{
		logger:    logger,
		templates: templates,
		csrf:      csrf,
		members:   m,
		projects:  p,
		resources: r,
		partners:  pa,
		interests: i,
	}
}

// Stats gathers all counts in parallel. A single failing count fails the
// whole gather so the dashboard never shows partially wrong numbers.
func (d *Dashboard) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, pending, err := d.members.Count(gctx)
		stats.Members = total
		stats.PendingMembers = pending
		return err
	})
	g.Go(func() error {
		n, err := d.projects.Count(gctx)
		stats.Projects = n
		return err
	})
	g.Go(func() error {
		n, err := d.resources.Count(gctx)
		stats.Resources = n
		return err
	})
	g.Go(func() error {
		n, err := d.partners.Count(gctx)
		stats.Partners = n
		return err
	})
	g.Go(func() error {
		n, err := d.interests.CountPending(gctx)
		stats.PendingInterests = n
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// ServeHTTP renders the dashboard for signed-in staff.
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	identity := sess.Identity()
	if identity == nil {
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
		return
	}

	stats, err := d.Stats(r.Context())
	if err != nil {
		d.logger.Error("gather dashboard stats", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	csrfToken, _ := d.csrf.EnsureToken(r.Context(), sess)
	data := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       sess.TakeFlash(),
		Identity:    identity,
		CurrentPath: r.URL.Path,
		Data:        stats,
	}
	if err := d.templates.Render(w, "pages/dashboard.html", data); err != nil {
		d.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
