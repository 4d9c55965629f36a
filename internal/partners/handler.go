package partners

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bless15/nacos-admin/internal/auth"
	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/view"
)

type formErrors map[string]string

// Handler manages partner endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	gate      auth.Gate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, gate: gate}
}

// MountRoutes registers partner routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.AdminTier()...))
		r.Get("/", h.list)
		r.Get("/new", h.showForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list partners", slog.Any("error", err))
		http.Error(w, "Failed to load partners", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/partners_list.html", map[string]any{"Partners": list}, http.StatusOK)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/partner_form.html", map[string]any{
		"Errors":  formErrors{},
		"Partner": nil,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	partner := partnerFromForm(r)
	if _, err := h.service.Create(r.Context(), partner); err != nil {
		h.render(w, r, "pages/partner_form.html", map[string]any{
			"Errors":  formErrors{"general": err.Error()},
			"Partner": nil,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/partners", "success", "Partner added")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid partner ID", http.StatusBadRequest)
		return
	}
	partner, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/partners", "error", "Partner not found")
		return
	}
	h.render(w, r, "pages/partner_form.html", map[string]any{
		"Errors":  formErrors{},
		"Partner": partner,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid partner ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	partner := partnerFromForm(r)
	partner.ID = id
	if _, err := h.service.Update(r.Context(), partner); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.redirectWithFlash(w, r, "/partners", "error", "Partner not found")
			return
		}
		h.render(w, r, "pages/partner_form.html", map[string]any{
			"Errors":  formErrors{"general": err.Error()},
			"Partner": partner,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/partners", "success", "Partner updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid partner ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/partners", "error", "Partner not found")
		return
	}
	h.redirectWithFlash(w, r, "/partners", "success", "Partner removed")
}

func partnerFromForm(r *http.Request) Partner {
	return Partner{
		Name:         r.PostFormValue("name"),
		Website:      r.PostFormValue("website"),
		ContactEmail: r.PostFormValue("contact_email"),
		Blurb:        r.PostFormValue("blurb"),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.TakeFlash()
	}
	viewData := view.TemplateData{
		Title:       "Partners",
		CSRFToken:   csrfToken,
		Flash:       flash,
		Identity:    sess.Identity(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
