package users

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

// Handler manages back-office account endpoints. Everything here is
// admin-only.
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

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.RoleAdmin))
		r.Get("/", h.list)
		r.Get("/new", h.showForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/role", h.changeRole)
		r.Post("/{id}/toggle", h.toggleActive)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		http.Error(w, "Failed to load accounts", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users_list.html", map[string]any{"Users": list}, http.StatusOK)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/user_form.html", map[string]any{
		"Errors": formErrors{},
		"User":   nil,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	user := User{
		Email: r.PostFormValue("email"),
		Name:  r.PostFormValue("name"),
		Role:  shared.Role(r.PostFormValue("role")),
	}
	if _, err := h.service.Create(r.Context(), user, r.PostFormValue("password")); err != nil {
		h.render(w, r, "pages/user_form.html", map[string]any{
			"Errors": formErrorFor(err),
			"User":   nil,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "Account created")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/users", "error", "Account not found")
		return
	}
	h.render(w, r, "pages/user_form.html", map[string]any{
		"Errors": formErrors{},
		"User":   user,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	user := User{
		ID:    id,
		Email: r.PostFormValue("email"),
		Name:  r.PostFormValue("name"),
	}
	if _, err := h.service.Update(r.Context(), user, r.PostFormValue("password")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.redirectWithFlash(w, r, "/users", "error", "Account not found")
			return
		}
		h.render(w, r, "pages/user_form.html", map[string]any{
			"Errors": formErrorFor(err),
			"User":   user,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "Account updated")
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	actor := auth.CurrentIdentity(r.Context())
	if actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	role, err := shared.ParseRole(r.PostFormValue("role"))
	if err != nil {
		h.redirectWithFlash(w, r, "/users", "error", "Unknown role")
		return
	}
	_, err = h.service.ChangeRole(r.Context(), *actor, id, role)
	switch {
	case errors.Is(err, shared.ErrSelfDemotion):
		h.redirectWithFlash(w, r, "/users", "error", "You cannot remove your own admin role")
	case errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/users", "error", "Account not found")
	case err != nil:
		h.logger.Error("change role", slog.Any("error", err), slog.Int64("id", id))
		h.redirectWithFlash(w, r, "/users", "error", "Could not change role")
	default:
		h.redirectWithFlash(w, r, "/users", "success", "Role updated")
	}
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}
	actor := auth.CurrentIdentity(r.Context())
	if actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/users", "error", "Account not found")
		return
	}
	_, err = h.service.SetActive(r.Context(), *actor, id, !user.IsActive)
	switch {
	case errors.Is(err, shared.ErrSelfDemotion):
		h.redirectWithFlash(w, r, "/users", "error", "You cannot deactivate your own account")
	case err != nil:
		h.redirectWithFlash(w, r, "/users", "error", "Could not update account")
	default:
		h.redirectWithFlash(w, r, "/users", "success", "Account updated")
	}
}

func formErrorFor(err error) formErrors {
	if errors.Is(err, shared.ErrDuplicate) {
		return formErrors{"email": "An account with that email already exists"}
	}
	return formErrors{"general": err.Error()}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.TakeFlash()
	}
	viewData := view.TemplateData{
		Title:       "Accounts",
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
