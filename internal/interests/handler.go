package interests

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

type interestForm struct {
	Organisation string
	ContactName  string
	ContactEmail string
	Message      string
}

// Handler manages interest request endpoints. The public submission form is
// mounted separately from the gated review screens.
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

// MountRoutes registers the gated review routes. Deciding a request is an
// admin-only mutation.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.AdminTier()...))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.RoleAdmin))
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
	})
}

// MountPublicRoutes registers the unauthenticated submission form.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.showPublicForm)
	r.Post("/", h.submit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list interests", slog.Any("error", err))
		http.Error(w, "Failed to load interest requests", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/interests_list.html", map[string]any{"Interests": list}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}
	interest, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/interests", "error", "Request not found")
		return
	}
	h.render(w, r, "pages/interest_detail.html", map[string]any{"Interest": interest}, http.StatusOK)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusApproved)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}
	actor := auth.CurrentIdentity(r.Context())
	if actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	var decideErr error
	if status == StatusApproved {
		_, decideErr = h.service.Approve(r.Context(), *actor, id)
	} else {
		_, decideErr = h.service.Reject(r.Context(), *actor, id)
	}
	target := "/interests/" + strconv.FormatInt(id, 10)
	switch {
	case errors.Is(decideErr, ErrAlreadyDecided):
		h.redirectWithFlash(w, r, target, "info", "Request was already decided")
	case errors.Is(decideErr, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/interests", "error", "Request not found")
	case decideErr != nil:
		h.logger.Error("decide interest", slog.Any("error", decideErr), slog.Int64("id", id))
		h.redirectWithFlash(w, r, "/interests", "error", "Could not record decision")
	default:
		h.redirectWithFlash(w, r, target, "success", "Request "+status)
	}
}

func (h *Handler) showPublicForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/interest_form.html", map[string]any{
		"Errors": formErrors{},
		"Form":   interestForm{},
	}, http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := interestForm{
		Organisation: r.PostFormValue("organisation"),
		ContactName:  r.PostFormValue("contact_name"),
		ContactEmail: r.PostFormValue("contact_email"),
		Message:      r.PostFormValue("message"),
	}
	_, err := h.service.Submit(r.Context(), Interest{
		Organisation: form.Organisation,
		ContactName:  form.ContactName,
		ContactEmail: form.ContactEmail,
		Message:      form.Message,
	})
	if err != nil {
		h.render(w, r, "pages/interest_form.html", map[string]any{
			"Errors": formErrors{"general": err.Error()},
			"Form":   form,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/partner-with-us", "success", "Thank you, your request has been received")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.TakeFlash()
	}
	viewData := view.TemplateData{
		Title:       "Partner interests",
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
