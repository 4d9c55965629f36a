package members

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

// Handler manages member endpoints.
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

// MountRoutes registers member routes. The gate runs before every handler.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.AdminTier()...))
		r.Get("/", h.list)
		r.Get("/new", h.showForm)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	filters := ListFilters{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: 20,
	}
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		http.Error(w, "Failed to load members", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/members_list.html", map[string]any{
		"Members":    list,
		"Search":     filters.Search,
		"Pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/members", "error", "Member not found")
		return
	}
	h.render(w, r, "pages/member_detail.html", map[string]any{"Member": member}, http.StatusOK)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/member_form.html", map[string]any{
		"Errors": formErrors{},
		"Member": nil,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	member := Member{
		FullName:     r.PostFormValue("full_name"),
		Email:        r.PostFormValue("email"),
		MatricNumber: r.PostFormValue("matric_number"),
		Level:        r.PostFormValue("level"),
	}
	created, err := h.service.Create(r.Context(), member)
	if err != nil {
		h.render(w, r, "pages/member_form.html", map[string]any{
			"Errors": formErrorFor(err),
			"Member": nil,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/members/"+strconv.FormatInt(created.ID, 10), "success", "Member registered")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/members", "error", "Member not found")
		return
	}
	h.render(w, r, "pages/member_form.html", map[string]any{
		"Errors": formErrors{},
		"Member": member,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	member := Member{
		ID:           id,
		FullName:     r.PostFormValue("full_name"),
		Email:        r.PostFormValue("email"),
		MatricNumber: r.PostFormValue("matric_number"),
		Level:        r.PostFormValue("level"),
	}
	updated, err := h.service.Update(r.Context(), member)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.redirectWithFlash(w, r, "/members", "error", "Member not found")
			return
		}
		h.render(w, r, "pages/member_form.html", map[string]any{
			"Errors": formErrorFor(err),
			"Member": member,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/members/"+strconv.FormatInt(updated.ID, 10), "success", "Member updated")
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	actor := auth.CurrentIdentity(r.Context())
	if actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	member, err := h.service.Approve(r.Context(), *actor, id)
	switch {
	case errors.Is(err, ErrAlreadyApproved):
		h.redirectWithFlash(w, r, "/members/"+strconv.FormatInt(id, 10), "info", "Member was already approved")
	case errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/members", "error", "Member not found")
	case err != nil:
		h.logger.Error("approve member", slog.Any("error", err), slog.Int64("id", id))
		h.redirectWithFlash(w, r, "/members", "error", "Could not approve member")
	default:
		h.redirectWithFlash(w, r, "/members/"+strconv.FormatInt(member.ID, 10), "success", "Member approved")
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/members", "error", "Member not found")
		return
	}
	h.redirectWithFlash(w, r, "/members", "success", "Member deleted")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.TakeFlash()
	}
	viewData := view.TemplateData{
		Title:       "Members",
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

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func formErrorFor(err error) formErrors {
	if errors.Is(err, shared.ErrDuplicate) {
		return formErrors{"email": "A member with that email or matric number already exists"}
	}
	return formErrors{"general": err.Error()}
}
