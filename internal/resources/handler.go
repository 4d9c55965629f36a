package resources

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bless15/nacos-admin/internal/auth"
	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/view"
)

type formErrors map[string]string

// Handler manages resource endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	gate      auth.Gate
	maxMemory int64
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, gate auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, gate: gate, maxMemory: 8 << 20}
}

// MountRoutes registers resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(shared.AdminTier()...))
		r.Get("/", h.list)
		r.Get("/new", h.showForm)
		r.Post("/", h.create)
		r.Get("/{id}/download", h.download)
		r.Post("/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list resources", slog.Any("error", err))
		http.Error(w, "Failed to load resources", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/resources_list.html", map[string]any{"Resources": list}, http.StatusOK)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/resource_form.html", map[string]any{"Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	actor := auth.CurrentIdentity(r.Context())
	if actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	var header *multipart.FileHeader
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		header = files[0]
	}
	if header == nil {
		h.render(w, r, "pages/resource_form.html", map[string]any{
			"Errors": formErrors{"file": "Please choose a file"},
		}, http.StatusBadRequest)
		return
	}

	res := Resource{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		UploadedBy:  actor.ID,
	}
	created, err := h.service.Create(r.Context(), res, header)
	if err != nil {
		h.render(w, r, "pages/resource_form.html", map[string]any{
			"Errors": uploadErrorFor(err),
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/resources", "success", "Resource uploaded: "+created.Title)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}
	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/resources", "error", "Resource not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.OriginalName+`"`)
	http.ServeFile(w, r, h.service.FilePath(res))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/resources", "error", "Resource not found")
		return
	}
	h.redirectWithFlash(w, r, "/resources", "success", "Resource deleted")
}

func uploadErrorFor(err error) formErrors {
	switch {
	case errors.Is(err, shared.ErrUploadTooLarge):
		return formErrors{"file": "File is too large"}
	case errors.Is(err, shared.ErrUploadExtension):
		return formErrors{"file": "File type not allowed"}
	default:
		return formErrors{"general": err.Error()}
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
		Title:       "Resources",
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
