package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bless15/nacos-admin/internal/app"
	"github.com/bless15/nacos-admin/internal/shared"
	_ "github.com/bless15/nacos-admin/testing"
)

type stubAudit struct {
	entries []shared.AuditEntry
}

func (s *stubAudit) Record(ctx context.Context, entry shared.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func newStackRouter(t *testing.T) (chi.Router, *shared.SessionManager, *stubAudit) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessionManager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	audit := &stubAudit{}

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Audit:          audit,
	}) {
		r.Use(mw)
	}

	r.Get("/form", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, _ := csrfManager.EnsureToken(r.Context(), sess)
		_, _ = w.Write([]byte(token))
	})
	r.Post("/submit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r, sessionManager, audit
}

func TestStackIssuesSessionCookie(t *testing.T) {
	router, sessionManager, _ := newStackRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/form", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionManager.CookieName() || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}
}

func TestStackRejectsPostWithoutToken(t *testing.T) {
	router, _, audit := newStackRouter(t)

	form := url.Values{}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "csrf.reject" {
		t.Fatalf("expected csrf rejection audited, got %+v", audit.entries)
	}
}

func TestStackAcceptsPostWithSessionToken(t *testing.T) {
	router, sessionManager, audit := newStackRouter(t)

	getRes := httptest.NewRecorder()
	router.ServeHTTP(getRes, httptest.NewRequest(http.MethodGet, "/form", nil))
	token := getRes.Body.String()
	cookies := getRes.Result().Cookies()
	if token == "" || len(cookies) == 0 {
		t.Fatalf("expected token and cookie from priming request")
	}

	form := url.Values{}
	form.Set(shared.CSRFFormField, token)
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: cookies[0].Value})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.Code)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("expected no audit entries for a valid token, got %+v", audit.entries)
	}
}
