package view_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bless15/nacos-admin/internal/shared"
	"github.com/bless15/nacos-admin/internal/view"
	_ "github.com/bless15/nacos-admin/testing"
)

func newEngine(t *testing.T) *view.Engine {
	t.Helper()
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return engine
}

func TestRenderLanding(t *testing.T) {
	engine := newEngine(t)

	res := httptest.NewRecorder()
	if err := engine.Render(res, "pages/landing.html", view.TemplateData{Title: "NACOS"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Body.String(), "NACOS Administration") {
		t.Fatalf("expected landing copy, got: %s", res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("expected html content type, got %q", got)
	}
}

func TestRenderDashboardShowsCounts(t *testing.T) {
	engine := newEngine(t)

	res := httptest.NewRecorder()
	err := engine.Render(res, "pages/dashboard.html", view.TemplateData{
		Title:    "Dashboard",
		Identity: &shared.Identity{ID: 1, Name: "Chair", Role: shared.RoleAdmin},
		Data: struct {
			Members          int
			PendingMembers   int
			Projects         int
			Resources        int
			Partners         int
			PendingInterests int
		}{Members: 42, PendingMembers: 3, Projects: 5, Resources: 7, Partners: 2, PendingInterests: 1},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Body.String(), "Members: 42 (3 pending)") {
		t.Fatalf("expected member counts, got: %s", res.Body.String())
	}
}

func TestRenderShowsFlash(t *testing.T) {
	engine := newEngine(t)

	res := httptest.NewRecorder()
	err := engine.Render(res, "pages/landing.html", view.TemplateData{
		Title: "NACOS",
		Flash: &shared.FlashMessage{Kind: "success", Message: "Signed out"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Body.String(), "Signed out") {
		t.Fatalf("expected flash message in output")
	}
}
