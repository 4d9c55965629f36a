package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bless15/nacos-admin/internal/shared"
	_ "github.com/bless15/nacos-admin/testing"
)

func newSessionManager(t *testing.T, ttl time.Duration) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", ttl, false), mr
}

func commitSession(t *testing.T, sm *shared.SessionManager, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := sm.Commit(context.Background(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res
}

func loadSession(t *testing.T, sm *shared.SessionManager, id string) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != "" {
		req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: id})
	}
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess
}

func TestFlashReadOnce(t *testing.T) {
	sm, _ := newSessionManager(t, time.Hour)

	sess := loadSession(t, sm, "")
	sess.SetFlash(shared.FlashMessage{Kind: "success", Message: "Saved"})
	commitSession(t, sm, sess)

	// Next request sees the flash exactly once.
	loaded := loadSession(t, sm, sess.ID)
	flash := loaded.TakeFlash()
	if flash == nil || flash.Message != "Saved" {
		t.Fatalf("expected stored flash, got %+v", flash)
	}
	if again := loaded.TakeFlash(); again != nil {
		t.Fatalf("expected flash to be consumed, got %+v", again)
	}
	commitSession(t, sm, loaded)

	// A reload after the consuming commit must not repeat it.
	reloaded := loadSession(t, sm, sess.ID)
	if flash := reloaded.TakeFlash(); flash != nil {
		t.Fatalf("flash survived its read, got %+v", flash)
	}
}

func TestSetFlashReplacesUnread(t *testing.T) {
	sm, _ := newSessionManager(t, time.Hour)

	sess := loadSession(t, sm, "")
	sess.SetFlash(shared.FlashMessage{Kind: "error", Message: "first"})
	sess.SetFlash(shared.FlashMessage{Kind: "success", Message: "second"})

	flash := sess.TakeFlash()
	if flash == nil || flash.Message != "second" {
		t.Fatalf("expected latest flash to win, got %+v", flash)
	}
}

func TestRegenerateReplacesIdentifier(t *testing.T) {
	sm, mr := newSessionManager(t, time.Hour)

	sess := loadSession(t, sm, "")
	sess.BindIdentity(shared.Identity{ID: 7, Name: "Ada", Role: shared.RoleAdmin})
	commitSession(t, sm, sess)
	oldID := sess.ID

	sm.Regenerate(sess)
	if sess.ID == oldID {
		t.Fatalf("expected a fresh session identifier")
	}
	commitSession(t, sm, sess)

	if mr.Exists("session:" + oldID) {
		t.Fatalf("expected old session payload to be deleted")
	}
	loaded := loadSession(t, sm, sess.ID)
	identity := loaded.Identity()
	if identity == nil || identity.ID != 7 {
		t.Fatalf("expected identity to survive regeneration, got %+v", identity)
	}
}

func TestExpiredSessionLoadsAnonymous(t *testing.T) {
	ttl := time.Minute
	sm, mr := newSessionManager(t, ttl)

	sess := loadSession(t, sm, "")
	sess.BindIdentity(shared.Identity{ID: 3, Name: "Grace", Role: shared.RoleExecutive})
	commitSession(t, sm, sess)

	mr.FastForward(ttl + time.Second)

	loaded := loadSession(t, sm, sess.ID)
	if loaded.Identity() != nil {
		t.Fatalf("expected expired session to load as anonymous")
	}
}

func TestDestroyClearsStoreAndCookie(t *testing.T) {
	sm, mr := newSessionManager(t, time.Hour)

	sess := loadSession(t, sm, "")
	sess.Set("k", "v")
	commitSession(t, sm, sess)

	sm.Destroy(sess)
	res := commitSession(t, sm, sess)

	if mr.Exists("session:" + sess.ID) {
		t.Fatalf("expected session payload removed")
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}

func TestInvalidRoleTreatedAsAnonymous(t *testing.T) {
	sm, _ := newSessionManager(t, time.Hour)

	sess := loadSession(t, sm, "")
	sess.BindIdentity(shared.Identity{ID: 5, Name: "Eve", Role: shared.Role("superuser")})
	if sess.Identity() != nil {
		t.Fatalf("expected identity with unknown role to read as absent")
	}
}
