package auth

import (
	"log/slog"
	"net/http"

	"github.com/bless15/nacos-admin/internal/shared"
)

// LoginPath is where unauthorized requests are redirected.
const LoginPath = "/auth/login"

// Gate guards protected route groups. It must be the first middleware of
// every protected group: nothing behind it runs unless the check passes.
type Gate struct {
	Logger *slog.Logger
	Audit  shared.Recorder
}

// RequireRole allows the request through only when the session carries an
// identity whose role is in the allowed set. Everything else is redirected
// to the login page with an error flash.
func (g Gate) RequireRole(allowed ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			identity := sess.Identity()
			if identity == nil {
				if sess != nil {
					sess.SetFlash(shared.FlashMessage{Kind: "error", Message: "Please sign in to continue"})
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if !identity.Role.In(allowed...) {
				if g.Audit != nil {
					_ = g.Audit.Record(r.Context(), shared.AuditEntry{
						ActorID:  identity.ID,
						Action:   "authz.denied",
						Entity:   "route",
						EntityID: r.URL.Path,
						Outcome:  shared.AuditOutcomeDenied,
						Meta:     map[string]any{"role": string(identity.Role)},
					})
				}
				if g.Logger != nil {
					g.Logger.Warn("authorization denied", slog.String("path", r.URL.Path), slog.Int64("actor", identity.ID))
				}
				sess.SetFlash(shared.FlashMessage{Kind: "error", Message: "You do not have access to that page"})
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
