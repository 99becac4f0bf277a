package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gatherly/gatherly/internal/shared"
)

// PrincipalSource loads the authenticated principal for a user ID. The users
// module implements it; the indirection keeps this package free of storage
// concerns.
type PrincipalSource interface {
	Principal(ctx context.Context, userID int64) (*Principal, error)
}

// Middleware wires permission guards for HTTP handlers. Every failure path
// answers 403: an unauthenticated caller, a failed principal load and a
// missing permission are indistinguishable to the client.
type Middleware struct {
	Resolver *Resolver
	Source   PrincipalSource
	Logger   *slog.Logger
}

// RequireAny ensures the current user holds at least one of the permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := dedupePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := m.currentPrincipal(r)
			if !ok || !m.Resolver.HasAny(principal, required...) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAll ensures the current user holds every listed permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := dedupePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := m.currentPrincipal(r)
			if !ok || !m.Resolver.HasAll(principal, required...) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentPrincipal(r *http.Request) (*Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return nil, false
	}
	principal, err := m.Source.Principal(r.Context(), userID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz load principal", slog.Any("error", err))
		}
		return nil, false
	}
	return principal, true
}

// dedupePermissions trims and deduplicates without case folding; permission
// names are opaque identifiers.
func dedupePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	out := make([]string, 0, len(unique))
	for p := range unique {
		out = append(out, p)
	}
	return out
}
