package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/shared"
	_ "github.com/gatherly/gatherly/testing"
)

type stubRepo struct {
	user            *auth.User
	sessionsDeleted []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.sessionsDeleted = append(s.sessionsDeleted, id)
	return nil
}

type stubSource struct{}

func (stubSource) Principal(ctx context.Context, userID int64) (*authz.Principal, error) {
	return &authz.Principal{
		ID:    "1",
		Email: "user@test.local",
		Name:  "Test User",
		Role:  authz.ResolvedRole(authz.RoleData{ID: "1", Name: authz.RoleAdmin, Permissions: []string{"event.manage.own"}}),
	}, nil
}

type authFixture struct {
	router http.Handler
	repo   *stubRepo
}

// commitWriter flushes the session to the store and sets the cookie before
// the first byte of the response body, mirroring the app middleware.
type commitWriter struct {
	http.ResponseWriter
	commit        func(http.ResponseWriter)
	headerWritten bool
}

func (w *commitWriter) WriteHeader(status int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commit(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// newFixture wires the handler behind the same session middleware shape the
// application uses, so requests see a committed session cookie.
func newFixture(t *testing.T, repo *stubRepo) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	cache := authz.NewPermissionCache()
	resolver := authz.NewResolver(cache)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, csrfManager, resolver, stubSource{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			wrapped := &commitWriter{ResponseWriter: w, commit: func(dst http.ResponseWriter) {
				require.NoError(t, sessionManager.Commit(ctx, dst, req, sess))
			}}
			next.ServeHTTP(wrapped, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return &authFixture{router: r, repo: repo}
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginSuccess(t *testing.T) {
	fx := newFixture(t, &stubRepo{user: activeUser(t, "correctpass")})

	body := strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var payload struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
		CSRFToken   string   `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, authz.RoleAdmin, payload.Role)
	assert.Equal(t, []string{"event.manage.own"}, payload.Permissions)
	assert.NotEmpty(t, payload.CSRFToken)

	var sessionCookie *http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
}

func TestLoginInvalidCredentials(t *testing.T) {
	fx := newFixture(t, &stubRepo{user: activeUser(t, "correctpass")})

	body := strings.NewReader(`{"email":"user@test.local","password":"wrongpass1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "correctpass")
	user.IsActive = false
	fx := newFixture(t, &stubRepo{user: user})

	body := strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	fx := newFixture(t, &stubRepo{user: activeUser(t, "correctpass")})

	body := strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	loginRes := httptest.NewRecorder()
	fx.router.ServeHTTP(loginRes, loginReq)
	require.Equal(t, http.StatusOK, loginRes.Code)

	var sessionCookie *http.Cookie
	for _, c := range loginRes.Result().Cookies() {
		if c.Name == "test_session" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(sessionCookie)
	logoutRes := httptest.NewRecorder()
	fx.router.ServeHTTP(logoutRes, logoutReq)

	assert.Equal(t, http.StatusNoContent, logoutRes.Code)
	assert.Contains(t, fx.repo.sessionsDeleted, sessionCookie.Value)

	// The session cookie must be expired by the logout response.
	var cleared bool
	for _, c := range logoutRes.Result().Cookies() {
		if c.Name == "test_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

func TestMeRequiresSession(t *testing.T) {
	fx := newFixture(t, &stubRepo{user: activeUser(t, "correctpass")})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	fx.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
