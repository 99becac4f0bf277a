package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	resolver       *authz.Resolver
	source         authz.PrincipalSource
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, resolver *authz.Resolver, source authz.PrincipalSource) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		resolver:       resolver,
		source:         source,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	UserID      int64    `json:"userId"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	CSRFToken   string   `json:"csrfToken,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		shared.RespondJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	resp, err := h.sessionInfo(r, user.ID)
	if err != nil {
		h.logger.Error("load principal after login", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	resp.CSRFToken = csrfToken
	shared.RespondJSON(w, http.StatusOK, resp)
}

// handleLogout destroys the session and clears the permission cache. The
// cache is scoped to the login session; a later login starts empty.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	h.resolver.ClearCache()
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		shared.RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	resp, err := h.sessionInfo(r, userID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) sessionInfo(r *http.Request, userID int64) (sessionResponse, error) {
	principal, err := h.source.Principal(r.Context(), userID)
	if err != nil {
		return sessionResponse{}, err
	}
	perms := h.resolver.PermissionsOf(principal)
	if perms == nil {
		perms = []string{}
	}
	return sessionResponse{
		UserID:      userID,
		Email:       principal.Email,
		Name:        principal.Name,
		Role:        principal.Role.Name(),
		Permissions: perms,
	}, nil
}
