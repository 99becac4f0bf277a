package users

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatherly/gatherly/internal/shared"
)

// Handler wires HTTP endpoints for user management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}/role", h.handleAssignRole)
	r.Post("/users/{id}/deactivate", h.handleDeactivate)
	r.Post("/users/{id}/activate", h.handleActivate)
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	IsActive bool   `json:"isActive"`
	Role     any    `json:"role"`
}

type roleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// toResponse mirrors the upstream payload duality: a loaded role serializes
// as an object, a bare name serializes as a string.
func toResponse(u User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		FullName: u.FullName,
		IsActive: u.IsActive,
	}
	if u.Role != nil {
		perms := make([]string, len(u.Role.Permissions))
		for i, p := range u.Role.Permissions {
			perms[i] = p.Name
		}
		resp.Role = roleResponse{ID: u.Role.ID, Name: u.Role.Name, Permissions: perms}
	} else if u.RoleName != "" {
		resp.Role = u.RoleName
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	users, pagination, err := h.service.ListUsers(r.Context(), shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	items := make([]userResponse, len(users))
	for i, u := range users {
		items[i] = toResponse(u)
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items, "pagination": pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(*user))
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	FullName string `json:"fullName"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   int64  `json:"roleId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	user, err := h.service.CreateUser(r.Context(), req.Email, req.Name, req.FullName, req.Password, req.RoleID)
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toResponse(*user))
}

type assignRoleRequest struct {
	RoleID int64 `json:"roleId" validate:"required"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.AssignRole(r.Context(), id, req.RoleID); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, false)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, true)
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if active {
		err = h.service.Activate(r.Context(), id)
	} else {
		err = h.service.Deactivate(r.Context(), id)
	}
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}
