package roles

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatherly/gatherly/internal/shared"
)

// Handler wires HTTP endpoints for role administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers role routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.handleList)
	r.Post("/roles", h.handleCreate)
	r.Get("/roles/{id}", h.handleGet)
	r.Put("/roles/{id}", h.handleUpdate)
	r.Delete("/roles/{id}", h.handleDelete)
	r.Get("/roles/{id}/permissions", h.handleRolePermissions)
	r.Put("/roles/{id}/permissions", h.handleSetPermissions)
	r.Get("/permissions", h.handleListPermissions)
}

type roleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

func toResponse(role Role) roleResponse {
	return roleResponse{ID: role.ID, Name: role.Name, DisplayName: role.DisplayName, Description: role.Description}
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	items := make([]roleResponse, len(roles))
	for i, role := range roles {
		items[i] = toResponse(role)
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(role))
}

type roleRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	role, err := h.service.CreateRole(r.Context(), req.Name, req.DisplayName, req.Description)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toResponse(role))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	role, err := h.service.UpdateRole(r.Context(), id, req.Name, req.DisplayName, req.Description)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(role))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	perms, err := h.service.RolePermissions(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	h.respondPermissions(w, perms)
}

type setPermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds" validate:"required"`
}

func (h *Handler) handleSetPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req setPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), id, req.PermissionIDs); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	h.respondPermissions(w, perms)
}

func (h *Handler) respondPermissions(w http.ResponseWriter, perms []Permission) {
	items := make([]permissionResponse, len(perms))
	for i, p := range perms {
		items[i] = permissionResponse{ID: p.ID, Name: p.Name, Description: p.Description}
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}
