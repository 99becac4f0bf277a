package events

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/shared"
)

const timeLayout = "2006-01-02 15:04:05"

// Handler wires HTTP endpoints for event management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	source    authz.PrincipalSource
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, source authz.PrincipalSource) *Handler {
	return &Handler{logger: logger, service: service, source: source, validator: validator.New()}
}

// MountRoutes registers event routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/events", h.handleList)
	r.Post("/events", h.handleCreate)
	r.Get("/events/{id}", h.handleGet)
	r.Put("/events/{id}", h.handleUpdate)
	r.Delete("/events/{id}", h.handleDelete)
	r.Get("/events/{id}/gate", h.handleGate)
	r.Get("/events/{id}/attendees", h.handleAttendees)
	r.Get("/events/{id}/moderation", h.handleModeration)
	r.Post("/events/{id}/approve", h.handleApprove)
	r.Post("/events/{id}/reject", h.handleReject)
	r.Post("/events/{id}/hold", h.handleHold)
	r.Post("/events/{id}/reactivate", h.handleReactivate)
	r.Post("/events/{id}/invite", h.handleInvite)
}

type eventResponse struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Location        string           `json:"location"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Capacity        int              `json:"capacity"`
	Visibility      string           `json:"visibility"`
	ApprovalStatus  string           `json:"approvalStatus"`
	EventStatus     string           `json:"eventStatus"`
	CreatedBy       string           `json:"createdBy"`
	OrganizerID     int64            `json:"organizerId,omitempty"`
	ApprovalRemarks string           `json:"approvalRemarks,omitempty"`
	Gate            authz.ActionGate `json:"gate"`
}

func toResponse(e Event, gate authz.ActionGate) eventResponse {
	return eventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartTime:       e.StartTime.Format(timeLayout),
		EndTime:         e.EndTime.Format(timeLayout),
		Capacity:        e.Capacity,
		Visibility:      string(e.Visibility),
		ApprovalStatus:  string(e.ApprovalStatus),
		EventStatus:     string(e.EventStatus),
		CreatedBy:       e.CreatedBy,
		OrganizerID:     e.OrganizerID,
		ApprovalRemarks: e.ApprovalRemarks,
		Gate:            gate,
	}
}

// currentPrincipal resolves the caller from the session. A missing or broken
// session yields a nil principal, which the decision engine treats as holding
// no rights at all.
func (h *Handler) currentPrincipal(r *http.Request) *authz.Principal {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	principal, err := h.source.Principal(r.Context(), userID)
	if err != nil {
		h.logger.Warn("load principal", slog.Any("error", err))
		return nil
	}
	return principal
}

func eventID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	actor := h.currentPrincipal(r)
	views, pagination, err := h.service.List(r.Context(), actor, shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	items := make([]eventResponse, len(views))
	for i, v := range views {
		items[i] = toResponse(v.Event, v.Gate)
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items, "pagination": pagination})
}

type eventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Visibility  string `json:"visibility" validate:"required,oneof=PUBLIC PRIVATE"`
}

func (h *Handler) decodeEventRequest(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return CreateInput{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return CreateInput{}, false
	}
	start, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid startTime"})
		return CreateInput{}, false
	}
	end, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid endTime"})
		return CreateInput{}, false
	}
	return CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   start,
		EndTime:     end,
		Capacity:    req.Capacity,
		Visibility:  authz.Visibility(req.Visibility),
	}, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeEventRequest(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), h.currentPrincipal(r), in)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	gate, _ := h.service.Gate(r.Context(), h.currentPrincipal(r), created.ID)
	shared.RespondJSON(w, http.StatusCreated, toResponse(created, gate))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	view, err := h.service.Get(r.Context(), h.currentPrincipal(r), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(view.Event, view.Gate))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	in, ok := h.decodeEventRequest(w, r)
	if !ok {
		return
	}
	actor := h.currentPrincipal(r)
	updated, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	gate, _ := h.service.Gate(r.Context(), actor, id)
	shared.RespondJSON(w, http.StatusOK, toResponse(updated, gate))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(r.Context(), h.currentPrincipal(r), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleGate(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	gate, err := h.service.Gate(r.Context(), h.currentPrincipal(r), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, gate)
}

func (h *Handler) handleAttendees(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	attendees, err := h.service.Attendees(r.Context(), h.currentPrincipal(r), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	type attendeeResponse struct {
		Email            string `json:"email"`
		InvitationStatus string `json:"invitationStatus"`
	}
	items := make([]attendeeResponse, len(attendees))
	for i, a := range attendees {
		items[i] = attendeeResponse{Email: a.Email, InvitationStatus: string(a.Status)}
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	logs, err := h.service.Moderation(r.Context(), h.currentPrincipal(r), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	type moderationResponse struct {
		Ref     string `json:"ref"`
		ActorID int64  `json:"actorId"`
		Action  string `json:"action"`
		Note    string `json:"note,omitempty"`
		At      string `json:"at"`
	}
	items := make([]moderationResponse, len(logs))
	for i, l := range logs {
		items[i] = moderationResponse{
			Ref:     l.Ref.String(),
			ActorID: l.ActorID,
			Action:  string(l.Action),
			Note:    l.Note,
			At:      l.At.Format(timeLayout),
		}
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, func(actor *authz.Principal, id int64) (Event, error) {
		return h.service.Approve(r.Context(), actor, id)
	})
}

type rejectRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	h.lifecycle(w, r, func(actor *authz.Principal, id int64) (Event, error) {
		return h.service.Reject(r.Context(), actor, id, req.Remarks)
	})
}

func (h *Handler) handleHold(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, func(actor *authz.Principal, id int64) (Event, error) {
		return h.service.Hold(r.Context(), actor, id)
	})
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, func(actor *authz.Principal, id int64) (Event, error) {
		return h.service.Reactivate(r.Context(), actor, id)
	})
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(*authz.Principal, int64) (Event, error)) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	actor := h.currentPrincipal(r)
	updated, err := op(actor, id)
	if err != nil {
		if errors.Is(err, authz.ErrIllegalTransition) || errors.Is(err, authz.ErrPriorStatusUnknown) {
			shared.RespondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		shared.RespondError(w, err)
		return
	}
	gate, _ := h.service.Gate(r.Context(), actor, id)
	shared.RespondJSON(w, http.StatusOK, toResponse(updated, gate))
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.Invite(r.Context(), h.currentPrincipal(r), id, req.Email); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}
