package events

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/shared"
)

// RepositoryPort defines data access methods for events.
type RepositoryPort interface {
	GetEvent(ctx context.Context, id int64) (Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]Event, int, error)
	CreateEvent(ctx context.Context, e Event) (Event, error)
	UpdateDetails(ctx context.Context, e Event) (Event, error)
	UpdateLifecycle(ctx context.Context, e Event) error
	DeleteEvent(ctx context.Context, id int64) error
	ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error)
	AddAttendee(ctx context.Context, eventID int64, email string) error
}

// RecorderPort persists and reads back moderation history.
type RecorderPort interface {
	Record(ctx context.Context, log ModerationLog) error
	List(ctx context.Context, eventID int64) ([]ModerationLog, error)
}

// Notifier enqueues outbound invitation notifications.
type Notifier interface {
	EnqueueInvite(ctx context.Context, email string, eventID int64, title string) error
}

// Service runs gate-checked event operations. Every lifecycle method loads
// fresh state, computes the caller's action gate and refuses with
// shared.ErrForbidden when the corresponding flag is off; the gate is the
// only path to a transition.
type Service struct {
	repo     RepositoryPort
	recorder RecorderPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recorder RecorderPort, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, notifier: notifier, logger: logger}
}

// EventView pairs an event with the caller's computed gate.
type EventView struct {
	Event     Event
	Gate      authz.ActionGate
	Attendees []Attendee
}

// CreateInput carries the writable event fields.
type CreateInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int
	Visibility  authz.Visibility
}

// Create inserts a new event owned by the actor, pending approval.
func (s *Service) Create(ctx context.Context, actor *authz.Principal, in CreateInput) (Event, error) {
	if actor == nil {
		return Event{}, shared.ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Event{}, errors.New("events: title required")
	}
	if in.Visibility != authz.VisibilityPublic && in.Visibility != authz.VisibilityPrivate {
		return Event{}, errors.New("events: invalid visibility")
	}
	organizerID, _ := strconv.ParseInt(actor.ID, 10, 64)
	e := Event{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Location:       strings.TrimSpace(in.Location),
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Capacity:       in.Capacity,
		Visibility:     in.Visibility,
		ApprovalStatus: authz.ApprovalPending,
		EventStatus:    authz.StatusUpcoming,
		CreatedBy:      actor.Email,
		OrganizerID:    organizerID,
	}
	return s.repo.CreateEvent(ctx, e)
}

// Get returns the event together with the caller's gate. Callers without
// view rights get a not-found answer rather than confirmation the event
// exists.
func (s *Service) Get(ctx context.Context, actor *authz.Principal, id int64) (EventView, error) {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return EventView{}, err
	}
	if !view.Gate.CanView {
		return EventView{}, shared.ErrNotFound
	}
	return view, nil
}

// List returns the page of events the caller may view, each with its gate.
func (s *Service) List(ctx context.Context, actor *authz.Principal, page shared.Pagination) ([]EventView, shared.Pagination, error) {
	events, total, err := s.repo.ListEvents(ctx, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		attendees, err := s.repo.ListAttendees(ctx, e.ID)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		gate := authz.ComputeGate(actor, e.Authz(), invitationsOf(attendees))
		if !gate.CanView {
			continue
		}
		views = append(views, EventView{Event: e, Gate: gate, Attendees: attendees})
	}
	return views, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// UpdateInput carries the editable event fields.
type UpdateInput = CreateInput

// Update rewrites event details, gated on Edit.
func (s *Service) Update(ctx context.Context, actor *authz.Principal, id int64, in UpdateInput) (Event, error) {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return Event{}, err
	}
	if !view.Gate.Edit {
		return Event{}, shared.ErrForbidden
	}
	e := view.Event
	e.Title = strings.TrimSpace(in.Title)
	e.Description = strings.TrimSpace(in.Description)
	e.Location = strings.TrimSpace(in.Location)
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.Capacity = in.Capacity
	if in.Visibility != "" {
		e.Visibility = in.Visibility
	}
	return s.repo.UpdateDetails(ctx, e)
}

// Delete soft-deletes the event, gated on Delete.
func (s *Service) Delete(ctx context.Context, actor *authz.Principal, id int64) error {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !view.Gate.Delete {
		return shared.ErrForbidden
	}
	return s.repo.DeleteEvent(ctx, id)
}

// Approve clears a pending event, gated on Approve.
func (s *Service) Approve(ctx context.Context, actor *authz.Principal, id int64) (Event, error) {
	return s.transition(ctx, actor, id, ModerationApprove, "",
		func(gate authz.ActionGate) bool { return gate.Approve },
		func(e authz.Event) (authz.Event, error) { return authz.Approve(e) })
}

// Reject refuses a pending event, recording the moderator's remarks. Gated
// on Reject.
func (s *Service) Reject(ctx context.Context, actor *authz.Principal, id int64, remarks string) (Event, error) {
	return s.transition(ctx, actor, id, ModerationReject, remarks,
		func(gate authz.ActionGate) bool { return gate.Reject },
		func(e authz.Event) (authz.Event, error) { return authz.Reject(e, remarks) })
}

// Hold pauses a running event, gated on Hold.
func (s *Service) Hold(ctx context.Context, actor *authz.Principal, id int64) (Event, error) {
	return s.transition(ctx, actor, id, ModerationHold, "",
		func(gate authz.ActionGate) bool { return gate.Hold },
		func(e authz.Event) (authz.Event, error) { return authz.Hold(e) })
}

// Reactivate restores a held event to its pre-hold status, gated on
// Reactivate.
func (s *Service) Reactivate(ctx context.Context, actor *authz.Principal, id int64) (Event, error) {
	return s.transition(ctx, actor, id, ModerationReactivate, "",
		func(gate authz.ActionGate) bool { return gate.Reactivate },
		func(e authz.Event) (authz.Event, error) { return authz.Reactivate(e) })
}

// Invite adds a pending invitation and enqueues the notification email.
// Gated on Invite.
func (s *Service) Invite(ctx context.Context, actor *authz.Principal, id int64, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("events: invitee email required")
	}
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !view.Gate.Invite {
		return shared.ErrForbidden
	}
	if err := s.repo.AddAttendee(ctx, id, email); err != nil {
		return err
	}
	s.record(ctx, actor, id, ModerationInvite, email)
	if s.notifier != nil {
		if err := s.notifier.EnqueueInvite(ctx, email, id, view.Event.Title); err != nil {
			s.logger.Warn("enqueue invite", slog.Any("error", err))
		}
	}
	return nil
}

// Attendees lists the invitation roster, gated on view rights.
func (s *Service) Attendees(ctx context.Context, actor *authz.Principal, id int64) ([]Attendee, error) {
	view, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return view.Attendees, nil
}

// Moderation returns the event's moderation history, oldest first. The trail
// names moderators and their remarks, so it is gated on manage rights, not
// mere visibility.
func (s *Service) Moderation(ctx context.Context, actor *authz.Principal, id int64) ([]ModerationLog, error) {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !view.Gate.CanView {
		return nil, shared.ErrNotFound
	}
	if !view.Gate.CanManage {
		return nil, shared.ErrForbidden
	}
	return s.recorder.List(ctx, id)
}

// Gate computes the caller's current gate for the event without acting on it.
func (s *Service) Gate(ctx context.Context, actor *authz.Principal, id int64) (authz.ActionGate, error) {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return authz.ActionGate{}, err
	}
	return view.Gate, nil
}

func (s *Service) load(ctx context.Context, actor *authz.Principal, id int64) (EventView, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return EventView{}, err
	}
	attendees, err := s.repo.ListAttendees(ctx, id)
	if err != nil {
		return EventView{}, err
	}
	gate := authz.ComputeGate(actor, e.Authz(), invitationsOf(attendees))
	return EventView{Event: e, Gate: gate, Attendees: attendees}, nil
}

func (s *Service) transition(ctx context.Context, actor *authz.Principal, id int64, action ModerationAction, note string,
	allowed func(authz.ActionGate) bool, apply func(authz.Event) (authz.Event, error)) (Event, error) {
	view, err := s.load(ctx, actor, id)
	if err != nil {
		return Event{}, err
	}
	if !allowed(view.Gate) {
		return Event{}, shared.ErrForbidden
	}
	out, err := apply(view.Event.Authz())
	if err != nil {
		return Event{}, err
	}
	e := view.Event
	e.applyAuthz(out)
	if err := s.repo.UpdateLifecycle(ctx, e); err != nil {
		return Event{}, err
	}
	s.record(ctx, actor, id, action, note)
	return e, nil
}

// record writes moderation history; failures are logged, never surfaced, so
// history gaps cannot roll back an already persisted transition.
func (s *Service) record(ctx context.Context, actor *authz.Principal, eventID int64, action ModerationAction, note string) {
	if s.recorder == nil {
		return
	}
	actorID, _ := strconv.ParseInt(actor.ID, 10, 64)
	if err := s.recorder.Record(ctx, ModerationLog{
		EventID: eventID,
		ActorID: actorID,
		Action:  action,
		Note:    note,
	}); err != nil && s.logger != nil {
		s.logger.Warn("record moderation", slog.Any("error", err))
	}
}
