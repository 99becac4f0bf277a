package events

import (
	"strconv"
	"time"

	"github.com/gatherly/gatherly/internal/authz"
)

// Event is the persisted event record.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int

	Visibility     authz.Visibility
	ApprovalStatus authz.ApprovalStatus
	EventStatus    authz.EventStatus
	PriorStatus    authz.EventStatus

	// CreatedBy holds whatever identity representation the creating client
	// sent; older writers stamped display names, newer ones stamp emails.
	CreatedBy       string
	OrganizerID     int64
	ApprovalRemarks string

	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authz maps the record to the decision engine's read-only view.
func (e Event) Authz() authz.Event {
	organizerID := ""
	if e.OrganizerID != 0 {
		organizerID = strconv.FormatInt(e.OrganizerID, 10)
	}
	return authz.Event{
		ID:              strconv.FormatInt(e.ID, 10),
		Visibility:      e.Visibility,
		ApprovalStatus:  e.ApprovalStatus,
		EventStatus:     e.EventStatus,
		PriorStatus:     e.PriorStatus,
		CreatedBy:       e.CreatedBy,
		OrganizerID:     organizerID,
		ApprovalRemarks: e.ApprovalRemarks,
	}
}

// applyAuthz copies the decision engine's transition result back onto the
// persisted record.
func (e *Event) applyAuthz(out authz.Event) {
	e.ApprovalStatus = out.ApprovalStatus
	e.EventStatus = out.EventStatus
	e.PriorStatus = out.PriorStatus
	e.ApprovalRemarks = out.ApprovalRemarks
}

// Attendee is one row of an event's invitation list.
type Attendee struct {
	EventID   int64
	Email     string
	Status    authz.InvitationStatus
	InvitedAt time.Time
}

func invitationsOf(attendees []Attendee) []authz.Invitation {
	invitations := make([]authz.Invitation, len(attendees))
	for i, a := range attendees {
		invitations[i] = authz.Invitation{Email: a.Email, Status: a.Status}
	}
	return invitations
}
