package authz

// Visibility controls who may discover an event.
type Visibility string

const (
	// VisibilityPublic marks an event discoverable by any attendee.
	VisibilityPublic Visibility = "PUBLIC"
	// VisibilityPrivate restricts an event to invited attendees.
	VisibilityPrivate Visibility = "PRIVATE"
)

// ApprovalStatus tracks moderation of an event.
type ApprovalStatus string

const (
	// ApprovalPending is the initial moderation state.
	ApprovalPending ApprovalStatus = "PENDING"
	// ApprovalApproved marks an event cleared by a moderator.
	ApprovalApproved ApprovalStatus = "APPROVED"
	// ApprovalRejected is terminal; a rejected event never re-enters moderation.
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Valid reports whether the value is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// EventStatus tracks the operational lifecycle of an event.
type EventStatus string

const (
	// StatusUpcoming means the event has not started yet.
	StatusUpcoming EventStatus = "UPCOMING"
	// StatusActive means the event is currently running.
	StatusActive EventStatus = "ACTIVE"
	// StatusHold means an organizer paused the event.
	StatusHold EventStatus = "HOLD"
	// StatusInactive means the event was taken out of circulation.
	StatusInactive EventStatus = "INACTIVE"
	// StatusCompleted is reached only by time-based progression, never by a
	// manual transition.
	StatusCompleted EventStatus = "COMPLETED"
)

// Valid reports whether the value is a known operational status.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusHold, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

// InvitationStatus tracks an invitee's response.
type InvitationStatus string

const (
	// InvitePending means the invitee has not responded.
	InvitePending InvitationStatus = "PENDING"
	// InviteAccepted means the invitee accepted.
	InviteAccepted InvitationStatus = "ACCEPTED"
	// InviteDeclined means the invitee declined.
	InviteDeclined InvitationStatus = "DECLINED"
)

// RoleData is a fully loaded role with its permission grants.
type RoleData struct {
	ID          string
	Name        string
	Permissions []string
}

type roleKind int

const (
	roleUnresolved roleKind = iota
	roleResolved
)

// Role is the principal's role assignment. Upstream payloads carry it in two
// shapes: a bare role name with no permission data (legacy writers) or a full
// role object. The two shapes are kept as an explicit variant so callers can
// never mistake one for the other; the zero value is an unresolved empty name.
type Role struct {
	kind roleKind
	name string
	data RoleData
}

// UnresolvedRole wraps a bare role name that arrived without permission data.
func UnresolvedRole(name string) Role {
	return Role{kind: roleUnresolved, name: name}
}

// ResolvedRole wraps a fully loaded role.
func ResolvedRole(data RoleData) Role {
	return Role{kind: roleResolved, name: data.Name, data: data}
}

// Name returns the role name regardless of shape.
func (r Role) Name() string {
	return r.name
}

// Resolved reports whether permission data is available.
func (r Role) Resolved() bool {
	return r.kind == roleResolved
}

// Permissions returns the granted permission names. The second return is
// false for unresolved roles, which grant nothing.
func (r Role) Permissions() ([]string, bool) {
	if r.kind != roleResolved {
		return nil, false
	}
	return r.data.Permissions, true
}

// identity distinguishes cache entries for the same principal across role
// reassignments and across the resolved/unresolved shapes.
func (r Role) identity() string {
	if r.kind == roleResolved {
		return "r:" + r.data.ID + ":" + r.name
	}
	return "u:" + r.name
}

// Principal is the authenticated actor whose rights are being evaluated.
// Identity fields are strings because upstream writers stamp ids, emails and
// display names interchangeably.
type Principal struct {
	ID       string
	Email    string
	Name     string
	FullName string
	Role     Role
}

// Event carries the fields the decision engine reads. It is a read-only view
// of whatever the fetch layer produced; the engine never mutates its inputs.
type Event struct {
	ID             string
	Visibility     Visibility
	ApprovalStatus ApprovalStatus
	EventStatus    EventStatus
	// PriorStatus is the operational status recorded when the event was put
	// on hold, used to restore it on reactivation. Empty when unknown.
	PriorStatus EventStatus
	// CreatedBy may hold an id, an email or a display name depending on
	// which writer stamped it. The ownership check tolerates all three.
	CreatedBy       string
	Organizer       string
	OrganizerID     string
	ApprovalRemarks string
}

// Invitation is one entry of an event's attendee list.
type Invitation struct {
	Email  string
	Status InvitationStatus
}
