package authz

// Role names recognized by the access policy.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleAttendee   = "Attendee"
)

// ownershipPairs declares every (event value, principal value) comparison
// that counts as ownership. Events created through different paths stamp
// CreatedBy with an id, an email or a display name, so all representations
// are compared; any single match is sufficient and there is no precedence.
func ownershipPairs(e Event, p *Principal) [][2]string {
	return [][2]string{
		{e.CreatedBy, p.FullName},
		{e.CreatedBy, p.Name},
		{e.CreatedBy, p.ID},
		{e.CreatedBy, p.Email},
		{organizerIDOf(e), p.ID},
	}
}

// organizerIDOf returns the best available organizer identifier.
func organizerIDOf(e Event) string {
	if e.OrganizerID != "" {
		return e.OrganizerID
	}
	return e.Organizer
}

func ownsEvent(p *Principal, e Event) bool {
	for _, pair := range ownershipPairs(e, p) {
		if pair[0] != "" && pair[0] == pair[1] {
			return true
		}
	}
	return false
}

// CanView decides whether the principal may see the event at all.
// SuperAdmins and Admins see everything; Attendees see public events and
// private events they were invited to, whatever the invitation status.
// Unknown or unresolved roles see nothing.
func CanView(p *Principal, e Event, invitations []Invitation) bool {
	if p == nil {
		return false
	}
	switch p.Role.Name() {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleAttendee:
		if e.Visibility == VisibilityPublic {
			return true
		}
		for _, inv := range invitations {
			if inv.Email != "" && inv.Email == p.Email {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CanManage decides whether the principal may run lifecycle actions on the
// event. SuperAdmins manage everything; Admins manage only events they own;
// everyone else manages nothing. Viewing never implies managing and managing
// is never derived from CanView.
func CanManage(p *Principal, e Event) bool {
	if p == nil {
		return false
	}
	switch p.Role.Name() {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return ownsEvent(p, e)
	default:
		return false
	}
}
