package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func principalWithRole(name string) *Principal {
	return &Principal{
		ID:       "7",
		Email:    "a@x.com",
		Name:     "Ada",
		FullName: "Ada Lovelace",
		Role:     ResolvedRole(RoleData{ID: "role-1", Name: name}),
	}
}

func TestCanViewSuperAdminSeesEverything(t *testing.T) {
	p := principalWithRole(RoleSuperAdmin)
	events := []Event{
		{Visibility: VisibilityPrivate, ApprovalStatus: ApprovalRejected},
		{Visibility: VisibilityPublic},
		{},
	}
	for _, e := range events {
		assert.True(t, CanView(p, e, nil))
		assert.True(t, CanManage(p, e))
	}
}

func TestCanViewAdminSeesAllManagesOwn(t *testing.T) {
	p := principalWithRole(RoleAdmin)
	foreign := Event{Visibility: VisibilityPrivate, CreatedBy: "someone-else"}
	assert.True(t, CanView(p, foreign, nil))
	assert.False(t, CanManage(p, foreign))
}

func TestCanViewAttendee(t *testing.T) {
	p := principalWithRole(RoleAttendee)

	assert.True(t, CanView(p, Event{Visibility: VisibilityPublic}, nil))
	assert.False(t, CanView(p, Event{Visibility: VisibilityPrivate}, nil))

	invited := []Invitation{{Email: "a@x.com", Status: InviteDeclined}}
	assert.True(t, CanView(p, Event{Visibility: VisibilityPrivate}, invited),
		"any invitation status counts, including declined")

	others := []Invitation{{Email: "b@x.com", Status: InviteAccepted}}
	assert.False(t, CanView(p, Event{Visibility: VisibilityPrivate}, others))

	assert.False(t, CanManage(p, Event{CreatedBy: "a@x.com"}),
		"attendees never manage, even their apparent own events")
}

func TestCanViewFailsClosedOnUnknownRoles(t *testing.T) {
	assert.False(t, CanView(nil, Event{Visibility: VisibilityPublic}, nil))
	assert.False(t, CanManage(nil, Event{}))

	unresolved := &Principal{ID: "7", Role: UnresolvedRole("Moderator")}
	assert.False(t, CanView(unresolved, Event{Visibility: VisibilityPublic}, nil))
	assert.False(t, CanManage(unresolved, Event{CreatedBy: "7"}))

	// An unresolved role still carries its name, and the policy matches on
	// names: a bare "Admin" string is how legacy payloads arrive.
	legacyAdmin := &Principal{ID: "7", Role: UnresolvedRole(RoleAdmin)}
	assert.True(t, CanView(legacyAdmin, Event{Visibility: VisibilityPrivate}, nil))
}

func TestCanManageOwnershipORChain(t *testing.T) {
	p := principalWithRole(RoleAdmin)

	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{"createdBy matches email", Event{CreatedBy: "a@x.com", OrganizerID: "999"}, true},
		{"createdBy matches id", Event{CreatedBy: "7"}, true},
		{"createdBy matches name", Event{CreatedBy: "Ada"}, true},
		{"createdBy matches full name", Event{CreatedBy: "Ada Lovelace"}, true},
		{"organizerId matches id", Event{CreatedBy: "someone-else", OrganizerID: "7"}, true},
		{"organizer fallback matches id", Event{CreatedBy: "someone-else", Organizer: "7"}, true},
		{"nothing matches", Event{CreatedBy: "someone-else", OrganizerID: "8"}, false},
		{"empty ownership fields", Event{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanManage(p, tc.event))
		})
	}
}

func TestOwnershipNeverMatchesEmptyAgainstEmpty(t *testing.T) {
	p := &Principal{Role: ResolvedRole(RoleData{Name: RoleAdmin})}
	assert.False(t, CanManage(p, Event{}), "missing data must fail closed")
}
