package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// manager owns every event in these scenarios via the createdBy email key.
func managerAndEvent(approval ApprovalStatus, status EventStatus) (*Principal, Event) {
	p := &Principal{
		ID:    "7",
		Email: "a@x.com",
		Role:  ResolvedRole(RoleData{ID: "role-1", Name: RoleAdmin}),
	}
	e := Event{
		CreatedBy:      "a@x.com",
		Visibility:     VisibilityPublic,
		ApprovalStatus: approval,
		EventStatus:    status,
	}
	return p, e
}

func TestComputeGatePendingUpcoming(t *testing.T) {
	p, e := managerAndEvent(ApprovalPending, StatusUpcoming)
	gate := ComputeGate(p, e, nil)
	assert.Equal(t, ActionGate{
		CanView:   true,
		CanManage: true,
		Edit:      true,
		Delete:    true,
		Approve:   true,
		Reject:    true,
	}, gate)
}

func TestComputeGateApprovedHold(t *testing.T) {
	p, e := managerAndEvent(ApprovalApproved, StatusHold)
	gate := ComputeGate(p, e, nil)
	assert.Equal(t, ActionGate{
		CanView:    true,
		CanManage:  true,
		Edit:       true,
		Delete:     true,
		Reactivate: true,
	}, gate)
}

func TestComputeGateApprovedActive(t *testing.T) {
	p, e := managerAndEvent(ApprovalApproved, StatusActive)
	gate := ComputeGate(p, e, nil)
	assert.Equal(t, ActionGate{
		CanView:   true,
		CanManage: true,
		Edit:      true, // approved events stay editable while running
		Delete:    true,
		Hold:      true,
		Invite:    true,
	}, gate)
}

func TestComputeGateRejectedCompleted(t *testing.T) {
	p, e := managerAndEvent(ApprovalRejected, StatusCompleted)
	gate := ComputeGate(p, e, nil)
	assert.Equal(t, ActionGate{
		CanView:   true,
		CanManage: true,
		Delete:    true, // rejected events remain deletable
	}, gate)
}

func TestComputeGateNonManagerGetsNoActions(t *testing.T) {
	attendee := &Principal{
		ID:    "9",
		Email: "b@x.com",
		Role:  ResolvedRole(RoleData{ID: "role-3", Name: RoleAttendee}),
	}
	for _, approval := range []ApprovalStatus{ApprovalPending, ApprovalApproved, ApprovalRejected} {
		for _, status := range []EventStatus{StatusUpcoming, StatusActive, StatusHold, StatusInactive, StatusCompleted} {
			e := Event{Visibility: VisibilityPublic, ApprovalStatus: approval, EventStatus: status}
			gate := ComputeGate(attendee, e, nil)
			assert.Equal(t, ActionGate{CanView: true}, gate,
				"approval=%s status=%s", approval, status)
		}
	}
}

func TestComputeGateNilPrincipal(t *testing.T) {
	gate := ComputeGate(nil, Event{Visibility: VisibilityPublic, ApprovalStatus: ApprovalPending}, nil)
	assert.Equal(t, ActionGate{}, gate)
}

func TestComputeGateViewWithoutManage(t *testing.T) {
	admin := principalWithRole(RoleAdmin)
	foreign := Event{CreatedBy: "someone-else", ApprovalStatus: ApprovalPending, EventStatus: StatusUpcoming}
	gate := ComputeGate(admin, foreign, nil)
	assert.True(t, gate.CanView)
	assert.False(t, gate.CanManage)
	assert.False(t, gate.Approve)
}
