package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprove(t *testing.T) {
	out, err := Approve(Event{ApprovalStatus: ApprovalPending, EventStatus: StatusUpcoming})
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, out.ApprovalStatus)
	assert.Equal(t, StatusUpcoming, out.EventStatus, "approval never touches the operational axis")

	for _, from := range []ApprovalStatus{ApprovalApproved, ApprovalRejected, ""} {
		_, err := Approve(Event{ApprovalStatus: from})
		assert.ErrorIs(t, err, ErrIllegalTransition, "approve from %q", from)
	}
}

func TestReject(t *testing.T) {
	out, err := Reject(Event{ApprovalStatus: ApprovalPending}, "duplicate submission")
	require.NoError(t, err)
	assert.Equal(t, ApprovalRejected, out.ApprovalStatus)
	assert.Equal(t, "duplicate submission", out.ApprovalRemarks)

	// REJECTED is terminal: no transition leads back out.
	_, err = Approve(out)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	_, err = Reject(out, "again")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestHold(t *testing.T) {
	out, err := Hold(Event{ApprovalStatus: ApprovalApproved, EventStatus: StatusActive})
	require.NoError(t, err)
	assert.Equal(t, StatusHold, out.EventStatus)
	assert.Equal(t, StatusActive, out.PriorStatus)

	_, err = Hold(Event{ApprovalStatus: ApprovalPending, EventStatus: StatusUpcoming})
	assert.ErrorIs(t, err, ErrIllegalTransition, "hold requires approval")

	for _, from := range []EventStatus{StatusHold, StatusInactive} {
		_, err := Hold(Event{ApprovalStatus: ApprovalApproved, EventStatus: from})
		assert.ErrorIs(t, err, ErrIllegalTransition, "hold from %q", from)
	}
}

func TestReactivateRestoresPriorStatus(t *testing.T) {
	held, err := Hold(Event{ApprovalStatus: ApprovalApproved, EventStatus: StatusUpcoming})
	require.NoError(t, err)

	out, err := Reactivate(held)
	require.NoError(t, err)
	assert.Equal(t, StatusUpcoming, out.EventStatus)
	assert.Empty(t, out.PriorStatus)
}

func TestReactivateWithoutPriorStatus(t *testing.T) {
	_, err := Reactivate(Event{ApprovalStatus: ApprovalApproved, EventStatus: StatusInactive})
	assert.ErrorIs(t, err, ErrPriorStatusUnknown)
}

func TestReactivateFromRunningStates(t *testing.T) {
	for _, from := range []EventStatus{StatusUpcoming, StatusActive, StatusCompleted} {
		_, err := Reactivate(Event{EventStatus: from, PriorStatus: StatusActive})
		assert.ErrorIs(t, err, ErrIllegalTransition, "reactivate from %q", from)
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, ApprovalPending.Valid())
	assert.False(t, ApprovalStatus("DRAFT").Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, EventStatus("PAUSED").Valid())
}
