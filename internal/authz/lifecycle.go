package authz

import "errors"

var (
	// ErrIllegalTransition indicates the event is not in a state the
	// requested transition accepts.
	ErrIllegalTransition = errors.New("authz: illegal lifecycle transition")
	// ErrPriorStatusUnknown indicates a reactivation was requested for an
	// event whose pre-hold operational status was never recorded. The
	// engine refuses to guess a replacement status.
	ErrPriorStatusUnknown = errors.New("authz: prior operational status unknown")
)

// The two status axes are independent: approval tracks moderation
// (PENDING -> APPROVED | REJECTED, REJECTED terminal) while the operational
// axis tracks runtime stage. No combination is structurally forbidden; the
// gate table restricts which actions are offered in each combination.

// Approve moves a pending event to APPROVED. Approving an already approved
// or rejected event is illegal.
func Approve(e Event) (Event, error) {
	if e.ApprovalStatus != ApprovalPending {
		return Event{}, ErrIllegalTransition
	}
	e.ApprovalStatus = ApprovalApproved
	return e, nil
}

// Reject moves a pending event to REJECTED, recording the moderator's
// remarks. REJECTED is terminal.
func Reject(e Event, remarks string) (Event, error) {
	if e.ApprovalStatus != ApprovalPending {
		return Event{}, ErrIllegalTransition
	}
	e.ApprovalStatus = ApprovalRejected
	e.ApprovalRemarks = remarks
	return e, nil
}

// Hold pauses an approved event, remembering the current operational status
// so a later reactivation can restore it. Events already on hold or inactive
// cannot be held again.
func Hold(e Event) (Event, error) {
	if e.ApprovalStatus != ApprovalApproved {
		return Event{}, ErrIllegalTransition
	}
	if e.EventStatus == StatusInactive || e.EventStatus == StatusHold {
		return Event{}, ErrIllegalTransition
	}
	e.PriorStatus = e.EventStatus
	e.EventStatus = StatusHold
	return e, nil
}

// Reactivate returns a held or inactive event to its recorded pre-hold
// status. Events that entered INACTIVE without a recorded prior status fail
// with ErrPriorStatusUnknown rather than landing in an invented state.
func Reactivate(e Event) (Event, error) {
	if e.EventStatus != StatusInactive && e.EventStatus != StatusHold {
		return Event{}, ErrIllegalTransition
	}
	if e.PriorStatus == "" {
		return Event{}, ErrPriorStatusUnknown
	}
	e.EventStatus = e.PriorStatus
	e.PriorStatus = ""
	return e, nil
}
