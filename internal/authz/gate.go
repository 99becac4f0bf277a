package authz

// ActionGate is the full set of operations a principal may currently be
// offered for one event. It is computed whole from its inputs; callers must
// recompute after any mutation to the event or the principal's role rather
// than patching individual flags.
type ActionGate struct {
	CanView    bool `json:"canView"`
	CanManage  bool `json:"canManage"`
	Edit       bool `json:"edit"`
	Delete     bool `json:"delete"`
	Approve    bool `json:"approve"`
	Reject     bool `json:"reject"`
	Hold       bool `json:"hold"`
	Reactivate bool `json:"reactivate"`
	Invite     bool `json:"invite"`
}

// ComputeGate evaluates the action-gating table for one (principal, event)
// pair. Every action flag requires manage rights; the per-action conditions
// are deliberate ORs over both status axes, including the overlapping but
// distinct predicates for Edit and Delete.
func ComputeGate(p *Principal, e Event, invitations []Invitation) ActionGate {
	gate := ActionGate{
		CanView:   CanView(p, e, invitations),
		CanManage: CanManage(p, e),
	}
	if !gate.CanManage {
		return gate
	}

	approval := e.ApprovalStatus
	status := e.EventStatus

	gate.Edit = approval == ApprovalPending || approval == ApprovalApproved ||
		status == StatusInactive || status == StatusUpcoming
	gate.Delete = approval == ApprovalPending || approval == ApprovalRejected || approval == ApprovalApproved ||
		status == StatusInactive || status == StatusUpcoming || status == StatusHold
	gate.Approve = approval == ApprovalPending
	gate.Reject = approval == ApprovalPending
	gate.Hold = approval == ApprovalApproved && status != StatusInactive && status != StatusHold
	gate.Reactivate = status == StatusInactive || status == StatusHold
	gate.Invite = approval == ApprovalApproved && status != StatusInactive && status != StatusHold
	return gate
}
