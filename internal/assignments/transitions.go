package assignments

import "github.com/assetdeskhq/assetdesk-backend/pkg/enums"

// Operation names one lifecycle action. Used for transition checks, metrics
// labels and audit rows.
type Operation string

const (
	OpCreate        Operation = "create"
	OpAccept        Operation = "accept"
	OpRefuse        Operation = "refuse"
	OpRequestReturn Operation = "request_return"
	OpApproveReturn Operation = "approve_return"
	OpRejectReturn  Operation = "reject_return"
	OpCancel        Operation = "cancel"
	OpRevert        Operation = "revert"
	OpDelete        Operation = "delete"
)

// allowedFrom is the transition table: the statuses each operation may start
// from. Revert is handled separately since it accepts any non-finalized state.
var allowedFrom = map[Operation][]enums.AssignmentStatus{
	OpAccept: {enums.AssignmentStatusPendingAcceptance},
	OpRefuse: {enums.AssignmentStatusPendingAcceptance},
	OpCancel: {enums.AssignmentStatusPendingAcceptance},
	OpRequestReturn: {
		enums.AssignmentStatusActive,
		enums.AssignmentStatusReturnRejected,
	},
	OpApproveReturn: {enums.AssignmentStatusReturnRequested},
	OpRejectReturn:  {enums.AssignmentStatusReturnRequested},
}

// CanTransition reports whether the operation is legal from the given status.
func CanTransition(op Operation, from enums.AssignmentStatus) bool {
	for _, status := range allowedFrom[op] {
		if status == from {
			return true
		}
	}
	return false
}
