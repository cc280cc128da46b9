package enums

import "fmt"

// AssignmentStatus tracks the lifecycle of an asset assignment.
type AssignmentStatus string

const (
	AssignmentStatusPendingAcceptance AssignmentStatus = "pending_acceptance"
	AssignmentStatusActive            AssignmentStatus = "active"
	AssignmentStatusRefused           AssignmentStatus = "refused"
	AssignmentStatusCancelled         AssignmentStatus = "cancelled"
	AssignmentStatusReturnRequested   AssignmentStatus = "return_requested"
	AssignmentStatusReturnApproved    AssignmentStatus = "return_approved"
	AssignmentStatusReturnRejected    AssignmentStatus = "return_rejected"
	AssignmentStatusReverted          AssignmentStatus = "reverted"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusPendingAcceptance,
	AssignmentStatusActive,
	AssignmentStatusRefused,
	AssignmentStatusCancelled,
	AssignmentStatusReturnRequested,
	AssignmentStatusReturnApproved,
	AssignmentStatusReturnRejected,
	AssignmentStatusReverted,
}

// OpenAssignmentStatuses lists the statuses that keep an asset booked. At most
// one assignment per asset may carry any of these at a time.
var OpenAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusPendingAcceptance,
	AssignmentStatusActive,
	AssignmentStatusReturnRequested,
	AssignmentStatusReturnRejected,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsOpen reports whether the status still books the referenced asset.
func (a AssignmentStatus) IsOpen() bool {
	for _, candidate := range OpenAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (a AssignmentStatus) IsTerminal() bool {
	switch a {
	case AssignmentStatusRefused, AssignmentStatusCancelled, AssignmentStatusReturnApproved, AssignmentStatusReverted:
		return true
	default:
		return false
	}
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
