package assignments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		op   Operation
		from enums.AssignmentStatus
		want bool
	}{
		{"accept pending", OpAccept, enums.AssignmentStatusPendingAcceptance, true},
		{"accept active", OpAccept, enums.AssignmentStatusActive, false},
		{"refuse pending", OpRefuse, enums.AssignmentStatusPendingAcceptance, true},
		{"refuse active", OpRefuse, enums.AssignmentStatusActive, false},
		{"cancel pending", OpCancel, enums.AssignmentStatusPendingAcceptance, true},
		{"cancel active", OpCancel, enums.AssignmentStatusActive, false},
		{"request return active", OpRequestReturn, enums.AssignmentStatusActive, true},
		{"request return after rejection", OpRequestReturn, enums.AssignmentStatusReturnRejected, true},
		{"request return pending", OpRequestReturn, enums.AssignmentStatusPendingAcceptance, false},
		{"request return approved", OpRequestReturn, enums.AssignmentStatusReturnApproved, false},
		{"approve requested", OpApproveReturn, enums.AssignmentStatusReturnRequested, true},
		{"approve active", OpApproveReturn, enums.AssignmentStatusActive, false},
		{"reject requested", OpRejectReturn, enums.AssignmentStatusReturnRequested, true},
		{"reject rejected", OpRejectReturn, enums.AssignmentStatusReturnRejected, false},
		{"create has no source state", OpCreate, enums.AssignmentStatusActive, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.op, tc.from))
		})
	}
}

func TestTerminalStatusesAcceptNothing(t *testing.T) {
	terminal := []enums.AssignmentStatus{
		enums.AssignmentStatusRefused,
		enums.AssignmentStatusCancelled,
		enums.AssignmentStatusReturnApproved,
		enums.AssignmentStatusReverted,
	}
	ops := []Operation{OpAccept, OpRefuse, OpCancel, OpRequestReturn, OpApproveReturn, OpRejectReturn}
	for _, status := range terminal {
		for _, op := range ops {
			assert.False(t, CanTransition(op, status), "%s from %s", op, status)
		}
	}
}
