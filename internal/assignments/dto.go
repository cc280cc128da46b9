package assignments

import (
	"time"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	"github.com/assetdeskhq/assetdesk-backend/pkg/types"
	"github.com/google/uuid"
)

// CreateInput carries everything needed to open an assignment.
type CreateInput struct {
	AssetID            uuid.UUID
	TargetType         enums.AssignmentTargetType
	StaffID            *int64
	ReceiverUserID     *uuid.UUID
	Location           *string
	Department         *string
	AssignedDate       time.Time
	ExpectedReturnDate *time.Time
	IssueCondition     types.ConditionSnapshot
	AccessoriesIssued  types.AccessoryList
	Notes              string
	ActorID            uuid.UUID
}

// AcceptInput carries the receiver's terms acceptance.
type AcceptInput struct {
	AssignmentID uuid.UUID
	CallerUserID uuid.UUID
	TermsVersion string
	Checklist    map[string]bool
}

// RefuseInput declines a pending assignment.
type RefuseInput struct {
	AssignmentID uuid.UUID
	CallerUserID uuid.UUID
	Reason       *string
}

// RequestReturnInput starts (or restarts) the return flow.
type RequestReturnInput struct {
	AssignmentID        uuid.UUID
	CallerUserID        uuid.UUID
	ReturnCondition     types.ConditionSnapshot
	AccessoriesReturned types.AccessoryList
}

// ApproveReturnInput finalizes a return.
type ApproveReturnInput struct {
	AssignmentID        uuid.UUID
	AdminID             uuid.UUID
	FinalCondition      types.ConditionSnapshot
	AccessoriesReturned types.AccessoryList
	Disposition         enums.ReturnDisposition
	Note                *string
}

// RejectReturnInput sends a return request back to the staff member.
type RejectReturnInput struct {
	AssignmentID uuid.UUID
	AdminID      uuid.UUID
	Reason       string
}

// CancelInput withdraws a pending assignment.
type CancelInput struct {
	AssignmentID uuid.UUID
	AdminID      uuid.UUID
	Reason       *string
}

// RevertInput force-undoes an assignment.
type RevertInput struct {
	AssignmentID uuid.UUID
	AdminID      uuid.UUID
	Reason       *string
}

// RevertResult reports the outcome of a revert. AlreadyFinalized is true when
// the assignment was already reverted or cancelled and nothing changed.
type RevertResult struct {
	Assignment       *models.Assignment `json:"assignment"`
	AlreadyFinalized bool               `json:"already_finalized"`
}

// ListParams filters and paginates the assignment list.
type ListParams struct {
	Status  *enums.AssignmentStatus
	AssetID *uuid.UUID
	StaffID *int64
	Limit   int
	Cursor  string
}

// ListResult wraps one page of assignments plus the next cursor.
type ListResult struct {
	Items  []models.Assignment `json:"items"`
	Cursor string              `json:"cursor"`
}

// Summary reports assignment counts per status.
type Summary struct {
	ByStatus map[enums.AssignmentStatus]int64 `json:"by_status"`
	Open     int64                            `json:"open"`
}
