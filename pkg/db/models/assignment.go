package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	"github.com/assetdeskhq/assetdesk-backend/pkg/types"
)

// Assignment records one hand-out of an asset to a staff member, location or
// department, together with every lifecycle timestamp and reason it picks up
// along the way. Lifecycle fields are append-only audit facts: once set they
// are never cleared.
type Assignment struct {
	ID             uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	AssetID        uuid.UUID                  `gorm:"column:asset_id;type:uuid;not null;index"`
	TargetType     enums.AssignmentTargetType `gorm:"column:target_type;type:assignment_target_type;not null"`
	StaffID        *int64                     `gorm:"column:staff_id;index"`
	ReceiverUserID *uuid.UUID                 `gorm:"column:receiver_user_id;type:uuid;index"`
	Location       *string                    `gorm:"type:text"`
	Department     *string                    `gorm:"type:text"`
	Status         enums.AssignmentStatus     `gorm:"type:assignment_status;not null;index"`

	AssignedDate       time.Time  `gorm:"column:assigned_date;type:date;not null"`
	ExpectedReturnDate *time.Time `gorm:"column:expected_return_date;type:date"`
	CreatedBy          uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	Notes              string     `gorm:"type:text;not null"`

	IssueCondition    types.ConditionSnapshot `gorm:"column:issue_condition;type:jsonb"`
	AccessoriesIssued types.AccessoryList     `gorm:"column:accessories_issued;type:jsonb"`

	AcceptedBy      *uuid.UUID `gorm:"column:accepted_by;type:uuid"`
	AcceptedAt      *time.Time `gorm:"column:accepted_at"`
	TermsVersion    *string    `gorm:"column:terms_version;type:text"`
	TermsAccepted   bool       `gorm:"column:terms_accepted;not null;default:false"`
	TermsAcceptedAt *time.Time `gorm:"column:terms_accepted_at"`

	RefusedAt     *time.Time `gorm:"column:refused_at"`
	RefusalReason *string    `gorm:"column:refusal_reason;type:text"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text"`

	ReturnRequestedAt   *time.Time              `gorm:"column:return_requested_at"`
	ReturnRequestedBy   *uuid.UUID              `gorm:"column:return_requested_by;type:uuid"`
	ReturnCondition     types.ConditionSnapshot `gorm:"column:return_condition;type:jsonb"`
	AccessoriesReturned types.AccessoryList     `gorm:"column:accessories_returned;type:jsonb"`

	ReturnApprovedAt  *time.Time               `gorm:"column:return_approved_at"`
	ReturnApprovedBy  *uuid.UUID               `gorm:"column:return_approved_by;type:uuid"`
	ReturnDisposition *enums.ReturnDisposition `gorm:"column:return_disposition;type:return_disposition"`
	ReturnedDate      *time.Time               `gorm:"column:returned_date;type:date"`

	ReturnRejectedAt      *time.Time `gorm:"column:return_rejected_at"`
	ReturnRejectionReason *string    `gorm:"column:return_rejection_reason;type:text"`

	RevertedAt   *time.Time `gorm:"column:reverted_at"`
	RevertedBy   *uuid.UUID `gorm:"column:reverted_by;type:uuid"`
	RevertReason *string    `gorm:"column:revert_reason;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Asset *Asset `gorm:"foreignKey:AssetID"`
	Staff *Staff `gorm:"foreignKey:StaffID"`
}

func (a *Assignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = enums.AssignmentStatusPendingAcceptance
	}
	return nil
}

// IsOpen reports whether this assignment still books its asset.
func (a *Assignment) IsOpen() bool {
	return a.Status.IsOpen()
}
