package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetdeskhq/assetdesk-backend/pkg/types"
)

// ActivityLog is an append-only audit row written in the same transaction as
// the lifecycle change it records.
type ActivityLog struct {
	ID           int64                   `gorm:"primaryKey;autoIncrement"`
	AssignmentID *uuid.UUID              `gorm:"column:assignment_id;type:uuid;index"`
	AssetID      *uuid.UUID              `gorm:"column:asset_id;type:uuid;index"`
	ActorID      *uuid.UUID              `gorm:"column:actor_id;type:uuid"`
	Action       string                  `gorm:"type:text;not null"`
	Detail       types.ConditionSnapshot `gorm:"type:jsonb"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
}
