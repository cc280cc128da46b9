package activity

import (
	"context"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry describes one audit event to append.
type Entry struct {
	AssignmentID *uuid.UUID
	AssetID      *uuid.UUID
	ActorID      *uuid.UUID
	Action       string
	Detail       types.ConditionSnapshot
}

// Recorder appends audit rows. Record runs on the supplied transaction so the
// audit trail commits or rolls back with the change it describes.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.ActivityLog, error)
}

type recorder struct {
	db *gorm.DB
}

// NewRecorder builds an activity recorder bound to the provided DB.
func NewRecorder(db *gorm.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	row := models.ActivityLog{
		AssignmentID: entry.AssignmentID,
		AssetID:      entry.AssetID,
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		Detail:       entry.Detail,
	}
	return conn.WithContext(ctx).Create(&row).Error
}

func (r *recorder) ListForAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.ActivityLog, error) {
	var rows []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
