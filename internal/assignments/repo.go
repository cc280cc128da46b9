package assignments

import (
	"context"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	"github.com/assetdeskhq/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	FindLatestOpenForAssetForUpdate(ctx context.Context, assetID uuid.UUID) (*models.Assignment, error)
	CountOpenForAsset(ctx context.Context, assetID uuid.UUID) (int64, error)
	Updates(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params listParams) ([]models.Assignment, *pagination.Cursor, error)
	CountByStatus(ctx context.Context) (map[enums.AssignmentStatus]int64, error)
}

type listParams struct {
	Status  *enums.AssignmentStatus
	AssetID *uuid.UUID
	StaffID *int64
	Limit   int
	Cursor  *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Preload("Staff").
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	query := db.ForUpdate(r.db.WithContext(ctx))
	if err := query.Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindLatestOpenForAssetForUpdate locks and returns the most recent open
// assignment for the asset, or nil when none exists. Recency is decided by
// assigned date first, creation time second.
func (r *repository) FindLatestOpenForAssetForUpdate(ctx context.Context, assetID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	query := db.ForUpdate(r.db.WithContext(ctx))
	err := query.
		Where("asset_id = ? AND status IN ?", assetID, enums.OpenAssignmentStatuses).
		Order("assigned_date DESC, created_at DESC").
		First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) CountOpenForAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("asset_id = ? AND status IN ?", assetID, enums.OpenAssignmentStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) Updates(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Assignment{}).Error
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.Assignment, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Assignment{}).Preload("Asset").Preload("Staff")
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.AssetID != nil {
		query = query.Where("asset_id = ?", *params.AssetID)
	}
	if params.StaffID != nil {
		query = query.Where("staff_id = ?", *params.StaffID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Assignment
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.AssignmentStatus]int64, error) {
	type statusCount struct {
		Status enums.AssignmentStatus
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	result := make(map[enums.AssignmentStatus]int64, len(counts))
	for _, row := range counts {
		result[row.Status] = row.Count
	}
	return result, nil
}

// OpenCounter adapts the repository for collaborators that only need the
// open-assignment count inside their own transaction.
type OpenCounter struct {
	repo Repository
}

// NewOpenCounter wraps the repository for cross-package use.
func NewOpenCounter(repo Repository) *OpenCounter {
	return &OpenCounter{repo: repo}
}

// CountOpenForAsset counts open assignments on the supplied transaction.
func (c *OpenCounter) CountOpenForAsset(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (int64, error) {
	return c.repo.WithTx(tx).CountOpenForAsset(ctx, assetID)
}
