package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
)

func seedAssignment(t *testing.T, conn *gorm.DB, assetID uuid.UUID, status enums.AssignmentStatus, assignedDate time.Time) *models.Assignment {
	t.Helper()

	staffID := int64(1)
	row := &models.Assignment{
		AssetID:      assetID,
		TargetType:   enums.AssignmentTargetStaff,
		StaffID:      &staffID,
		Status:       status,
		AssignedDate: assignedDate,
		CreatedBy:    uuid.New(),
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func TestFindLatestOpenForAssetOrdering(t *testing.T) {
	conn := setupAssignmentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	asset := newTestAsset(t, conn, enums.AssetTypeLaptop, enums.AssetStatusInStock)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusReverted, base.AddDate(0, 0, 5))
	older := seedAssignment(t, conn, asset.ID, enums.AssignmentStatusReturnApproved, base)
	newest := seedAssignment(t, conn, asset.ID, enums.AssignmentStatusActive, base.AddDate(0, 0, 3))
	_ = older

	latest, err := repo.FindLatestOpenForAssetForUpdate(ctx, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newest.ID, latest.ID)
}

func TestFindLatestOpenForAssetNilWhenNoneOpen(t *testing.T) {
	conn := setupAssignmentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	asset := newTestAsset(t, conn, enums.AssetTypeLaptop, enums.AssetStatusInStock)
	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusReverted, time.Now().UTC())

	latest, err := repo.FindLatestOpenForAssetForUpdate(ctx, asset.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCountOpenForAssetIncludesAllOpenStatuses(t *testing.T) {
	conn := setupAssignmentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	asset := newTestAsset(t, conn, enums.AssetTypeLaptop, enums.AssetStatusInStock)
	now := time.Now().UTC()
	for _, status := range enums.OpenAssignmentStatuses {
		seedAssignment(t, conn, asset.ID, status, now)
	}
	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusReturnApproved, now)

	count, err := repo.CountOpenForAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(enums.OpenAssignmentStatuses)), count)
}

func TestListFiltersByStatusAndAsset(t *testing.T) {
	conn := setupAssignmentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first := newTestAsset(t, conn, enums.AssetTypeLaptop, enums.AssetStatusInStock)
	second := newTestAsset(t, conn, enums.AssetTypePhone, enums.AssetStatusInStock)
	now := time.Now().UTC()

	seedAssignment(t, conn, first.ID, enums.AssignmentStatusActive, now)
	seedAssignment(t, conn, first.ID, enums.AssignmentStatusReverted, now)
	seedAssignment(t, conn, second.ID, enums.AssignmentStatusActive, now)

	active := enums.AssignmentStatusActive
	rows, next, err := repo.List(ctx, listParams{Status: &active})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, rows, 2)

	rows, _, err = repo.List(ctx, listParams{AssetID: &first.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCountByStatus(t *testing.T) {
	conn := setupAssignmentsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	asset := newTestAsset(t, conn, enums.AssetTypeLaptop, enums.AssetStatusInStock)
	now := time.Now().UTC()
	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusActive, now)
	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusActive, now)
	seedAssignment(t, conn, asset.ID, enums.AssignmentStatusRefused, now)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.AssignmentStatusActive])
	assert.Equal(t, int64(1), counts[enums.AssignmentStatusRefused])
}
