package assets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
)

type fakeRepository struct {
	createFn       func(ctx context.Context, asset *models.Asset) error
	findFn         func(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status enums.AssetStatus) error
	updateFn       func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	listFn         func(ctx context.Context, filters ListFilters) ([]models.Asset, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, asset *models.Asset) error {
	if f.createFn != nil {
		return f.createFn(ctx, asset)
	}
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AssetStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, updates)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, filters ListFilters) ([]models.Asset, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filters)
	}
	return nil, nil
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOpenCounter struct {
	count int64
}

func (f *fakeOpenCounter) CountOpenForAsset(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (int64, error) {
	return f.count, nil
}

func newServiceWithRepo(t *testing.T, repo Repository, counter OpenAssignmentCounter) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeTxRunner{}, counter)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_CreateValidatesInput(t *testing.T) {
	svc := newServiceWithRepo(t, &fakeRepository{}, &fakeOpenCounter{})

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing tag", CreateInput{Name: "MacBook", AssetType: enums.AssetTypeLaptop}},
		{"missing name", CreateInput{AssetTag: "IT-001", AssetType: enums.AssetTypeLaptop}},
		{"bad type", CreateInput{AssetTag: "IT-001", Name: "MacBook", AssetType: enums.AssetType("couch")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestService_CreateDefaultsToInStock(t *testing.T) {
	var captured *models.Asset
	repo := &fakeRepository{
		createFn: func(ctx context.Context, asset *models.Asset) error {
			captured = asset
			return nil
		},
	}
	svc := newServiceWithRepo(t, repo, &fakeOpenCounter{})

	asset, err := svc.Create(context.Background(), CreateInput{
		AssetTag:  " IT-042 ",
		Name:      "ThinkPad X1",
		AssetType: enums.AssetTypeLaptop,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil {
		t.Fatal("repository create not called")
	}
	if asset.Status != enums.AssetStatusInStock {
		t.Fatalf("unexpected status %s", asset.Status)
	}
	if asset.AssetTag != "IT-042" {
		t.Fatalf("expected trimmed tag, got %q", asset.AssetTag)
	}
}

func TestService_SetStatusRejectsAssigned(t *testing.T) {
	svc := newServiceWithRepo(t, &fakeRepository{}, &fakeOpenCounter{})

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		ID:     uuid.New(),
		Status: enums.AssetStatusAssigned,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestService_SetStatusBlockedByOpenAssignment(t *testing.T) {
	assetID := uuid.New()
	repo := &fakeRepository{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
			return &models.Asset{ID: assetID, Status: enums.AssetStatusAssigned}, nil
		},
	}
	svc := newServiceWithRepo(t, repo, &fakeOpenCounter{count: 1})

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		ID:     assetID,
		Status: enums.AssetStatusRetired,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %v", err)
	}
}

func TestService_SetStatusUpdatesWhenFree(t *testing.T) {
	assetID := uuid.New()
	var updatedTo enums.AssetStatus
	repo := &fakeRepository{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
			return &models.Asset{ID: assetID, Status: enums.AssetStatusInStock}, nil
		},
		updateStatusFn: func(ctx context.Context, id uuid.UUID, status enums.AssetStatus) error {
			updatedTo = status
			return nil
		},
	}
	svc := newServiceWithRepo(t, repo, &fakeOpenCounter{})

	asset, err := svc.SetStatus(context.Background(), SetStatusInput{
		ID:     assetID,
		Status: enums.AssetStatusInRepair,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedTo != enums.AssetStatusInRepair {
		t.Fatalf("expected in_repair update, got %s", updatedTo)
	}
	if asset.Status != enums.AssetStatusInRepair {
		t.Fatalf("unexpected returned status %s", asset.Status)
	}
}

func TestService_GetNotFound(t *testing.T) {
	svc := newServiceWithRepo(t, &fakeRepository{}, &fakeOpenCounter{})

	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}
