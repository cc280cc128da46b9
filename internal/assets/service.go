package assets

import (
	"context"
	"strings"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdeskhq/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OpenAssignmentCounter reports how many open assignments an asset has. The
// assignments package provides the implementation.
type OpenAssignmentCounter interface {
	CountOpenForAsset(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (int64, error)
}

// Service defines asset registry operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	List(ctx context.Context, filters ListFilters) ([]models.Asset, error)
	Update(ctx context.Context, input UpdateInput) (*models.Asset, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*models.Asset, error)
}

// CreateInput carries the fields needed to register an asset.
type CreateInput struct {
	AssetTag     string
	Name         string
	AssetType    enums.AssetType
	SerialNumber string
	Notes        string
}

// UpdateInput carries editable asset metadata.
type UpdateInput struct {
	ID           uuid.UUID
	Name         *string
	SerialNumber *string
	Notes        *string
}

// SetStatusInput requests a manual status change on an asset.
type SetStatusInput struct {
	ID     uuid.UUID
	Status enums.AssetStatus
}

type service struct {
	repo        Repository
	tx          txRunner
	assignments OpenAssignmentCounter
}

// NewService builds the asset service with the required dependencies.
func NewService(repo Repository, tx txRunner, assignments OpenAssignmentCounter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assets repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if assignments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "open assignment counter required")
	}
	return &service{repo: repo, tx: tx, assignments: assignments}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Asset, error) {
	input.AssetTag = strings.TrimSpace(input.AssetTag)
	input.Name = strings.TrimSpace(input.Name)
	if input.AssetTag == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset tag required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name required")
	}
	if !input.AssetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset type")
	}

	asset := &models.Asset{
		AssetTag:     input.AssetTag,
		Name:         input.Name,
		AssetType:    input.AssetType,
		Status:       enums.AssetStatusInStock,
		SerialNumber: strings.TrimSpace(input.SerialNumber),
		Notes:        input.Notes,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset tag already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
	}
	return asset, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}
	return asset, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Asset, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Asset, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name cannot be empty")
		}
		updates["name"] = name
	}
	if input.SerialNumber != nil {
		updates["serial_number"] = strings.TrimSpace(*input.SerialNumber)
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return s.Get(ctx, input.ID)
	}

	if _, err := s.Get(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, input.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset")
	}
	return s.Get(ctx, input.ID)
}

// SetStatus handles manual status changes (repair intake, retirement, return
// to stock). The assigned status is owned by the assignment lifecycle and is
// never set here, and no manual change is allowed while an open assignment
// books the asset.
func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.Asset, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset status")
	}
	if input.Status == enums.AssetStatusAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned status is managed by assignments")
	}

	var updated *models.Asset
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		asset, err := repo.FindByIDForUpdate(ctx, input.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
		}

		open, err := s.assignments.CountOpenForAsset(ctx, tx, asset.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "asset has an open assignment")
		}

		if err := repo.UpdateStatus(ctx, asset.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset status")
		}
		asset.Status = input.Status
		updated = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
