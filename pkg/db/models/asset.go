package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
)

// Asset is a tracked hardware item in the registry.
type Asset struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	AssetTag     string            `gorm:"column:asset_tag;type:text;not null;uniqueIndex"`
	Name         string            `gorm:"type:text;not null"`
	AssetType    enums.AssetType   `gorm:"column:asset_type;type:asset_type;not null"`
	Status       enums.AssetStatus `gorm:"type:asset_status;not null"`
	SerialNumber string            `gorm:"column:serial_number;type:text;not null"`
	PurchaseDate *time.Time        `gorm:"column:purchase_date;type:date"`
	Notes        string            `gorm:"type:text;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Asset) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = enums.AssetStatusInStock
	}
	return nil
}
