package enums

import "fmt"

// AssetStatus maps to the asset_status enum in Postgres.
type AssetStatus string

const (
	AssetStatusInStock  AssetStatus = "in_stock"
	AssetStatusAssigned AssetStatus = "assigned"
	AssetStatusInRepair AssetStatus = "in_repair"
	AssetStatusRetired  AssetStatus = "retired"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusInStock,
	AssetStatusAssigned,
	AssetStatusInRepair,
	AssetStatusRetired,
}

// String implements fmt.Stringer.
func (a AssetStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssetStatus.
func (a AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssetStatus converts raw input into an AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}
