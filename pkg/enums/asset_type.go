package enums

import "fmt"

// AssetType categorizes the physical hardware tracked in the registry.
type AssetType string

const (
	AssetTypeLaptop        AssetType = "laptop"
	AssetTypeDesktop       AssetType = "desktop"
	AssetTypeMonitor       AssetType = "monitor"
	AssetTypePrinter       AssetType = "printer"
	AssetTypePhone         AssetType = "phone"
	AssetTypeTablet        AssetType = "tablet"
	AssetTypeServer        AssetType = "server"
	AssetTypeNetworkDevice AssetType = "network_device"
	AssetTypeProjector     AssetType = "projector"
	AssetTypePeripheral    AssetType = "peripheral"
	AssetTypeOther         AssetType = "other"
)

var validAssetTypes = []AssetType{
	AssetTypeLaptop,
	AssetTypeDesktop,
	AssetTypeMonitor,
	AssetTypePrinter,
	AssetTypePhone,
	AssetTypeTablet,
	AssetTypeServer,
	AssetTypeNetworkDevice,
	AssetTypeProjector,
	AssetTypePeripheral,
	AssetTypeOther,
}

// staffAssignableTypes is the allow-list for assignments targeted at an
// individual staff member. Department and location targets accept any type.
var staffAssignableTypes = map[AssetType]bool{
	AssetTypeLaptop:     true,
	AssetTypePhone:      true,
	AssetTypeTablet:     true,
	AssetTypeMonitor:    true,
	AssetTypePeripheral: true,
}

// accessoryAllowedTypes limits which asset types may carry an accessories list
// on issue and return.
var accessoryAllowedTypes = map[AssetType]bool{
	AssetTypeLaptop:  true,
	AssetTypeDesktop: true,
	AssetTypePhone:   true,
	AssetTypeTablet:  true,
}

// String implements fmt.Stringer.
func (a AssetType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssetType.
func (a AssetType) IsValid() bool {
	for _, candidate := range validAssetTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// StaffAssignable reports whether the type may be assigned to a staff member.
func (a AssetType) StaffAssignable() bool {
	return staffAssignableTypes[a]
}

// AllowsAccessories reports whether accessories may be issued with the type.
func (a AssetType) AllowsAccessories() bool {
	return accessoryAllowedTypes[a]
}

// ParseAssetType converts raw input into an AssetType.
func ParseAssetType(value string) (AssetType, error) {
	for _, candidate := range validAssetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset type %q", value)
}
