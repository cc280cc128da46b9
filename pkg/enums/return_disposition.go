package enums

import "fmt"

// ReturnDisposition is the admin's choice of where an asset goes after an
// approved return.
type ReturnDisposition string

const (
	ReturnDispositionAvailable   ReturnDisposition = "available"
	ReturnDispositionUnderRepair ReturnDisposition = "under_repair"
)

var validReturnDispositions = []ReturnDisposition{
	ReturnDispositionAvailable,
	ReturnDispositionUnderRepair,
}

// AssetStatus maps the disposition to the asset status it produces.
func (r ReturnDisposition) AssetStatus() AssetStatus {
	if r == ReturnDispositionUnderRepair {
		return AssetStatusInRepair
	}
	return AssetStatusInStock
}

// IsValid reports whether the value is a known ReturnDisposition.
func (r ReturnDisposition) IsValid() bool {
	for _, candidate := range validReturnDispositions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReturnDisposition converts raw input into a ReturnDisposition.
func ParseReturnDisposition(value string) (ReturnDisposition, error) {
	for _, candidate := range validReturnDispositions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return disposition %q", value)
}
