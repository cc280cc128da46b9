package enums

import "fmt"

// AssignmentTargetType discriminates who or what an assignment hands the asset to.
type AssignmentTargetType string

const (
	AssignmentTargetStaff      AssignmentTargetType = "staff"
	AssignmentTargetLocation   AssignmentTargetType = "location"
	AssignmentTargetDepartment AssignmentTargetType = "department"
)

var validAssignmentTargetTypes = []AssignmentTargetType{
	AssignmentTargetStaff,
	AssignmentTargetLocation,
	AssignmentTargetDepartment,
}

// String implements fmt.Stringer.
func (t AssignmentTargetType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known AssignmentTargetType.
func (t AssignmentTargetType) IsValid() bool {
	for _, candidate := range validAssignmentTargetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAssignmentTargetType converts raw input into an AssignmentTargetType.
func ParseAssignmentTargetType(value string) (AssignmentTargetType, error) {
	for _, candidate := range validAssignmentTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment target type %q", value)
}
