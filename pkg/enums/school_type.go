package enums

import "fmt"

// SchoolType represents the canonical school_type enum in Postgres.
type SchoolType string

const (
	SchoolTypeTradicional SchoolType = "tradicional"
	SchoolTypeCreche      SchoolType = "creche"
)

var validSchoolTypes = []SchoolType{
	SchoolTypeTradicional,
	SchoolTypeCreche,
}

// String implements fmt.Stringer.
func (s SchoolType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SchoolType.
func (s SchoolType) IsValid() bool {
	for _, candidate := range validSchoolTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSchoolType converts raw input into a SchoolType.
func ParseSchoolType(value string) (SchoolType, error) {
	for _, candidate := range validSchoolTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid school type %q", value)
}
