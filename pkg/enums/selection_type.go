package enums

import "fmt"

// SelectionType controls how many options may be picked from a modifier group.
type SelectionType string

const (
	SelectionTypeSingle SelectionType = "SINGLE"
	SelectionTypeMulti  SelectionType = "MULTI"
)

var validSelectionTypes = []SelectionType{
	SelectionTypeSingle,
	SelectionTypeMulti,
}

// String implements fmt.Stringer.
func (t SelectionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SelectionType.
func (t SelectionType) IsValid() bool {
	for _, candidate := range validSelectionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSelectionType converts raw input into a SelectionType.
func ParseSelectionType(value string) (SelectionType, error) {
	for _, candidate := range validSelectionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid selection type %q", value)
}
