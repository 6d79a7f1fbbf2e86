package enums

import "fmt"

// UnitCategory groups measurement units by what they measure.
type UnitCategory string

const (
	UnitCategoryCount  UnitCategory = "COUNT"
	UnitCategoryWeight UnitCategory = "WEIGHT"
	UnitCategoryVolume UnitCategory = "VOLUME"
	UnitCategoryLength UnitCategory = "LENGTH"
	UnitCategoryTime   UnitCategory = "TIME"
)

var validUnitCategories = []UnitCategory{
	UnitCategoryCount,
	UnitCategoryWeight,
	UnitCategoryVolume,
	UnitCategoryLength,
	UnitCategoryTime,
}

// String implements fmt.Stringer.
func (c UnitCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known UnitCategory.
func (c UnitCategory) IsValid() bool {
	for _, candidate := range validUnitCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseUnitCategory converts raw input into a UnitCategory.
func ParseUnitCategory(value string) (UnitCategory, error) {
	for _, candidate := range validUnitCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit category %q", value)
}
