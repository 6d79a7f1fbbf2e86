package enums

import "fmt"

// ProductType distinguishes stocked goods from bookable services.
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeService  ProductType = "service"
)

var validProductTypes = []ProductType{
	ProductTypePhysical,
	ProductTypeService,
}

// String implements fmt.Stringer.
func (t ProductType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ProductType.
func (t ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
