package enums

import "fmt"

// MovementReason classifies an inventory ledger entry.
type MovementReason string

const (
	MovementReasonStockIn    MovementReason = "STOCK_IN"
	MovementReasonStockOut   MovementReason = "STOCK_OUT"
	MovementReasonAdjustment MovementReason = "ADJUSTMENT"
	MovementReasonSale       MovementReason = "SALE"
	MovementReasonReturn     MovementReason = "RETURN"
)

var validMovementReasons = []MovementReason{
	MovementReasonStockIn,
	MovementReasonStockOut,
	MovementReasonAdjustment,
	MovementReasonSale,
	MovementReasonReturn,
}

// String implements fmt.Stringer.
func (r MovementReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known MovementReason.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// AllowsNegativeQuantity reports whether the reason accepts a signed quantity
// input. Only adjustments carry their own sign; all other reasons derive the
// delta sign from the reason itself.
func (r MovementReason) AllowsNegativeQuantity() bool {
	return r == MovementReasonAdjustment
}

// DeltaSign returns the sign the reason imposes on the ledger delta: +1 for
// inbound reasons, -1 for outbound ones, 0 for adjustments which carry their
// own sign.
func (r MovementReason) DeltaSign() int64 {
	switch r {
	case MovementReasonStockIn, MovementReasonReturn:
		return 1
	case MovementReasonStockOut, MovementReasonSale:
		return -1
	default:
		return 0
	}
}

// ParseMovementReason converts raw input into a MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
