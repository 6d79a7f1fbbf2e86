// Package quantity implements the unit-driven quantity codec. Quantities
// travel as decimal strings, are validated against the precision scale of the
// product's unit, and are converted to scaled integers for exact arithmetic
// and storage. Floats are never used.
package quantity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

const (
	// MaxScale is the largest precision scale any unit may declare.
	MaxScale = 5
	// StorageScale is the fixed scale quantity columns are persisted at.
	// It equals MaxScale so any valid unit-scaled value stores exactly.
	StorageScale = MaxScale

	maxIntegerDigits = 12
	maxTotalLength   = 18
)

var quantityPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// FractionalDigits counts the fractional digits present in a raw decimal
// string. The input must already be syntactically valid.
func FractionalDigits(value string) int {
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		return len(value) - idx - 1
	}
	return 0
}

// ValidateSyntax checks the raw string shape: plain decimal, optional leading
// minus only when allowNegative, no exponent, no separators, bounded size.
func ValidateSyntax(value string, allowNegative bool, label string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return invalidQuantity(label, "is required")
	}
	if len(trimmed) > maxTotalLength {
		return invalidQuantity(label, fmt.Sprintf("must be at most %d characters", maxTotalLength))
	}
	if !quantityPattern.MatchString(trimmed) {
		return invalidQuantity(label, "must be a plain decimal number")
	}
	unsigned := strings.TrimPrefix(trimmed, "-")
	if !allowNegative && unsigned != trimmed {
		return invalidQuantity(label, "must not be negative")
	}
	intDigits := unsigned
	if idx := strings.IndexByte(unsigned, '.'); idx >= 0 {
		intDigits = unsigned[:idx]
	}
	if len(intDigits) > maxIntegerDigits {
		return invalidQuantity(label, fmt.Sprintf("must have at most %d integer digits", maxIntegerDigits))
	}
	return nil
}

// EnforcePrecisionScale fails when the value carries more fractional digits
// than the governing unit allows.
func EnforcePrecisionScale(value string, scale int, label string) error {
	trimmed := strings.TrimSpace(value)
	if digits := FractionalDigits(strings.TrimPrefix(trimmed, "-")); digits > scale {
		return pkgerrors.NewReason(
			pkgerrors.CodeValidation,
			pkgerrors.ReasonQuantityPrecisionInvalid,
			fmt.Sprintf("%s: at most %d fractional digits allowed, got %d", label, scale, digits),
		).WithDetails(map[string]any{"field": label, "scale": scale, "fractional_digits": digits})
	}
	return nil
}

// Validate runs the full input check: syntax, integer-digit caps, and the
// unit precision rule.
func Validate(value string, scale int, allowNegative bool, label string) error {
	if err := ValidateSyntax(value, allowNegative, label); err != nil {
		return err
	}
	return EnforcePrecisionScale(value, scale, label)
}

// Normalize renders a valid quantity as the canonical fixed-scale string for
// the given scale, right-padding with zeros. Excess fractional digits are
// truncated rather than rounded.
func Normalize(value string, scale int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if err := ValidateSyntax(trimmed, true, "quantity"); err != nil {
		return "", err
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return "", invalidQuantity("quantity", "must be a plain decimal number")
	}
	return dec.Truncate(int32(scale)).StringFixed(int32(scale)), nil
}

// ToScaledInt converts a validated decimal string into the integer value at
// 10^scale. Exact inverse of FromScaledInt for inputs within the digit caps.
func ToScaledInt(value string, scale int) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if err := ValidateSyntax(trimmed, true, "quantity"); err != nil {
		return 0, err
	}
	if err := EnforcePrecisionScale(trimmed, scale, "quantity"); err != nil {
		return 0, err
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, invalidQuantity("quantity", "must be a plain decimal number")
	}
	return dec.Shift(int32(scale)).IntPart(), nil
}

// FromScaledInt renders a scaled integer back into the canonical decimal
// string at the given scale.
func FromScaledInt(value int64, scale int) string {
	return decimal.New(value, -int32(scale)).StringFixed(int32(scale))
}

// ToStorage validates a quantity against the unit scale and converts it to
// the fixed storage scale.
func ToStorage(value string, unitScale int, allowNegative bool, label string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if err := ValidateSyntax(trimmed, allowNegative, label); err != nil {
		return 0, err
	}
	if err := EnforcePrecisionScale(trimmed, unitScale, label); err != nil {
		return 0, err
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, invalidQuantity(label, "must be a plain decimal number")
	}
	return dec.Shift(StorageScale).IntPart(), nil
}

// FromStorage renders a storage-scale value at the unit's display scale.
// Values written through ToStorage never carry digits beyond the unit scale,
// so the truncation is exact.
func FromStorage(value int64, unitScale int) string {
	return decimal.New(value, -StorageScale).Truncate(int32(unitScale)).StringFixed(int32(unitScale))
}

// IsZero reports whether a validated decimal string equals zero.
func IsZero(value string) bool {
	dec, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return dec.IsZero()
}

func invalidQuantity(label, hint string) *pkgerrors.Error {
	return pkgerrors.New(
		pkgerrors.CodeValidation,
		fmt.Sprintf("%s: %s", label, hint),
	).WithDetails(map[string]string{"field": label})
}
