// Package money converts between minor-unit integer amounts and decimal-major
// strings. Amounts are handled as exact integers end to end; floats never
// touch a money value.
package money

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

const maxMinorDigits = 15

var (
	minorPattern  = regexp.MustCompile(`^\d+$`)
	legacyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// ParseMinor validates and parses a digit-only minor-unit amount string.
func ParseMinor(value, field string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len(trimmed) > maxMinorDigits || !minorPattern.MatchString(trimmed) {
		return 0, invalidMoney(field, "must be a digit-only minor unit amount")
	}
	amount, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, invalidMoney(field, "minor unit amount out of range")
	}
	return amount, nil
}

// ParseLegacy validates and parses a legacy decimal-major amount with at most
// two fractional digits, returning the amount in minor units.
func ParseLegacy(value, field string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || !legacyPattern.MatchString(trimmed) {
		return 0, invalidMoney(field, "must be a decimal amount with at most 2 fractional digits")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, invalidMoney(field, "must be a decimal amount")
	}
	shifted := dec.Shift(2)
	if !shifted.IsInteger() {
		return 0, invalidMoney(field, "must have at most 2 fractional digits")
	}
	return shifted.IntPart(), nil
}

// Resolve picks the amount from a minor/legacy field pair. Exactly one of the
// two may be supplied; both is a validation error, neither yields nil.
func Resolve(minor, legacy *string, field string) (*int64, error) {
	if minor != nil && legacy != nil {
		return nil, invalidMoney(field, "supply either the minor or the legacy decimal form, not both")
	}
	if minor != nil {
		amount, err := ParseMinor(*minor, field)
		if err != nil {
			return nil, err
		}
		return &amount, nil
	}
	if legacy != nil {
		amount, err := ParseLegacy(*legacy, field)
		if err != nil {
			return nil, err
		}
		return &amount, nil
	}
	return nil, nil
}

// Format renders a minor-unit amount as a decimal-major string with exactly
// two fractional digits.
func Format(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// FormatPtr renders an optional minor-unit amount, nil stays nil.
func FormatPtr(minor *int64) *string {
	if minor == nil {
		return nil
	}
	formatted := Format(*minor)
	return &formatted
}

func invalidMoney(field, hint string) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeValidation,
		pkgerrors.ReasonInvalidMoneyInput,
		fmt.Sprintf("%s: %s", field, hint),
	).WithDetails(map[string]string{"field": field})
}
