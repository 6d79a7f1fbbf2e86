package db

import (
	"strings"

	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// Unique index names the catalog schema declares. Store-raised violations are
// classified back into domain errors by matching these.
const (
	ConstraintProductSKU          = "idx_products_business_sku"
	ConstraintProductBarcode      = "idx_products_business_barcode"
	ConstraintMovementIdempotency = "idx_movements_product_idem_key"
)

// IsUniqueViolation reports whether the provided error references a unique
// violation. When constraintName is provided, the helper checks that the
// violation names that constraint, falling back to message inspection for
// drivers that do not expose structured fields (sqlite in tests).
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if named := pkgerrors.ConstraintName(err); named != "" {
		if constraintName != "" {
			return named == constraintName
		}
		return true
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName) ||
			strings.Contains(msg, sqliteColumnHint(constraintName))
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// sqliteColumnHint maps an index name to the column text sqlite embeds in its
// unique violation messages, keeping test classification faithful.
func sqliteColumnHint(constraintName string) string {
	switch constraintName {
	case ConstraintProductSKU:
		return "products.sku"
	case ConstraintProductBarcode:
		return "products.barcode"
	case ConstraintMovementIdempotency:
		return "inventory_movements.idempotency_key"
	default:
		return constraintName
	}
}
