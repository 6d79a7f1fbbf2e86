package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error into a coarse kind that drives transport mapping.
type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeIdempotency Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeDependency  Code = "DEPENDENCY_ERROR"
)

// Reason is a stable domain error identifier surfaced to callers verbatim.
// These strings are part of the wire contract and must never be renamed.
type Reason string

const (
	ReasonInvalidMoneyInput        Reason = "INVALID_MONEY_INPUT"
	ReasonInvalidUnit              Reason = "INVALID_UNIT"
	ReasonQuantityPrecisionInvalid Reason = "QUANTITY_PRECISION_INVALID"
	ReasonInvalidReorderPoint      Reason = "INVALID_REORDER_POINT"
	ReasonInvalidInitialOnHand     Reason = "INVALID_INITIAL_ON_HAND"
	ReasonServiceTimeUnitRequired  Reason = "SERVICE_TIME_UNIT_REQUIRED"
	ReasonServiceDurationInvalid   Reason = "SERVICE_DURATION_INVALID"
	ReasonModifierRulesInvalid     Reason = "MODIFIER_RULES_INVALID"
	ReasonSelectionInvalid         Reason = "MODIFIER_SELECTION_INVALID"
	ReasonSelectionRequired        Reason = "MODIFIER_SELECTION_REQUIRED"
	ReasonSelectionLimitExceeded   Reason = "MODIFIER_SELECTION_LIMIT_EXCEEDED"
	ReasonSelectionSingleOnly      Reason = "MODIFIER_SELECTION_SINGLE_ONLY"
	ReasonOptionSoldOut            Reason = "MODIFIER_OPTION_SOLD_OUT"
	ReasonModifierGroupInvalid     Reason = "MODIFIER_GROUP_INVALID"

	ReasonSkuAlreadyExists        Reason = "SKU_ALREADY_EXISTS"
	ReasonBarcodeAlreadyExists    Reason = "BARCODE_ALREADY_EXISTS"
	ReasonProductCodeConflict     Reason = "PRODUCT_CODE_CONFLICT"
	ReasonCatalogLimitReached     Reason = "CATALOG_LIMIT_REACHED"
	ReasonSkuGenerationFailed     Reason = "SKU_GENERATION_FAILED"
	ReasonStockInsufficient       Reason = "STOCK_INSUFFICIENT"
	ReasonGroupLimitReached       Reason = "MODIFIER_GROUP_LIMIT_REACHED"
	ReasonOptionLimitReached      Reason = "MODIFIER_OPTION_LIMIT_REACHED"
	ReasonGroupsPerProductLimit   Reason = "MODIFIER_GROUPS_PER_PRODUCT_LIMIT"

	ReasonProductNotFound        Reason = "PRODUCT_NOT_FOUND"
	ReasonModifierGroupNotFound  Reason = "MODIFIER_GROUP_NOT_FOUND"
	ReasonModifierOptionNotFound Reason = "MODIFIER_OPTION_NOT_FOUND"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "resource not found",
		DetailsAllowed: false,
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "conflict detected",
		DetailsAllowed: true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	reason  Reason
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// NewReason builds a domain error carrying a stable wire reason.
func NewReason(code Code, reason Reason, message string) *Error {
	return &Error{code: code, reason: reason, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

// Reason returns the stable domain identifier, empty when the error has none.
func (e *Error) Reason() Reason {
	if e == nil {
		return ""
	}
	return e.reason
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) WithReason(reason Reason) *Error {
	if e == nil {
		return nil
	}
	e.reason = reason
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.reason != "" {
		return fmt.Sprintf("%s: %s", e.reason, e.message)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// ReasonOf extracts the domain reason from any error in the chain.
func ReasonOf(err error) Reason {
	if typed := As(err); typed != nil {
		return typed.Reason()
	}
	return ""
}
