package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	if meta := MetadataFor(CodeValidation); meta.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected validation status: %d", meta.HTTPStatus)
	}
	if meta := MetadataFor(CodeConflict); meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("unexpected conflict status: %d", meta.HTTPStatus)
	}
	if meta := MetadataFor(Code("UNKNOWN")); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes must map to internal, got %d", meta.HTTPStatus)
	}
}

func TestReasonPropagation(t *testing.T) {
	t.Parallel()

	err := NewReason(CodeConflict, ReasonSkuAlreadyExists, "sku taken")
	wrapped := fmt.Errorf("create product: %w", err)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error through wrapping")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
	if ReasonOf(wrapped) != ReasonSkuAlreadyExists {
		t.Fatalf("unexpected reason: %s", ReasonOf(wrapped))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "db: ping")

	if err.Unwrap() != cause {
		t.Fatal("expected cause preserved")
	}
	if err.Error() != "DEPENDENCY_ERROR: db: ping" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestWithReasonAndDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "bad input").
		WithReason(ReasonInvalidUnit).
		WithDetails(map[string]string{"field": "unit_id"})

	if err.Reason() != ReasonInvalidUnit {
		t.Fatalf("unexpected reason: %s", err.Reason())
	}
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "unit_id" {
		t.Fatalf("unexpected details: %v", err.Details())
	}
	if err.Error() != "INVALID_UNIT: bad input" {
		t.Fatalf("reasoned errors must render the reason, got %s", err.Error())
	}
}

func TestAsNonTyped(t *testing.T) {
	t.Parallel()

	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if ReasonOf(fmt.Errorf("plain")) != "" {
		t.Fatal("expected empty reason for untyped error")
	}
}
