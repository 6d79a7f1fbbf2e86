package types

import (
	"bytes"
	"encoding/json"
)

// Optional is a three-state JSON field: absent, explicit null, or a value.
// Absent means "leave unchanged" on partial updates; null means "clear".
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Set builds an Optional holding a value.
func Set[T any](value T) Optional[T] {
	return Optional[T]{set: true, value: value}
}

// Null builds an Optional representing an explicit JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field was present in the payload at all.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsNull reports whether the field was present as an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.set && o.null
}

// Value returns the held value and whether one is present.
func (o Optional[T]) Value() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Ptr returns a pointer form: nil for null, the value otherwise.
// Callers must check IsSet first to distinguish absent from null.
func (o Optional[T]) Ptr() *T {
	if !o.set || o.null {
		return nil
	}
	v := o.value
	return &v
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
