package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalThreeStates(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name Optional[string] `json:"name"`
		Age  Optional[int]    `json:"age"`
	}

	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Name.IsSet() || absent.Age.IsSet() {
		t.Fatal("absent fields must not be set")
	}

	var null payload
	if err := json.Unmarshal([]byte(`{"name":null}`), &null); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !null.Name.IsSet() || !null.Name.IsNull() {
		t.Fatal("explicit null must be set and null")
	}
	if null.Name.Ptr() != nil {
		t.Fatal("null must yield nil pointer")
	}

	var value payload
	if err := json.Unmarshal([]byte(`{"name":"widget","age":3}`), &value); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	name, ok := value.Name.Value()
	if !ok || name != "widget" {
		t.Fatalf("unexpected value: %q %v", name, ok)
	}
	if value.Name.IsNull() {
		t.Fatal("value must not be null")
	}
	age, ok := value.Age.Value()
	if !ok || age != 3 {
		t.Fatalf("unexpected age: %d %v", age, ok)
	}
}

func TestOptionalConstructors(t *testing.T) {
	t.Parallel()

	set := Set("x")
	if v, ok := set.Value(); !ok || v != "x" {
		t.Fatalf("unexpected set value: %q %v", v, ok)
	}

	null := Null[string]()
	if !null.IsSet() || !null.IsNull() {
		t.Fatal("Null must be set and null")
	}

	var zero Optional[string]
	if zero.IsSet() {
		t.Fatal("zero value must be unset")
	}
}
