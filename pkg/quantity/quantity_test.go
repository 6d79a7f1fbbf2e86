package quantity

import (
	"testing"

	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

func TestToStorage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		value         string
		unitScale     int
		allowNegative bool
		want          int64
		wantErr       bool
		wantReason    pkgerrors.Reason
	}{
		{name: "integer at scale zero", value: "7", unitScale: 0, want: 700000},
		{name: "three decimals at scale three", value: "0.125", unitScale: 3, want: 12500},
		{name: "max scale", value: "1.00001", unitScale: 5, want: 100001},
		{name: "trailing zeros within scale", value: "12.50", unitScale: 2, want: 1250000},
		{name: "negative allowed", value: "-3.5", unitScale: 1, allowNegative: true, want: -350000},
		{name: "negative rejected", value: "-1", unitScale: 0, wantErr: true},
		{name: "too many fractional digits", value: "12.500", unitScale: 2, wantErr: true, wantReason: pkgerrors.ReasonQuantityPrecisionInvalid},
		{name: "scale zero rejects fraction", value: "1.1", unitScale: 0, wantErr: true, wantReason: pkgerrors.ReasonQuantityPrecisionInvalid},
		{name: "exponent rejected", value: "1e3", unitScale: 0, wantErr: true},
		{name: "separators rejected", value: "1,000", unitScale: 0, wantErr: true},
		{name: "empty rejected", value: "", unitScale: 0, wantErr: true},
		{name: "whitespace only rejected", value: "   ", unitScale: 0, wantErr: true},
		{name: "too many integer digits", value: "1234567890123", unitScale: 0, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToStorage(tc.value, tc.unitScale, tc.allowNegative, "quantity")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.value)
				}
				if tc.wantReason != "" && pkgerrors.ReasonOf(err) != tc.wantReason {
					t.Fatalf("expected reason %s, got %v", tc.wantReason, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFromStorageRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value     string
		unitScale int
		rendered  string
	}{
		{value: "7", unitScale: 0, rendered: "7"},
		{value: "0.125", unitScale: 3, rendered: "0.125"},
		{value: "12.5", unitScale: 2, rendered: "12.50"},
		{value: "0", unitScale: 1, rendered: "0.0"},
	}

	for _, tc := range cases {
		scaled, err := ToStorage(tc.value, tc.unitScale, false, "quantity")
		if err != nil {
			t.Fatalf("ToStorage(%q): %v", tc.value, err)
		}
		if got := FromStorage(scaled, tc.unitScale); got != tc.rendered {
			t.Fatalf("FromStorage(%d, %d) = %q, want %q", scaled, tc.unitScale, got, tc.rendered)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got, err := Normalize("12.5", 3)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "12.500" {
		t.Fatalf("expected 12.500, got %s", got)
	}

	if _, err := Normalize("abc", 2); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestScaledIntRoundTrip(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"0.00001", "99999.99999", "-42.1", "1"} {
		scaled, err := ToScaledInt(value, MaxScale)
		if err != nil {
			t.Fatalf("ToScaledInt(%q): %v", value, err)
		}
		back, err := ToScaledInt(FromScaledInt(scaled, MaxScale), MaxScale)
		if err != nil {
			t.Fatalf("round trip parse: %v", err)
		}
		if back != scaled {
			t.Fatalf("round trip mismatch for %q: %d != %d", value, back, scaled)
		}
	}
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	if !IsZero("0.000") {
		t.Fatal("expected 0.000 to be zero")
	}
	if IsZero("0.001") {
		t.Fatal("expected 0.001 to be non-zero")
	}
}
