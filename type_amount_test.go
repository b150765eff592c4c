package txengine

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1", want: 10000},
		{in: "1.5", want: 15000},
		{in: " 2.7500 ", want: 27500},
		{in: "0.0001", want: 1},
		{in: "12345.6789", want: 123456789},
		{in: "-3.25", want: -32500},
		{in: "1.50000", want: 15000}, // trailing zeros beyond the scale are not a precision loss
		{in: "0", want: 0},
		{in: "1.23456", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1,5", wantErr: true},
		{in: "922337203685477.5808", wantErr: true},
		{in: "-922337203685477.5808", want: math.MinInt64},
		{in: "1.5e2", want: 1500000},
		{in: "15000e-4", want: 15000},
		{in: "1e-4", want: 1},
		{in: "1e-5", wantErr: true},
		{in: "100e-6", want: 1},
		{in: "0e-99999", want: 0},
		{in: "1e14", want: 1e18},
		{in: "1e15", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			}
			if got.Units() != tc.want {
				t.Errorf("ParseAmount(%q) = %d units, want %d", tc.in, got.Units(), tc.want)
			}
		})
	}
}

func TestParseAmount_Overflow(t *testing.T) {
	_, err := ParseAmount("922337203685477.5808")
	if !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("ParseAmount() error = %v, want %v", err, ErrAmountOverflow)
	}
}

func TestParseAmount_HugeExponent(t *testing.T) {
	for _, in := range []string{"1e-999999999", "1e999999999", "-7e-50000000", "10e-50000000"} {
		start := time.Now()
		_, err := ParseAmount(in)
		if err == nil {
			t.Errorf("ParseAmount(%q) succeeded, want error", in)
			continue
		}
		if d := time.Since(start); d > time.Second {
			t.Errorf("ParseAmount(%q) took %v", in, d)
		}
		if len(err.Error()) > 100 {
			t.Errorf("ParseAmount(%q) error is %d bytes long", in, len(err.Error()))
		}
	}
	if _, err := ParseAmount("1e999999999"); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("ParseAmount(1e999999999) error = %v, want %v", err, ErrAmountOverflow)
	}
}

func TestAmount_String(t *testing.T) {
	testCases := []struct {
		amount Amount
		want   string
	}{
		{A(0), "0.0000"},
		{A(15000), "1.5000"},
		{A(1), "0.0001"},
		{A(-32500), "-3.2500"},
		{MustParseAmount("100"), "100.0000"},
	}
	for _, tc := range testCases {
		if got := tc.amount.String(); got != tc.want {
			t.Errorf("Amount(%d).String() = %q, want %q", tc.amount.Units(), got, tc.want)
		}
	}
}

func TestAmount_AddSub(t *testing.T) {
	a, b := MustParseAmount("1.5"), MustParseAmount("0.25")

	sum, err := a.Add(b)
	if err != nil || !sum.Equal(MustParseAmount("1.75")) {
		t.Errorf("%s + %s = %s, %v; want 1.7500", a, b, sum, err)
	}
	diff, err := b.Sub(a)
	if err != nil || !diff.Equal(MustParseAmount("-1.25")) {
		t.Errorf("%s - %s = %s, %v; want -1.2500", b, a, diff, err)
	}
	if !diff.IsNegative() || diff.Cmp(b) != -1 || a.Cmp(b) != 1 || a.Cmp(a) != 0 {
		t.Errorf("unexpected comparison results for %s, %s, %s", a, b, diff)
	}
}

func TestAmount_Overflow(t *testing.T) {
	max, min := A(math.MaxInt64), A(math.MinInt64)

	if _, err := max.Add(A(1)); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("max + 1: error = %v, want %v", err, ErrAmountOverflow)
	}
	if _, err := min.Add(A(-1)); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("min + -1: error = %v, want %v", err, ErrAmountOverflow)
	}
	if _, err := min.Sub(A(1)); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("min - 1: error = %v, want %v", err, ErrAmountOverflow)
	}
	if _, err := A(0).Sub(min); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("0 - min: error = %v, want %v", err, ErrAmountOverflow)
	}
	if got, err := max.Sub(A(1)); err != nil || got.Units() != math.MaxInt64-1 {
		t.Errorf("max - 1 = %v, %v", got, err)
	}
}

func TestAmount_Money(t *testing.T) {
	m := MustParseAmount("12.3456").Money("USD")
	if m.Amount() != 1235 {
		t.Errorf("Money(USD) = %d cents, want 1235", m.Amount())
	}
	if m.Currency().Code != "USD" {
		t.Errorf("Money(USD) currency = %q", m.Currency().Code)
	}
}

func TestAmount_JSON(t *testing.T) {
	data, err := MustParseAmount("3.5").MarshalJSON()
	if err != nil || string(data) != "3.5000" {
		t.Errorf("MarshalJSON() = %s, %v; want 3.5000", data, err)
	}
	var a Amount
	if err := a.UnmarshalJSON([]byte(`"2.25"`)); err != nil || !a.Equal(MustParseAmount("2.25")) {
		t.Errorf("UnmarshalJSON(\"2.25\") = %s, %v", a, err)
	}
}
