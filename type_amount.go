package txengine

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 4

// Amount is a signed fixed-precision monetary quantity, counted in 1/10^Scale units.
//
// Arithmetic is exact. Operations that would leave the int64 range return
// ErrAmountOverflow instead of wrapping around.
type Amount struct {
	units int64
}

// A builds an Amount from a whole number of units (1/10^Scale each).
func A(units int64) Amount { return Amount{units: units} }

// ParseAmount parses the decimal text representation of an amount.
//
// Values with more than Scale fractional digits are rejected rather than rounded.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	units, err := unitsOf(d)
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return Amount{units: units}, nil
}

// maxShift is the largest power of ten a non-zero coefficient can be scaled
// by and still fit an int64.
const maxShift = 18

var ten = big.NewInt(10)

// unitsOf returns d as a count of 1/10^Scale units.
//
// Exponents come straight from the input ("1e-50000000"), so the coefficient
// is only ever scaled by powers of ten bounded by its own length or maxShift.
func unitsOf(d decimal.Decimal) (int64, error) {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return 0, nil
	}
	// shift is the power of ten turning the coefficient into units.
	shift := int64(d.Exponent()) + Scale
	switch {
	case shift < 0:
		drop := -shift
		if drop >= int64(len(coef.String())) {
			return 0, fmt.Errorf("more than %d fractional digits", Scale)
		}
		var rem big.Int
		coef.QuoRem(coef, new(big.Int).Exp(ten, big.NewInt(drop), nil), &rem)
		if rem.Sign() != 0 {
			return 0, fmt.Errorf("more than %d fractional digits", Scale)
		}
	case shift > maxShift:
		return 0, ErrAmountOverflow
	case shift > 0:
		coef.Mul(coef, new(big.Int).Exp(ten, big.NewInt(shift), nil))
	}
	if !coef.IsInt64() {
		return 0, ErrAmountOverflow
	}
	return coef.Int64(), nil
}

// MustParseAmount is like ParseAmount but panics on error. It is meant for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Units returns the raw number of 1/10^Scale units.
func (a Amount) Units() int64 { return a.units }

// Decimal returns the exact decimal value of the amount.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(a.units, -Scale) }

// String returns the amount with exactly Scale fractional digits, e.g. "1.5000".
func (a Amount) String() string { return a.Decimal().StringFixed(Scale) }

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.units == 0 }

// IsNegative returns true if the amount is strictly below zero.
func (a Amount) IsNegative() bool { return a.units < 0 }

// IsPositive returns true if the amount is strictly above zero.
func (a Amount) IsPositive() bool { return a.units > 0 }

// Equal returns true if a and b are the same amount.
func (a Amount) Equal(b Amount) bool { return a.units == b.units }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a.units < b.units }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.units > b.units }

// Cmp returns -1, 0 or +1 depending on whether a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.units < b.units:
		return -1
	case a.units > b.units:
		return 1
	default:
		return 0
	}
}

// Add returns a+b, or ErrAmountOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b.units > 0 && a.units > math.MaxInt64-b.units) || (b.units < 0 && a.units < math.MinInt64-b.units) {
		return a, fmt.Errorf("%s + %s: %w", a, b, ErrAmountOverflow)
	}
	return Amount{units: a.units + b.units}, nil
}

// Sub returns a-b, or ErrAmountOverflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	if (b.units < 0 && a.units > math.MaxInt64+b.units) || (b.units > 0 && a.units < math.MinInt64+b.units) {
		return a, fmt.Errorf("%s - %s: %w", a, b, ErrAmountOverflow)
	}
	return Amount{units: a.units - b.units}, nil
}

// Money converts the amount into a money value of the given currency, rounded
// half away from zero to the currency's fraction. It is meant for display only.
func (a Amount) Money(currency string) *money.Money {
	m := money.New(0, currency)
	frac := int32(m.Currency().Fraction)
	minor := a.Decimal().Round(frac).Shift(frac).IntPart()
	return money.New(minor, currency)
}

// MarshalJSON renders the amount as a bare JSON number with Scale fractional digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both a JSON number and a JSON string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
