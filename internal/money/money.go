// Package money represents rupee amounts as integer paise so that tax
// arithmetic is exact and repeatable. Amounts convert to decimal rupees
// only at the API and presentation boundaries.
package money

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value in paise (1/100 rupee).
type Amount int64

// FromRupees converts a decimal rupee value to paise, rounding half away
// from zero.
func FromRupees(r float64) Amount {
	return Amount(math.Round(r * 100))
}

// Rupees returns the amount as a decimal rupee value.
func (a Amount) Rupees() float64 {
	return float64(a) / 100
}

// Scale multiplies the amount by a factor (e.g. a quantity) and rounds to
// the nearest paisa.
func (a Amount) Scale(factor float64) Amount {
	return Amount(math.Round(float64(a) * factor))
}

// Percent returns pct percent of the amount, rounded to the nearest paisa.
func (a Amount) Percent(pct float64) Amount {
	return Amount(math.Round(float64(a) * pct / 100))
}

// String renders the amount as plain decimal rupees, e.g. "236.00".
func (a Amount) String() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON encodes the amount as a decimal rupee number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a decimal rupee number and stores paise.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("money: parse %q: %w", s, err)
	}
	*a = FromRupees(f)
	return nil
}

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Display renders the amount with Indian digit grouping, e.g. "1,23,456.78".
func (a Amount) Display() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	s := inPrinter.Sprintf("%d", v/100) + fmt.Sprintf(".%02d", v%100)
	if neg {
		return "-" + s
	}
	return s
}
