// Package gst implements the GST line-tax calculation used by invoice and
// purchase creation: interstate determination, per-line CGST/SGST/IGST
// splitting and document-level totals.
package gst

import (
	"errors"
	"fmt"

	"github.com/invoxa/invoxa/internal/money"
)

// ErrInvalidLine indicates a line item that fails validation. Over-discounted
// lines and out-of-range tax rates are rejected outright, never clamped.
var ErrInvalidLine = errors.New("gst: invalid line item")

// Interstate reports whether a supply between the two states is inter-state.
// States compare as stored, case-sensitive. A missing state on either side
// defaults to intra-state.
func Interstate(orgState, partyState string) bool {
	return orgState != "" && partyState != "" && orgState != partyState
}

// LineInput is one raw line entry as supplied by the caller.
type LineInput struct {
	Quantity float64
	Rate     money.Amount
	Discount money.Amount
	TaxRate  float64
}

// Line is the computed result for one line item. Exactly one of CGST+SGST or
// IGST is non-zero (for a non-zero tax amount), depending on the supply mode.
type Line struct {
	Amount    money.Amount
	TaxAmount money.Amount
	CGST      money.Amount
	SGST      money.Amount
	IGST      money.Amount
}

// Validate checks the raw entry against the engine's input contract.
func (in LineInput) Validate() error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidLine)
	}
	if in.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidLine)
	}
	if in.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", ErrInvalidLine)
	}
	if in.TaxRate < 0 || in.TaxRate > 100 {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidLine)
	}
	if gross := in.Rate.Scale(in.Quantity); in.Discount > gross {
		return fmt.Errorf("%w: discount %s exceeds gross amount %s", ErrInvalidLine, in.Discount, gross)
	}
	return nil
}

// ComputeLine turns a validated entry into its taxable amount and tax split.
// Intra-state supplies compute each half directly so CGST always equals SGST
// to the paisa; inter-state supplies charge the full rate as IGST.
func ComputeLine(in LineInput, interstate bool) (Line, error) {
	if err := in.Validate(); err != nil {
		return Line{}, err
	}

	amount := in.Rate.Scale(in.Quantity) - in.Discount
	line := Line{Amount: amount}
	if interstate {
		line.IGST = amount.Percent(in.TaxRate)
		line.TaxAmount = line.IGST
		return line, nil
	}
	half := amount.Percent(in.TaxRate / 2)
	line.CGST = half
	line.SGST = half
	line.TaxAmount = half + half
	return line, nil
}

// Charges are the optional document-level charge fields. Purchases carry
// only Other.
type Charges struct {
	Delivery money.Amount
	Packing  money.Amount
	Other    money.Amount
}

// Totals are the derived document-level aggregates. Balance equals Total at
// creation time; payments are applied against it later.
type Totals struct {
	Subtotal money.Amount
	TotalTax money.Amount
	CGST     money.Amount
	SGST     money.Amount
	IGST     money.Amount
	Total    money.Amount
	Balance  money.Amount
}

// Aggregate sums computed lines and charges into document totals.
func Aggregate(lines []Line, charges Charges) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.Amount
		t.TotalTax += l.TaxAmount
		t.CGST += l.CGST
		t.SGST += l.SGST
		t.IGST += l.IGST
	}
	t.Total = t.Subtotal + t.TotalTax + charges.Delivery + charges.Packing + charges.Other
	t.Balance = t.Total
	return t
}
