package gst

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/money"
)

func TestInterstate(t *testing.T) {
	require.False(t, Interstate("Maharashtra", "Maharashtra"))
	require.True(t, Interstate("Maharashtra", "Karnataka"))
	require.False(t, Interstate("", "Karnataka"))
	require.False(t, Interstate("Maharashtra", ""))
	require.False(t, Interstate("", ""))
	// Comparison is case-sensitive on stored state names.
	require.True(t, Interstate("maharashtra", "Maharashtra"))
}

func TestComputeLineIntrastate(t *testing.T) {
	line, err := ComputeLine(LineInput{
		Quantity: 2,
		Rate:     money.FromRupees(100),
		TaxRate:  18,
	}, false)
	require.NoError(t, err)

	require.Equal(t, money.FromRupees(200), line.Amount)
	require.Equal(t, money.FromRupees(36), line.TaxAmount)
	require.Equal(t, money.FromRupees(18), line.CGST)
	require.Equal(t, money.FromRupees(18), line.SGST)
	require.Equal(t, money.Amount(0), line.IGST)
}

func TestComputeLineInterstate(t *testing.T) {
	line, err := ComputeLine(LineInput{
		Quantity: 2,
		Rate:     money.FromRupees(100),
		TaxRate:  18,
	}, true)
	require.NoError(t, err)

	require.Equal(t, money.FromRupees(200), line.Amount)
	require.Equal(t, money.FromRupees(36), line.IGST)
	require.Equal(t, money.FromRupees(36), line.TaxAmount)
	require.Equal(t, money.Amount(0), line.CGST)
	require.Equal(t, money.Amount(0), line.SGST)
}

func TestComputeLineDiscount(t *testing.T) {
	line, err := ComputeLine(LineInput{
		Quantity: 1,
		Rate:     money.FromRupees(200),
		Discount: money.FromRupees(50),
		TaxRate:  18,
	}, false)
	require.NoError(t, err)
	require.Equal(t, money.FromRupees(150), line.Amount)
	require.Equal(t, money.FromRupees(27), line.TaxAmount)
}

func TestComputeLineRejectsOverDiscount(t *testing.T) {
	// discount=250, quantity=1, rate=200 would yield a negative amount;
	// policy is to reject, not clamp.
	_, err := ComputeLine(LineInput{
		Quantity: 1,
		Rate:     money.FromRupees(200),
		Discount: money.FromRupees(250),
		TaxRate:  18,
	}, false)
	require.ErrorIs(t, err, ErrInvalidLine)
}

func TestComputeLineRejectsBadInputs(t *testing.T) {
	cases := []LineInput{
		{Quantity: 0, Rate: money.FromRupees(10), TaxRate: 18},
		{Quantity: -1, Rate: money.FromRupees(10), TaxRate: 18},
		{Quantity: 1, Rate: money.FromRupees(-10), TaxRate: 18},
		{Quantity: 1, Rate: money.FromRupees(10), Discount: -1, TaxRate: 18},
		{Quantity: 1, Rate: money.FromRupees(10), TaxRate: -5},
		{Quantity: 1, Rate: money.FromRupees(10), TaxRate: 101},
	}
	for _, in := range cases {
		_, err := ComputeLine(in, false)
		require.ErrorIs(t, err, ErrInvalidLine)
	}
}

func TestComputeLineHalvesAlwaysEqual(t *testing.T) {
	// An odd paise tax amount cannot be split evenly; the engine computes
	// each half directly so the halves stay equal.
	line, err := ComputeLine(LineInput{
		Quantity: 1,
		Rate:     money.Amount(101), // 1.01 rupees
		TaxRate:  5,
	}, false)
	require.NoError(t, err)
	require.Equal(t, line.CGST, line.SGST)
	require.Equal(t, line.CGST+line.SGST, line.TaxAmount)
}

func TestComputeLineIdempotent(t *testing.T) {
	in := LineInput{Quantity: 3, Rate: money.FromRupees(99.99), Discount: money.FromRupees(10), TaxRate: 12}
	first, err := ComputeLine(in, false)
	require.NoError(t, err)
	second, err := ComputeLine(in, false)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAggregate(t *testing.T) {
	lines := []Line{
		{Amount: money.FromRupees(200), TaxAmount: money.FromRupees(36), CGST: money.FromRupees(18), SGST: money.FromRupees(18)},
		{Amount: money.FromRupees(100), TaxAmount: money.FromRupees(5), CGST: money.FromRupees(2.5), SGST: money.FromRupees(2.5)},
	}
	totals := Aggregate(lines, Charges{Delivery: money.FromRupees(40), Other: money.FromRupees(10)})

	require.Equal(t, money.FromRupees(300), totals.Subtotal)
	require.Equal(t, money.FromRupees(41), totals.TotalTax)
	require.Equal(t, money.FromRupees(20.5), totals.CGST)
	require.Equal(t, money.FromRupees(20.5), totals.SGST)
	require.Equal(t, money.Amount(0), totals.IGST)
	require.Equal(t, money.FromRupees(391), totals.Total)
	require.Equal(t, totals.Total, totals.Balance)
}

func TestAggregateEmptyCharges(t *testing.T) {
	lines := []Line{{Amount: money.FromRupees(200), TaxAmount: money.FromRupees(36), IGST: money.FromRupees(36)}}
	totals := Aggregate(lines, Charges{})
	require.Equal(t, money.FromRupees(236), totals.Total)
	require.Equal(t, money.FromRupees(36), totals.IGST)
}
