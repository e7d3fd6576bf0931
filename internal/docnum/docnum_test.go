package docnum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "INV-2025-001", Format(KindInvoice, 2025, 1))
	require.Equal(t, "INV-2025-002", Format(KindInvoice, 2025, 2))
	require.Equal(t, "PUR-2025-042", Format(KindPurchase, 2025, 42))
	// Padding widens past three digits instead of truncating.
	require.Equal(t, "INV-2025-1000", Format(KindInvoice, 2025, 1000))
}

func TestParse(t *testing.T) {
	kind, year, seq, err := Parse("INV-2025-007")
	require.NoError(t, err)
	require.Equal(t, KindInvoice, kind)
	require.Equal(t, 2025, year)
	require.Equal(t, 7, seq)

	kind, year, seq, err = Parse("PUR-2024-1234")
	require.NoError(t, err)
	require.Equal(t, KindPurchase, kind)
	require.Equal(t, 2024, year)
	require.Equal(t, 1234, seq)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, number := range []string{"", "INV-2025", "INV-2025-", "INV-abcd-001", "INV-2025-000", "INV-2025-x1", "INV-2025-001-extra"} {
		_, _, _, err := Parse(number)
		require.ErrorIs(t, err, ErrMalformed, number)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for seq := 1; seq <= 1100; seq += 37 {
		number := Format(KindInvoice, 2026, seq)
		kind, year, parsed, err := Parse(number)
		require.NoError(t, err)
		require.Equal(t, KindInvoice, kind)
		require.Equal(t, 2026, year)
		require.Equal(t, seq, parsed)
	}
}
