// Package docnum produces sequential, year-scoped document numbers of the
// form PREFIX-YYYY-NNN. Sequences are independent per organisation, document
// kind and calendar year; a new year starts back at 001.
package docnum

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Kind identifies an independent numbering sequence.
type Kind string

const (
	// KindInvoice prefixes sales invoice numbers.
	KindInvoice Kind = "INV"
	// KindPurchase prefixes purchase numbers.
	KindPurchase Kind = "PUR"
)

// ErrMalformed indicates a document number that does not match the
// PREFIX-YYYY-NNN layout.
var ErrMalformed = errors.New("docnum: malformed document number")

// Format renders a document number. The sequence is zero-padded to three
// digits and widens naturally once it passes 999.
func Format(kind Kind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", kind, year, seq)
}

// Parse splits a document number into kind, year and sequence.
func Parse(number string) (Kind, int, int, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, number)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, number)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, number)
	}
	return Kind(parts[0]), year, seq, nil
}

// NextInTx atomically allocates the next sequence for the key
// (organisation, kind, year) and returns the formatted number. The upsert is
// a single read-modify-write, so concurrent transactions serialise on the
// counter row and can never observe the same value. It must run inside the
// same transaction that persists the document, so an aborted creation does
// not burn a number for nothing committed.
func NextInTx(ctx context.Context, tx pgx.Tx, organisationID int64, kind Kind, year int) (string, error) {
	var seq int
	err := tx.QueryRow(ctx, `INSERT INTO document_counters (organisation_id, kind, year, last_seq)
VALUES ($1, $2, $3, 1)
ON CONFLICT (organisation_id, kind, year)
DO UPDATE SET last_seq = document_counters.last_seq + 1
RETURNING last_seq`, organisationID, string(kind), year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("docnum: allocate %s sequence: %w", kind, err)
	}
	return Format(kind, year, seq), nil
}
