package organisations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

const orgColumns = `id, user_id, name, trade_name, gstin, pan, address, city, state, state_code, pincode,
phone, email, logo_url, bank_name, bank_branch, account_holder_name, account_number, ifsc, upi,
authorized_signatory, signature_url, company_seal_url, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanOrganisation(row pgx.Row) (Organisation, error) {
	var o Organisation
	err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.TradeName, &o.GSTIN, &o.PAN, &o.Address, &o.City,
		&o.State, &o.StateCode, &o.Pincode, &o.Phone, &o.Email, &o.LogoURL, &o.BankName, &o.BankBranch,
		&o.AccountHolderName, &o.AccountNumber, &o.IFSC, &o.UPI, &o.AuthorizedSignatory,
		&o.SignatureURL, &o.CompanySealURL, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organisation{}, fmt.Errorf("%w: organisation", httpx.ErrNotFound)
	}
	return o, err
}

// Create inserts an organisation. A duplicate GSTIN maps to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, org Organisation) (Organisation, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO organisations
(user_id, name, trade_name, gstin, pan, address, city, state, state_code, pincode, phone, email,
logo_url, bank_name, bank_branch, account_holder_name, account_number, ifsc, upi,
authorized_signatory, signature_url, company_seal_url)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
RETURNING `+orgColumns,
		org.UserID, org.Name, org.TradeName, org.GSTIN, org.PAN, org.Address, org.City, org.State,
		org.StateCode, org.Pincode, org.Phone, org.Email, org.LogoURL, org.BankName, org.BankBranch,
		org.AccountHolderName, org.AccountNumber, org.IFSC, org.UPI, org.AuthorizedSignatory,
		org.SignatureURL, org.CompanySealURL)
	created, err := scanOrganisation(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Organisation{}, fmt.Errorf("%w: gstin already registered with another organisation", httpx.ErrDuplicate)
		}
		return Organisation{}, err
	}
	return created, nil
}

// CountForUser returns the number of organisations owned by the user.
func (r *Repository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organisations WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// ListForUser returns organisations owned by the user, oldest first.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Organisation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organisations WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orgs []Organisation
	for rows.Next() {
		o, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// GetForUser retrieves one organisation owned by the user.
func (r *Repository) GetForUser(ctx context.Context, id, userID int64) (Organisation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organisations WHERE id = $1 AND user_id = $2`, id, userID)
	return scanOrganisation(row)
}

// DefaultForUser returns the user's oldest organisation.
func (r *Repository) DefaultForUser(ctx context.Context, userID int64) (Organisation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organisations WHERE user_id = $1 ORDER BY created_at LIMIT 1`, userID)
	return scanOrganisation(row)
}

// Update applies column updates to an organisation owned by the user.
func (r *Repository) Update(ctx context.Context, id, userID int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+2)
	i := 1
	for column, value := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE organisations SET %s WHERE id = $%d AND user_id = $%d", strings.Join(sets, ", "), i, i+1)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: organisation", httpx.ErrNotFound)
	}
	return nil
}
