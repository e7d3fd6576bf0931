package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Repository persists suppliers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const supplierColumns = `id, organisation_id, name, gstin, email, phone, address, city, state, pincode, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.OrganisationID, &s.Name, &s.GSTIN, &s.Email, &s.Phone, &s.Address, &s.City, &s.State, &s.Pincode, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *Repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (organisation_id, name, gstin, email, phone, address, city, state, pincode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+supplierColumns,
		supplier.OrganisationID, supplier.Name, supplier.GSTIN, supplier.Email, supplier.Phone,
		supplier.Address, supplier.City, supplier.State, supplier.Pincode)
	created, err := scanSupplier(row)
	if err != nil {
		return Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return created, nil
}

func (r *Repository) ListForOrganisation(ctx context.Context, organisationID int64) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE organisation_id = $1
		ORDER BY name, id`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetForOrganisation(ctx context.Context, id, organisationID int64) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE id = $1 AND organisation_id = $2`, id, organisationID)
	s, err := scanSupplier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *Repository) Update(ctx context.Context, id, organisationID int64, updates map[string]any) error {
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
	args = append(args, id, organisationID)

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(
		"UPDATE suppliers SET %s WHERE id = $%d AND organisation_id = $%d",
		strings.Join(sets, ", "), i, i+1), args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	return nil
}
