package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Repository persists products in PostgreSQL. Price is stored in paise as
// BIGINT.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, organisation_id, name, description, sku, hsn_code, sac_code, unit, price, tax_rate, currency, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.OrganisationID, &p.Name, &p.Description, &p.SKU, &p.HSNCode, &p.SACCode, &p.Unit, &p.Price, &p.TaxRate, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) Create(ctx context.Context, product Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (organisation_id, name, description, sku, hsn_code, sac_code, unit, price, tax_rate, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		product.OrganisationID, product.Name, product.Description, product.SKU, product.HSNCode,
		product.SACCode, product.Unit, int64(product.Price), product.TaxRate, product.Currency)
	created, err := scanProduct(row)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *Repository) ListForOrganisation(ctx context.Context, organisationID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE organisation_id = $1
		ORDER BY name, id`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) GetForOrganisation(ctx context.Context, id, organisationID int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND organisation_id = $2`, id, organisationID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
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
		"UPDATE products SET %s WHERE id = $%d AND organisation_id = $%d",
		strings.Join(sets, ", "), i, i+1), args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return nil
}
