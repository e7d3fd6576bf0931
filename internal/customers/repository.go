package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Repository persists customers and their addresses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, organisation_id, name, gstin, email, phone, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.OrganisationID, &c.Name, &c.GSTIN, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const addressColumns = `id, customer_id, type, line1, line2, city, state, pincode, country, is_default, is_shipping, created_at`

func scanAddress(row pgx.Row) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Line1, &a.Line2, &a.City, &a.State, &a.Pincode, &a.Country, &a.IsDefault, &a.IsShipping, &a.CreatedAt)
	return a, err
}

// CreateWithAddresses inserts the customer and its addresses in one
// transaction.
func (r *Repository) CreateWithAddresses(ctx context.Context, customer Customer, addresses []Address) (Customer, error) {
	var created Customer
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO customers (organisation_id, name, gstin, email, phone)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+customerColumns,
			customer.OrganisationID, customer.Name, customer.GSTIN, customer.Email, customer.Phone)
		var err error
		created, err = scanCustomer(row)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		for _, a := range addresses {
			row := tx.QueryRow(ctx, `
				INSERT INTO customer_addresses (customer_id, type, line1, line2, city, state, pincode, country, is_default, is_shipping)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING `+addressColumns,
				created.ID, a.Type, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.Country, a.IsDefault, a.IsShipping)
			saved, err := scanAddress(row)
			if err != nil {
				return fmt.Errorf("insert address: %w", err)
			}
			created.Addresses = append(created.Addresses, saved)
		}
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	return created, nil
}

// ListForOrganisation returns the organisation's customers with addresses.
func (r *Repository) ListForOrganisation(ctx context.Context, organisationID int64) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE organisation_id = $1
		ORDER BY name, id`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	index := make(map[int64]int)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	addrRows, err := r.pool.Query(ctx, `
		SELECT `+addressColumns+`
		FROM customer_addresses
		WHERE customer_id IN (SELECT id FROM customers WHERE organisation_id = $1)
		ORDER BY customer_id, id`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer addrRows.Close()
	for addrRows.Next() {
		a, err := scanAddress(addrRows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		if i, ok := index[a.CustomerID]; ok {
			out[i].Addresses = append(out[i].Addresses, a)
		}
	}
	return out, addrRows.Err()
}

// GetForOrganisation loads one customer with addresses, scoped to the
// organisation.
func (r *Repository) GetForOrganisation(ctx context.Context, id, organisationID int64) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1 AND organisation_id = $2`, id, organisationID)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, fmt.Errorf("%w: customer", httpx.ErrNotFound)
	}
	if err != nil {
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+addressColumns+`
		FROM customer_addresses
		WHERE customer_id = $1
		ORDER BY id`, c.ID)
	if err != nil {
		return Customer{}, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return Customer{}, fmt.Errorf("scan address: %w", err)
		}
		c.Addresses = append(c.Addresses, a)
	}
	return c, rows.Err()
}

// SetShippingAddress marks the address as shipping and clears the flag on
// the customer's other addresses.
func (r *Repository) SetShippingAddress(ctx context.Context, customerID, addressID, organisationID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var owner int64
		err := tx.QueryRow(ctx, `
			SELECT c.id
			FROM customers c
			JOIN customer_addresses a ON a.customer_id = c.id
			WHERE c.id = $1 AND a.id = $2 AND c.organisation_id = $3`,
			customerID, addressID, organisationID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: address", httpx.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("check address: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE customer_addresses SET is_shipping = FALSE
			WHERE customer_id = $1 AND id <> $2`, customerID, addressID); err != nil {
			return fmt.Errorf("clear shipping flags: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE customer_addresses SET is_shipping = TRUE
			WHERE id = $1`, addressID); err != nil {
			return fmt.Errorf("set shipping flag: %w", err)
		}
		return nil
	})
}
