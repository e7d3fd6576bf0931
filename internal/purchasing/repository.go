package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/docnum"
	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Repository persists purchases in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const purchaseColumns = `id, organisation_id, supplier_id, supplier_name, number, bill_number, purchase_date, status,
	interstate, subtotal, cgst, sgst, igst, total_tax, other_charge, total, balance_amount,
	notes, created_at, updated_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.OrganisationID, &p.SupplierID, &p.SupplierName, &p.Number, &p.BillNumber,
		&p.PurchaseDate, &p.Status, &p.Interstate, &p.Subtotal, &p.CGST, &p.SGST, &p.IGST, &p.TotalTax,
		&p.OtherCharge, &p.Total, &p.Balance, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const itemColumns = `id, purchase_id, product_id, description, hsn_sac, quantity, unit, rate, discount, tax_rate,
	amount, cgst, sgst, igst, tax_amount`

func scanItem(row pgx.Row) (LineItem, error) {
	var it LineItem
	err := row.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Description, &it.HSNSAC, &it.Quantity, &it.Unit,
		&it.Rate, &it.Discount, &it.TaxRate, &it.Amount, &it.CGST, &it.SGST, &it.IGST, &it.TaxAmount)
	return it, err
}

// Create allocates the next purchase number and inserts the purchase with
// its lines in one transaction.
func (r *Repository) Create(ctx context.Context, purchase Purchase, items []LineItem) (Purchase, error) {
	var created Purchase
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := docnum.NextInTx(ctx, tx, purchase.OrganisationID, docnum.KindPurchase, purchase.PurchaseDate.Year())
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO purchases (organisation_id, supplier_id, supplier_name, number, bill_number, purchase_date, status,
				interstate, subtotal, cgst, sgst, igst, total_tax, other_charge, total, balance_amount, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING `+purchaseColumns,
			purchase.OrganisationID, purchase.SupplierID, purchase.SupplierName, number, purchase.BillNumber,
			purchase.PurchaseDate, purchase.Status, purchase.Interstate,
			int64(purchase.Subtotal), int64(purchase.CGST), int64(purchase.SGST), int64(purchase.IGST), int64(purchase.TotalTax),
			int64(purchase.OtherCharge), int64(purchase.Total), int64(purchase.Balance), purchase.Notes)
		created, err = scanPurchase(row)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		for _, it := range items {
			row := tx.QueryRow(ctx, `
				INSERT INTO purchase_items (purchase_id, product_id, description, hsn_sac, quantity, unit, rate, discount, tax_rate,
					amount, cgst, sgst, igst, tax_amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				RETURNING `+itemColumns,
				created.ID, it.ProductID, it.Description, it.HSNSAC, it.Quantity, it.Unit,
				int64(it.Rate), int64(it.Discount), it.TaxRate,
				int64(it.Amount), int64(it.CGST), int64(it.SGST), int64(it.IGST), int64(it.TaxAmount))
			saved, err := scanItem(row)
			if err != nil {
				return fmt.Errorf("insert purchase item: %w", err)
			}
			created.Items = append(created.Items, saved)
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	return created, nil
}

// ListForOrganisation returns purchases without their lines, newest first.
func (r *Repository) ListForOrganisation(ctx context.Context, organisationID int64) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE organisation_id = $1
		ORDER BY purchase_date DESC, id DESC`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetForOrganisation loads one purchase with its lines.
func (r *Repository) GetForOrganisation(ctx context.Context, id, organisationID int64) (Purchase, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE id = $1 AND organisation_id = $2`, id, organisationID)
	p, err := scanPurchase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("get purchase: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY id`, p.ID)
	if err != nil {
		return Purchase{}, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return Purchase{}, fmt.Errorf("scan purchase item: %w", err)
		}
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id, organisationID int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE purchases SET status = $1, updated_at = NOW()
		WHERE id = $2 AND organisation_id = $3`, status, id, organisationID)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	return nil
}

// RecordPayment decrements the balance. A zero-rows update can mean the
// purchase is missing or that a concurrent payment already consumed the
// balance; a follow-up read tells the two apart.
func (r *Repository) RecordPayment(ctx context.Context, id, organisationID int64, amount int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE purchases
		SET balance_amount = balance_amount - $1,
		    status = CASE WHEN balance_amount - $1 <= 0 THEN 'PAID' ELSE status END,
		    updated_at = NOW()
		WHERE id = $2 AND organisation_id = $3 AND balance_amount >= $1`,
		amount, id, organisationID)
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var balance int64
		err := r.pool.QueryRow(ctx, `
			SELECT balance_amount FROM purchases
			WHERE id = $1 AND organisation_id = $2`, id, organisationID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		return fmt.Errorf("%w: payment exceeds open balance", httpx.ErrValidation)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, organisationID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, id); err != nil {
			return fmt.Errorf("delete purchase items: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1 AND organisation_id = $2`, id, organisationID)
		if err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
		}
		return nil
	})
}
