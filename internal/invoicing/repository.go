package invoicing

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

// Repository persists invoices in PostgreSQL. All money columns are BIGINT
// paise.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, organisation_id, customer_id, customer_name, number, invoice_date, due_date, status,
	interstate, place_of_supply, subtotal, cgst, sgst, igst, total_tax,
	delivery_charge, packing_charge, other_charge, total, balance_amount,
	notes, transport_mode, vehicle_number, lr_number, eway_bill_number, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.OrganisationID, &inv.CustomerID, &inv.CustomerName, &inv.Number,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status,
		&inv.Interstate, &inv.PlaceOfSupply, &inv.Subtotal, &inv.CGST, &inv.SGST, &inv.IGST, &inv.TotalTax,
		&inv.DeliveryCharge, &inv.PackingCharge, &inv.OtherCharge, &inv.Total, &inv.Balance,
		&inv.Notes, &inv.TransportMode, &inv.VehicleNumber, &inv.LRNumber, &inv.EwayBillNumber, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

const itemColumns = `id, invoice_id, product_id, description, hsn_sac, quantity, unit, rate, discount, tax_rate,
	amount, cgst, sgst, igst, tax_amount`

func scanItem(row pgx.Row) (LineItem, error) {
	var it LineItem
	err := row.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Description, &it.HSNSAC, &it.Quantity, &it.Unit,
		&it.Rate, &it.Discount, &it.TaxRate, &it.Amount, &it.CGST, &it.SGST, &it.IGST, &it.TaxAmount)
	return it, err
}

// Create allocates the next invoice number and inserts the invoice with its
// lines in one transaction.
func (r *Repository) Create(ctx context.Context, invoice Invoice, items []LineItem) (Invoice, error) {
	var created Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := docnum.NextInTx(ctx, tx, invoice.OrganisationID, docnum.KindInvoice, invoice.InvoiceDate.Year())
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO invoices (organisation_id, customer_id, customer_name, number, invoice_date, due_date, status,
				interstate, place_of_supply, subtotal, cgst, sgst, igst, total_tax,
				delivery_charge, packing_charge, other_charge, total, balance_amount,
				notes, transport_mode, vehicle_number, lr_number, eway_bill_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
			RETURNING `+invoiceColumns,
			invoice.OrganisationID, invoice.CustomerID, invoice.CustomerName, number, invoice.InvoiceDate, invoice.DueDate, invoice.Status,
			invoice.Interstate, invoice.PlaceOfSupply, int64(invoice.Subtotal), int64(invoice.CGST), int64(invoice.SGST), int64(invoice.IGST), int64(invoice.TotalTax),
			int64(invoice.DeliveryCharge), int64(invoice.PackingCharge), int64(invoice.OtherCharge), int64(invoice.Total), int64(invoice.Balance),
			invoice.Notes, invoice.TransportMode, invoice.VehicleNumber, invoice.LRNumber, invoice.EwayBillNumber)
		created, err = scanInvoice(row)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		for _, it := range items {
			row := tx.QueryRow(ctx, `
				INSERT INTO invoice_items (invoice_id, product_id, description, hsn_sac, quantity, unit, rate, discount, tax_rate,
					amount, cgst, sgst, igst, tax_amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				RETURNING `+itemColumns,
				created.ID, it.ProductID, it.Description, it.HSNSAC, it.Quantity, it.Unit,
				int64(it.Rate), int64(it.Discount), it.TaxRate,
				int64(it.Amount), int64(it.CGST), int64(it.SGST), int64(it.IGST), int64(it.TaxAmount))
			saved, err := scanItem(row)
			if err != nil {
				return fmt.Errorf("insert invoice item: %w", err)
			}
			created.Items = append(created.Items, saved)
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return created, nil
}

// ListForOrganisation returns invoices without their lines, newest first.
func (r *Repository) ListForOrganisation(ctx context.Context, organisationID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE organisation_id = $1
		ORDER BY invoice_date DESC, id DESC`, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetForOrganisation loads one invoice with its lines.
func (r *Repository) GetForOrganisation(ctx context.Context, id, organisationID int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND organisation_id = $2`, id, organisationID)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("%w: invoice", httpx.ErrNotFound)
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("get invoice: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id`, inv.ID)
	if err != nil {
		return Invoice{}, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return Invoice{}, fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	return inv, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id, organisationID int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET status = $1, updated_at = NOW()
		WHERE id = $2 AND organisation_id = $3`, status, id, organisationID)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice", httpx.ErrNotFound)
	}
	return nil
}

// RecordPayment decrements the balance and marks the invoice paid when it
// reaches zero. The balance guard keeps a payment racing another one from
// driving the balance negative; when it fires the invoice still exists, so
// the zero-rows case is disambiguated with a follow-up read.
func (r *Repository) RecordPayment(ctx context.Context, id, organisationID int64, amount int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
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
			SELECT balance_amount FROM invoices
			WHERE id = $1 AND organisation_id = $2`, id, organisationID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: invoice", httpx.ErrNotFound)
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
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND organisation_id = $2`, id, organisationID)
		if err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: invoice", httpx.ErrNotFound)
		}
		return nil
	})
}
