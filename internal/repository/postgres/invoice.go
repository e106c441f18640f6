package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/types"
)

const insertInvoiceQuery = `
INSERT INTO invoices (
	id, invoice_number, supplier_id, supplier_name, total_amount, total_vat,
	currency, invoice_type, status, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :invoice_number, :supplier_id, :supplier_name, :total_amount, :total_vat,
	:currency, :invoice_type, :status, :created_at, :updated_at, :created_by, :updated_by
)`

const insertLineQuery = `
INSERT INTO invoice_lines (
	id, invoice_id, description, quantity, unit_price, estimated_cost,
	actual_cost, estimated_vat, actual_vat, currency, supplier_id,
	supplier_name, part_number, booking_number, confirmation_number,
	departure_date, payment_status, fully_invoiced, invoice_type,
	status, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :invoice_id, :description, :quantity, :unit_price, :estimated_cost,
	:actual_cost, :estimated_vat, :actual_vat, :currency, :supplier_id,
	:supplier_name, :part_number, :booking_number, :confirmation_number,
	:departure_date, :payment_status, :fully_invoiced, :invoice_type,
	:status, :created_at, :updated_at, :created_by, :updated_by
)`

type invoiceRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewInvoiceRepository creates a postgres backed invoice repository
func NewInvoiceRepository(db *sqlx.DB, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, log: log}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(err, "could not begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertInvoiceQuery, inv); err != nil {
		return dbErr(err, "could not insert invoice")
	}

	for _, line := range inv.LineItems {
		if _, err := tx.NamedExecContext(ctx, insertLineQuery, line); err != nil {
			return dbErr(err, "could not insert invoice line")
		}
	}

	if err := tx.Commit(); err != nil {
		return dbErr(err, "could not commit invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.GetContext(ctx, &inv,
		`SELECT * FROM invoices WHERE id = $1 AND status != $2`, id, types.StatusDeleted)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("invoice not found").
			WithHintf("No invoice with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, dbErr(err, "could not load invoice")
	}

	err = r.db.SelectContext(ctx, &inv.LineItems,
		`SELECT * FROM invoice_lines WHERE invoice_id = $1 AND status != $2 ORDER BY created_at`,
		id, types.StatusDeleted)
	if err != nil {
		return nil, dbErr(err, "could not load invoice lines")
	}

	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(err, "could not begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		UPDATE invoices SET
			invoice_number = :invoice_number,
			supplier_id = :supplier_id,
			supplier_name = :supplier_name,
			total_amount = :total_amount,
			total_vat = :total_vat,
			currency = :currency,
			invoice_type = :invoice_type,
			updated_at = now(),
			updated_by = :updated_by
		WHERE id = :id`, inv)
	if err != nil {
		return dbErr(err, "could not update invoice")
	}

	for _, line := range inv.LineItems {
		_, err = tx.NamedExecContext(ctx, `
			UPDATE invoice_lines SET
				description = :description,
				quantity = :quantity,
				unit_price = :unit_price,
				estimated_cost = :estimated_cost,
				actual_cost = :actual_cost,
				estimated_vat = :estimated_vat,
				actual_vat = :actual_vat,
				payment_status = :payment_status,
				fully_invoiced = :fully_invoiced,
				updated_at = now(),
				updated_by = :updated_by
			WHERE id = :id`, line)
		if err != nil {
			return dbErr(err, "could not update invoice line")
		}
	}

	if err := tx.Commit(); err != nil {
		return dbErr(err, "could not commit invoice update")
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query, args, err := buildInvoiceQuery(
		`SELECT * FROM invoices WHERE status != ?`, filter, true)
	if err != nil {
		return nil, err
	}

	invoices := make([]*invoice.Invoice, 0)
	if err := r.db.SelectContext(ctx, &invoices, r.db.Rebind(query), args...); err != nil {
		return nil, dbErr(err, "could not list invoices")
	}

	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]string, len(invoices))
	byID := make(map[string]*invoice.Invoice, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
		byID[inv.ID] = inv
	}

	lineQuery, lineArgs, err := sqlx.In(
		`SELECT * FROM invoice_lines WHERE invoice_id IN (?) AND status != ? ORDER BY created_at`,
		ids, types.StatusDeleted)
	if err != nil {
		return nil, dbErr(err, "could not build line query")
	}

	var lines []*invoice.LineItem
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(lineQuery), lineArgs...); err != nil {
		return nil, dbErr(err, "could not list invoice lines")
	}

	for _, line := range lines {
		if inv, ok := byID[line.InvoiceID]; ok {
			inv.LineItems = append(inv.LineItems, line)
		}
	}

	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	query, args, err := buildInvoiceQuery(
		`SELECT COUNT(*) FROM invoices WHERE status != ?`, filter, false)
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, dbErr(err, "could not count invoices")
	}
	return count, nil
}

func buildInvoiceQuery(base string, filter *types.InvoiceFilter, paginate bool) (string, []interface{}, error) {
	query := base
	args := []interface{}{types.StatusDeleted}

	if filter != nil {
		if len(filter.InvoiceIDs) > 0 {
			query += ` AND id IN (?)`
			args = append(args, filter.InvoiceIDs)
		}
		if filter.InvoiceType != nil {
			query += ` AND invoice_type = ?`
			args = append(args, *filter.InvoiceType)
		}
		if filter.SupplierID != nil {
			query += ` AND supplier_id = ?`
			args = append(args, *filter.SupplierID)
		}
	}

	if paginate {
		query += ` ORDER BY created_at DESC`
		if filter != nil && filter.Limit > 0 {
			query += ` LIMIT ? OFFSET ?`
			args = append(args, filter.Limit, filter.Offset)
		}
	}

	return sqlx.In(query, args...)
}

func dbErr(err error, hint string) error {
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
