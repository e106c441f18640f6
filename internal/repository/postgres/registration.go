package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/types"
)

const insertRegistrationQuery = `
INSERT INTO supplier_invoice_lines (
	id, invoice_line_id, actual_cost, actual_vat, currency, description,
	supplier_name, status, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :invoice_line_id, :actual_cost, :actual_vat, :currency, :description,
	:supplier_name, :status, :created_at, :updated_at, :created_by, :updated_by
)`

type registrationRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewRegistrationRepository creates a postgres backed registration
// repository. Records are append only; there is no update or delete.
func NewRegistrationRepository(db *sqlx.DB, log *logger.Logger) registration.Repository {
	return &registrationRepository{db: db, log: log}
}

func (r *registrationRepository) Create(ctx context.Context, record *registration.RegistrationRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if _, err := r.db.NamedExecContext(ctx, insertRegistrationQuery, record); err != nil {
		return dbErr(err, "could not insert registration record")
	}
	return nil
}

// CreateBulk inserts the batch in one transaction so either every record
// commits or none do.
func (r *registrationRepository) CreateBulk(ctx context.Context, records []*registration.RegistrationRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(err, "could not begin transaction")
	}
	defer tx.Rollback()

	for _, record := range records {
		if _, err := tx.NamedExecContext(ctx, insertRegistrationQuery, record); err != nil {
			return dbErr(err, "could not insert registration record")
		}
	}

	if err := tx.Commit(); err != nil {
		return dbErr(err, "could not commit registration batch")
	}

	r.log.Debugw("inserted registration records", "count", len(records))
	return nil
}

func (r *registrationRepository) Get(ctx context.Context, id string) (*registration.RegistrationRecord, error) {
	var record registration.RegistrationRecord
	err := r.db.GetContext(ctx, &record,
		`SELECT * FROM supplier_invoice_lines WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("registration record not found").
			WithHintf("No registration record with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, dbErr(err, "could not load registration record")
	}
	return &record, nil
}

func (r *registrationRepository) List(ctx context.Context, filter *types.RegistrationFilter) ([]*registration.RegistrationRecord, error) {
	query := `SELECT * FROM supplier_invoice_lines WHERE 1=1`
	args := []interface{}{}

	if filter != nil && len(filter.InvoiceLineIDs) > 0 {
		query += ` AND invoice_line_id IN (?)`
		args = append(args, filter.InvoiceLineIDs)
	}

	query += ` ORDER BY created_at`

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, dbErr(err, "could not build registration query")
	}

	records := make([]*registration.RegistrationRecord, 0)
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(expanded), expandedArgs...); err != nil {
		return nil, dbErr(err, "could not list registration records")
	}

	return records, nil
}
