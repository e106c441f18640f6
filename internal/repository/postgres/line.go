package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/types"
)

type lineRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewLineRepository creates a postgres backed standalone line repository
func NewLineRepository(db *sqlx.DB, log *logger.Logger) invoice.LineRepository {
	return &lineRepository{db: db, log: log}
}

// ListEnriched returns lines joined with their invoice context
func (r *lineRepository) ListEnriched(ctx context.Context, filter *types.LineFilter) ([]*invoice.EnrichedLine, error) {
	query := `
		SELECT l.*, i.invoice_number, i.total_amount AS invoice_total_amount
		FROM invoice_lines l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.status != ? AND i.status != ?`
	args := []interface{}{types.StatusDeleted, types.StatusDeleted}

	if filter != nil {
		if filter.SupplierID != nil {
			query += ` AND l.supplier_id = ?`
			args = append(args, *filter.SupplierID)
		}
		if filter.BookingNumber != nil {
			query += ` AND l.booking_number = ?`
			args = append(args, *filter.BookingNumber)
		}
		if len(filter.PaymentStatus) > 0 {
			query += ` AND l.payment_status IN (?)`
			args = append(args, filter.PaymentStatus)
		}
		if filter.Query != "" {
			query += ` AND (l.description ILIKE ? OR l.supplier_name ILIKE ? OR l.part_number ILIKE ?)`
			pattern := "%" + filter.Query + "%"
			args = append(args, pattern, pattern, pattern)
		}
	}

	query += ` ORDER BY l.created_at`

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, dbErr(err, "could not build line query")
	}

	lines := make([]*invoice.EnrichedLine, 0)
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(expanded), expandedArgs...); err != nil {
		return nil, dbErr(err, "could not list enriched lines")
	}

	return lines, nil
}

// UpdatePaymentStatus applies a batch of status transitions in one
// transaction.
func (r *lineRepository) UpdatePaymentStatus(ctx context.Context, updates []types.PaymentStatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dbErr(err, "could not begin transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, update := range updates {
		_, err := tx.ExecContext(ctx,
			`UPDATE invoice_lines SET payment_status = $1, updated_at = $2 WHERE id = $3`,
			update.Status, now, update.LineID)
		if err != nil {
			return dbErr(err, "could not update payment status")
		}
	}

	if err := tx.Commit(); err != nil {
		return dbErr(err, "could not commit payment status updates")
	}

	r.log.Debugw("updated payment status", "count", len(updates))
	return nil
}
