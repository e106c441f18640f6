package registration

import (
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
)

// RegistrationRecord is an immutable, append only record capturing that an
// actual cost and VAT amount was registered against an invoice line at a
// point in time by an actor. A line may carry zero, one or many records;
// their sum is the line's registered actual cost. Over registration is
// allowed and surfaced, not blocked.
type RegistrationRecord struct {
	ID            string          `db:"id" json:"id"`
	InvoiceLineID string          `db:"invoice_line_id" json:"invoice_line_id"`
	ActualCost    decimal.Decimal `db:"actual_cost" json:"actual_cost"`
	ActualVAT     decimal.Decimal `db:"actual_vat" json:"actual_vat"`
	Currency      string          `db:"currency" json:"currency"`
	Description   string          `db:"description" json:"description"`
	SupplierName  string          `db:"supplier_name" json:"supplier_name"`
	types.BaseModel
}

// Batch is the durable output of one registration commit: the records to
// append plus the payment status transitions confirmed alongside them.
type Batch struct {
	Records       []*RegistrationRecord       `json:"records"`
	StatusUpdates []types.PaymentStatusUpdate `json:"status_updates,omitempty"`
}

// Validate validates the registration record
func (r *RegistrationRecord) Validate() error {
	if r.InvoiceLineID == "" {
		return ierr.NewError("registration record validation failed").
			WithHint("invoice line id is required").
			Mark(ierr.ErrValidation)
	}

	if r.ActualCost.IsNegative() {
		return ierr.NewError("registration record validation failed").
			WithHint("actual cost must be non negative").
			Mark(ierr.ErrValidation)
	}

	if r.ActualVAT.IsNegative() {
		return ierr.NewError("registration record validation failed").
			WithHint("actual vat must be non negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}
