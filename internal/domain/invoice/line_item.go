package invoice

import (
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem represents one billable item on a supplier invoice, the unit
// of reconciliation.
type LineItem struct {
	ID          string          `db:"id" json:"id"`
	InvoiceID   string          `db:"invoice_id" json:"invoice_id"`
	Description string          `db:"description" json:"description"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`

	// EstimatedCost is always quantity x unit price. It is recomputed on
	// every quantity or unit price change; manual edits are overwritten.
	EstimatedCost decimal.Decimal  `db:"estimated_cost" json:"estimated_cost"`
	ActualCost    *decimal.Decimal `db:"actual_cost" json:"actual_cost,omitempty"`
	EstimatedVAT  *decimal.Decimal `db:"estimated_vat" json:"estimated_vat,omitempty"`
	ActualVAT     *decimal.Decimal `db:"actual_vat" json:"actual_vat,omitempty"`
	Currency      string           `db:"currency" json:"currency"`

	SupplierID   string `db:"supplier_id" json:"supplier_id"`
	SupplierName string `db:"supplier_name" json:"supplier_name"`
	PartNumber   string `db:"part_number" json:"part_number"`

	// Optional correlation keys to an external booking domain
	BookingNumber      string `db:"booking_number" json:"booking_number"`
	ConfirmationNumber string `db:"confirmation_number" json:"confirmation_number"`
	DepartureDate      string `db:"departure_date" json:"departure_date"`

	PaymentStatus types.PaymentStatus `db:"payment_status" json:"payment_status"`
	FullyInvoiced bool                `db:"fully_invoiced" json:"fully_invoiced"`
	InvoiceType   types.InvoiceType   `db:"invoice_type" json:"invoice_type"`
	types.BaseModel
}

// Recalculate resets the estimated cost to quantity x unit price
func (l *LineItem) Recalculate() {
	l.EstimatedCost = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// ActualCostOrZero returns the actual cost, coercing nil to zero
func (l *LineItem) ActualCostOrZero() decimal.Decimal {
	if l.ActualCost == nil {
		return decimal.Zero
	}
	return *l.ActualCost
}

// ActualVATOrZero returns the actual VAT, coercing nil to zero
func (l *LineItem) ActualVATOrZero() decimal.Decimal {
	if l.ActualVAT == nil {
		return decimal.Zero
	}
	return *l.ActualVAT
}

// Validate validates the line item
func (l *LineItem) Validate() error {
	if l.Quantity < 1 {
		return ierr.NewError("line item validation failed").
			WithHint("quantity must be at least 1").
			Mark(ierr.ErrValidation)
	}

	if l.UnitPrice.IsNegative() {
		return ierr.NewError("line item validation failed").
			WithHint("unit price must be non negative").
			Mark(ierr.ErrValidation)
	}

	if l.ActualCost != nil && l.ActualCost.IsNegative() {
		return ierr.NewError("line item validation failed").
			WithHint("actual cost must be non negative").
			Mark(ierr.ErrValidation)
	}

	if l.PaymentStatus != "" {
		if err := l.PaymentStatus.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("invalid payment status").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}
