package invoice

import (
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents a supplier invoice with its line items
type Invoice struct {
	ID            string            `db:"id" json:"id"`
	InvoiceNumber string            `db:"invoice_number" json:"invoice_number"`
	SupplierID    string            `db:"supplier_id" json:"supplier_id"`
	SupplierName  string            `db:"supplier_name" json:"supplier_name"`
	TotalAmount   decimal.Decimal   `db:"total_amount" json:"total_amount"`
	TotalVAT      decimal.Decimal   `db:"total_vat" json:"total_vat"`
	Currency      string            `db:"currency" json:"currency"`
	InvoiceType   types.InvoiceType `db:"invoice_type" json:"invoice_type"`
	LineItems     []*LineItem       `json:"line_items,omitempty"`
	types.BaseModel
}

// Validate validates the invoice
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice validation failed").
			WithHint("invoice number is required").
			Mark(ierr.ErrValidation)
	}

	if i.TotalAmount.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("total amount must be non negative").
			Mark(ierr.ErrValidation)
	}

	if i.TotalVAT.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("total vat must be non negative").
			Mark(ierr.ErrValidation)
	}

	if err := i.InvoiceType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("invalid invoice type").
			Mark(ierr.ErrValidation)
	}

	for _, line := range i.LineItems {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// RecalculateTotals resets the invoice totals from its line items'
// estimated costs and VAT. Lines without VAT contribute zero.
func (i *Invoice) RecalculateTotals() {
	total := decimal.Zero
	vat := decimal.Zero
	for _, line := range i.LineItems {
		total = total.Add(line.EstimatedCost)
		if line.EstimatedVAT != nil {
			vat = vat.Add(*line.EstimatedVAT)
		}
	}
	i.TotalAmount = total
	i.TotalVAT = vat
}
