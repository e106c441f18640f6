package dto

import (
	"context"

	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/ledgerline/ledgerline/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateInvoiceLineRequest is one authored line on a new invoice
type CreateInvoiceLineRequest struct {
	Description        string           `json:"description" validate:"required"`
	Quantity           int64            `json:"quantity" validate:"required,min=1"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	EstimatedVAT       *decimal.Decimal `json:"estimated_vat,omitempty"`
	Currency           string           `json:"currency"`
	SupplierID         string           `json:"supplier_id"`
	SupplierName       string           `json:"supplier_name"`
	PartNumber         string           `json:"part_number"`
	BookingNumber      string           `json:"booking_number"`
	ConfirmationNumber string           `json:"confirmation_number"`
	DepartureDate      string           `json:"departure_date"`
}

// CreateInvoiceRequest creates a supplier invoice with its lines
type CreateInvoiceRequest struct {
	InvoiceNumber string                      `json:"invoice_number"`
	SupplierID    string                      `json:"supplier_id" validate:"required"`
	SupplierName  string                      `json:"supplier_name" validate:"required"`
	Currency      string                      `json:"currency"`
	InvoiceType   types.InvoiceType           `json:"invoice_type"`
	Lines         []*CreateInvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// Validate validates the create invoice request
func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.InvoiceType != "" {
		if err := r.InvoiceType.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("Invalid invoice type").
				Mark(ierr.ErrValidation)
		}
	}

	for _, line := range r.Lines {
		if line.UnitPrice.IsNegative() {
			return ierr.NewError("invalid unit price").
				WithHint("Unit price must be non negative").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ToInvoice converts the request to a domain invoice with generated ids
// and recalculated totals
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	invoiceType := r.InvoiceType
	if invoiceType == "" {
		if len(r.Lines) > 1 {
			invoiceType = types.InvoiceTypeMulti
		} else {
			invoiceType = types.InvoiceTypeSingle
		}
	}

	currency := r.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}

	invoiceNumber := r.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE)
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: invoiceNumber,
		SupplierID:    r.SupplierID,
		SupplierName:  r.SupplierName,
		Currency:      currency,
		InvoiceType:   invoiceType,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	for _, lr := range r.Lines {
		lineCurrency := lr.Currency
		if lineCurrency == "" {
			lineCurrency = currency
		}

		line := &invoice.LineItem{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			InvoiceID:          inv.ID,
			Description:        lr.Description,
			Quantity:           lr.Quantity,
			UnitPrice:          lr.UnitPrice,
			EstimatedVAT:       lr.EstimatedVAT,
			Currency:           lineCurrency,
			SupplierID:         lr.SupplierID,
			SupplierName:       lr.SupplierName,
			PartNumber:         lr.PartNumber,
			BookingNumber:      lr.BookingNumber,
			ConfirmationNumber: lr.ConfirmationNumber,
			DepartureDate:      lr.DepartureDate,
			PaymentStatus:      types.PaymentStatusUnpaid,
			InvoiceType:        invoiceType,
			BaseModel:          types.GetDefaultBaseModel(ctx),
		}
		if line.SupplierID == "" {
			line.SupplierID = r.SupplierID
		}
		if line.SupplierName == "" {
			line.SupplierName = r.SupplierName
		}
		line.Recalculate()
		inv.LineItems = append(inv.LineItems, line)
	}

	inv.RecalculateTotals()
	return inv
}

// InvoiceResponse wraps a domain invoice
type InvoiceResponse struct {
	*invoice.Invoice
}

// NewInvoiceResponse creates a new invoice response
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse is the paginated invoice list
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}
