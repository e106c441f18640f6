package types

import (
	"fmt"

	"github.com/samber/lo"
)

// InvoiceType tags whether an invoice carries a single line or many
type InvoiceType string

const (
	InvoiceTypeSingle InvoiceType = "SINGLE"
	InvoiceTypeMulti  InvoiceType = "MULTI"
)

func (t InvoiceType) String() string {
	return string(t)
}

func (t InvoiceType) Validate() error {
	allowed := []InvoiceType{
		InvoiceTypeSingle,
		InvoiceTypeMulti,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid invoice type: %s", t)
	}
	return nil
}

// InvoiceFilter represents the filter for listing invoices
type InvoiceFilter struct {
	InvoiceIDs  []string     `form:"invoice_ids"`
	InvoiceType *InvoiceType `form:"invoice_type"`
	SupplierID  *string      `form:"supplier_id"`
	Limit       int          `form:"limit"`
	Offset      int          `form:"offset"`
}

// Validate validates the invoice filter
func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.InvoiceType != nil {
		if err := f.InvoiceType.Validate(); err != nil {
			return err
		}
	}
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("limit and offset must be non negative")
	}
	return nil
}

// LineFilter represents the filter for searching invoice lines across
// invoices
type LineFilter struct {
	Query         string          `form:"query"`
	SupplierID    *string         `form:"supplier_id"`
	PaymentStatus []PaymentStatus `form:"payment_status"`
	BookingNumber *string         `form:"booking_number"`
}

// Validate validates the line filter
func (f *LineFilter) Validate() error {
	if f == nil {
		return nil
	}
	for _, status := range f.PaymentStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RegistrationFilter represents the filter for listing registration records
type RegistrationFilter struct {
	InvoiceLineIDs []string `form:"invoice_line_ids"`
}
