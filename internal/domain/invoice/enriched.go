package invoice

import (
	"github.com/shopspring/decimal"
)

// EnrichedLine is a line item flattened out of its invoice with the
// invoice level context attached. This is the shape the reconciliation
// engine and the line search operate on.
type EnrichedLine struct {
	LineItem

	InvoiceNumber      string          `db:"invoice_number" json:"invoice_number"`
	InvoiceTotalAmount decimal.Decimal `db:"invoice_total_amount" json:"invoice_total_amount"`

	// DisplayBookingNumber is the booking number shown to the user: the
	// real one when present, otherwise a placeholder derived from the
	// line id. The raw BookingNumber stays empty in that case.
	DisplayBookingNumber string `json:"display_booking_number"`

	// RegisteredActualCost is the sum of all registration records that
	// reference this line. Derived, never persisted on the line itself.
	RegisteredActualCost decimal.Decimal `json:"registered_actual_cost"`

	// Selected is ephemeral UI session state
	Selected bool `json:"selected"`
}
