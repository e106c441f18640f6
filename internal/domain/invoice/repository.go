package invoice

import (
	"context"

	"github.com/ledgerline/ledgerline/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice together with its line items
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID including its line items
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice and its line items
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}

// LineRepository defines the interface for the standalone line repository:
// enriched lines across all invoices plus payment status updates.
type LineRepository interface {
	// ListEnriched retrieves enriched lines based on filter criteria
	ListEnriched(ctx context.Context, filter *types.LineFilter) ([]*EnrichedLine, error)

	// UpdatePaymentStatus applies a batch of payment status transitions
	UpdatePaymentStatus(ctx context.Context, updates []types.PaymentStatusUpdate) error
}
