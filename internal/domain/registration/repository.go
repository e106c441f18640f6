package registration

import (
	"context"

	"github.com/ledgerline/ledgerline/internal/types"
)

// Repository defines the interface for registration record persistence.
// Records are append only: there is no update or delete.
type Repository interface {
	// Create stores a single registration record
	Create(ctx context.Context, record *RegistrationRecord) error

	// CreateBulk stores a batch of registration records as one logical
	// unit; either all records are committed or none are.
	CreateBulk(ctx context.Context, records []*RegistrationRecord) error

	// Get retrieves a registration record by ID
	Get(ctx context.Context, id string) (*RegistrationRecord, error)

	// List retrieves registration records based on filter criteria
	List(ctx context.Context, filter *types.RegistrationFilter) ([]*RegistrationRecord, error)
}
