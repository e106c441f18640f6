package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ledgerline/ledgerline/internal/domain/registration"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
)

// InMemoryRegistrationStore implements registration.Repository.
// CreateBulkErr, when set, makes CreateBulk fail without storing any
// record; tests use it to exercise rollback behaviour.
type InMemoryRegistrationStore struct {
	*InMemoryStore[*registration.RegistrationRecord]

	mu            sync.Mutex
	CreateBulkErr error
}

// NewInMemoryRegistrationStore creates a new in-memory registration store
func NewInMemoryRegistrationStore() *InMemoryRegistrationStore {
	return &InMemoryRegistrationStore{
		InMemoryStore: NewInMemoryStore[*registration.RegistrationRecord](),
	}
}

func copyRecord(record *registration.RegistrationRecord) *registration.RegistrationRecord {
	if record == nil {
		return nil
	}
	copied := *record
	return &copied
}

func (s *InMemoryRegistrationStore) Create(ctx context.Context, record *registration.RegistrationRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, record.ID, copyRecord(record))
}

func (s *InMemoryRegistrationStore) CreateBulk(ctx context.Context, records []*registration.RegistrationRecord) error {
	s.mu.Lock()
	if s.CreateBulkErr != nil {
		err := s.CreateBulkErr
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}
	for _, record := range records {
		if err := s.InMemoryStore.Create(ctx, record.ID, copyRecord(record)); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryRegistrationStore) Get(ctx context.Context, id string) (*registration.RegistrationRecord, error) {
	record, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("registration record not found").
			WithHintf("No registration record with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyRecord(record), nil
}

func registrationFilterFn(ctx context.Context, record *registration.RegistrationRecord, filter interface{}) bool {
	f, ok := filter.(*types.RegistrationFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.InvoiceLineIDs) > 0 {
		for _, id := range f.InvoiceLineIDs {
			if id == record.InvoiceLineID {
				return true
			}
		}
		return false
	}
	return true
}

func registrationSortFn(i, j *registration.RegistrationRecord) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return strings.Compare(i.ID, j.ID) < 0
	}
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryRegistrationStore) List(ctx context.Context, filter *types.RegistrationFilter) ([]*registration.RegistrationRecord, error) {
	records, err := s.InMemoryStore.List(ctx, filter, registrationFilterFn, registrationSortFn)
	if err != nil {
		return nil, err
	}

	result := make([]*registration.RegistrationRecord, len(records))
	for i, record := range records {
		result[i] = copyRecord(record)
	}
	return result, nil
}
