package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/types"
)

// InMemoryLineStore implements invoice.LineRepository. UpdateErr, when
// set, makes UpdatePaymentStatus fail without touching any line; tests
// use it to exercise rollback behaviour.
type InMemoryLineStore struct {
	*InMemoryStore[*invoice.EnrichedLine]

	mu        sync.Mutex
	UpdateErr error
}

// NewInMemoryLineStore creates a new in-memory line store
func NewInMemoryLineStore() *InMemoryLineStore {
	return &InMemoryLineStore{
		InMemoryStore: NewInMemoryStore[*invoice.EnrichedLine](),
	}
}

func copyEnrichedLine(line *invoice.EnrichedLine) *invoice.EnrichedLine {
	if line == nil {
		return nil
	}
	copied := *line
	copied.LineItem = *copyLineItem(&line.LineItem)
	return &copied
}

// Add seeds the store with a line
func (s *InMemoryLineStore) Add(line *invoice.EnrichedLine) {
	_ = s.InMemoryStore.Create(context.Background(), line.ID, copyEnrichedLine(line))
}

func lineFilterFn(ctx context.Context, line *invoice.EnrichedLine, filter interface{}) bool {
	if line.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.LineFilter)
	if !ok || f == nil {
		return true
	}

	if f.SupplierID != nil && line.SupplierID != *f.SupplierID {
		return false
	}
	if f.BookingNumber != nil && line.BookingNumber != *f.BookingNumber {
		return false
	}
	if len(f.PaymentStatus) > 0 {
		found := false
		for _, status := range f.PaymentStatus {
			if line.PaymentStatus == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(line.Description), q) &&
			!strings.Contains(strings.ToLower(line.SupplierName), q) &&
			!strings.Contains(strings.ToLower(line.PartNumber), q) {
			return false
		}
	}
	return true
}

func lineSortFn(i, j *invoice.EnrichedLine) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return strings.Compare(i.ID, j.ID) < 0
	}
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryLineStore) ListEnriched(ctx context.Context, filter *types.LineFilter) ([]*invoice.EnrichedLine, error) {
	lines, err := s.InMemoryStore.List(ctx, filter, lineFilterFn, lineSortFn)
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.EnrichedLine, len(lines))
	for i, line := range lines {
		result[i] = copyEnrichedLine(line)
	}
	return result, nil
}

func (s *InMemoryLineStore) UpdatePaymentStatus(ctx context.Context, updates []types.PaymentStatusUpdate) error {
	s.mu.Lock()
	if s.UpdateErr != nil {
		err := s.UpdateErr
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for _, update := range updates {
		line, err := s.InMemoryStore.Get(ctx, update.LineID)
		if err != nil {
			continue
		}
		copied := copyEnrichedLine(line)
		copied.PaymentStatus = update.Status
		if err := s.InMemoryStore.Update(ctx, update.LineID, copied); err != nil {
			return err
		}
	}
	return nil
}

// PaymentStatusOf reads the stored status of a line directly
func (s *InMemoryLineStore) PaymentStatusOf(id string) types.PaymentStatus {
	line, err := s.InMemoryStore.Get(context.Background(), id)
	if err != nil {
		return ""
	}
	return line.PaymentStatus
}
