package service

import (
	"context"
	"sync"

	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
)

// Default ledger accounts seeded into new allocation entries
const (
	DefaultCostAccount = "4000"
	DefaultVATAccount  = "2640"
)

// AllocationEntry is one row of a cost account / VAT account split of an
// invoice total.
type AllocationEntry struct {
	ID          string          `json:"id"`
	CostAccount string          `json:"cost_account"`
	VATAccount  string          `json:"vat_account"`
	Amount      decimal.Decimal `json:"amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// Allocation splits an invoice total and its VAT across a variable number
// of ledger account entries. The sum of entry amounts never exceeds the
// total by construction: every edit is clamped. Transient form state,
// never persisted.
type Allocation struct {
	InvoiceID   string             `json:"invoice_id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	TotalVAT    decimal.Decimal    `json:"total_vat"`
	Entries     []*AllocationEntry `json:"entries"`
}

// NewAllocation seeds an allocation with one entry holding the full totals
func NewAllocation(invoiceID string, totalAmount, totalVAT decimal.Decimal) *Allocation {
	return &Allocation{
		InvoiceID:   invoiceID,
		TotalAmount: totalAmount,
		TotalVAT:    totalVAT,
		Entries: []*AllocationEntry{
			{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ALLOCATION_ENTRY),
				CostAccount: DefaultCostAccount,
				VATAccount:  DefaultVATAccount,
				Amount:      totalAmount,
				VATAmount:   totalVAT,
			},
		},
	}
}

// AddEntry appends a new zero amount entry
func (a *Allocation) AddEntry() *AllocationEntry {
	entry := &AllocationEntry{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ALLOCATION_ENTRY),
		CostAccount: DefaultCostAccount,
		VATAccount:  DefaultVATAccount,
		Amount:      decimal.Zero,
		VATAmount:   decimal.Zero,
	}
	a.Entries = append(a.Entries, entry)
	return entry
}

// RemoveEntry removes an entry unless it is the last one: at least one
// entry always exists.
func (a *Allocation) RemoveEntry(entryID string) error {
	if len(a.Entries) <= 1 {
		return ierr.NewError("cannot remove last allocation entry").
			WithHint("An allocation keeps at least one entry").
			Mark(ierr.ErrInvalidOperation)
	}

	for i, entry := range a.Entries {
		if entry.ID == entryID {
			a.Entries = append(a.Entries[:i], a.Entries[i+1:]...)
			return nil
		}
	}

	return ierr.NewError("allocation entry not found").
		WithHintf("No entry with id %s", entryID).
		Mark(ierr.ErrNotFound)
}

// UpdateEntryAmount parses raw as a decimal (invalid input becomes 0) and
// clamps the result so the entry cannot push the aggregate over the total.
func (a *Allocation) UpdateEntryAmount(entryID string, raw string) error {
	entry := a.findEntry(entryID)
	if entry == nil {
		return ierr.NewError("allocation entry not found").
			WithHintf("No entry with id %s", entryID).
			Mark(ierr.ErrNotFound)
	}

	entry.Amount = clampAmount(parseAmount(raw), a.TotalAmount, a.othersAmount(entryID))
	return nil
}

// UpdateEntryVAT applies the same parse and clamp rule to the VAT amount
// against the VAT total.
func (a *Allocation) UpdateEntryVAT(entryID string, raw string) error {
	entry := a.findEntry(entryID)
	if entry == nil {
		return ierr.NewError("allocation entry not found").
			WithHintf("No entry with id %s", entryID).
			Mark(ierr.ErrNotFound)
	}

	entry.VATAmount = clampAmount(parseAmount(raw), a.TotalVAT, a.othersVAT(entryID))
	return nil
}

// UpdateEntryAccounts replaces the ledger accounts of an entry
func (a *Allocation) UpdateEntryAccounts(entryID, costAccount, vatAccount string) error {
	entry := a.findEntry(entryID)
	if entry == nil {
		return ierr.NewError("allocation entry not found").
			WithHintf("No entry with id %s", entryID).
			Mark(ierr.ErrNotFound)
	}

	if costAccount != "" {
		entry.CostAccount = costAccount
	}
	if vatAccount != "" {
		entry.VATAccount = vatAccount
	}
	return nil
}

// SyncTotals resyncs the allocation to new invoice totals and default
// accounts. Only the first entry is rewritten; entries beyond the first
// are left untouched, which can turn the validity flag false. That state
// is surfaced, not auto corrected.
func (a *Allocation) SyncTotals(totalAmount, totalVAT decimal.Decimal, costAccount, vatAccount string) {
	a.TotalAmount = totalAmount
	a.TotalVAT = totalVAT

	first := a.Entries[0]
	first.Amount = totalAmount
	first.VATAmount = totalVAT
	if costAccount != "" {
		first.CostAccount = costAccount
	}
	if vatAccount != "" {
		first.VATAccount = vatAccount
	}
}

// Valid reports whether both sums still fit inside their totals
func (a *Allocation) Valid() bool {
	return a.othersAmount("").LessThanOrEqual(a.TotalAmount) &&
		a.othersVAT("").LessThanOrEqual(a.TotalVAT)
}

func (a *Allocation) findEntry(entryID string) *AllocationEntry {
	for _, entry := range a.Entries {
		if entry.ID == entryID {
			return entry
		}
	}
	return nil
}

// othersAmount sums entry amounts excluding the given id; pass "" to sum
// every entry.
func (a *Allocation) othersAmount(excludeID string) decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range a.Entries {
		if entry.ID == excludeID {
			continue
		}
		sum = sum.Add(entry.Amount)
	}
	return sum
}

func (a *Allocation) othersVAT(excludeID string) decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range a.Entries {
		if entry.ID == excludeID {
			continue
		}
		sum = sum.Add(entry.VATAmount)
	}
	return sum
}

func parseAmount(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func clampAmount(value, total, others decimal.Decimal) decimal.Decimal {
	max := total.Sub(others)
	if max.IsNegative() {
		max = decimal.Zero
	}
	if value.IsNegative() {
		return decimal.Zero
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

// AllocationService manages per invoice allocation sessions for the API
// edge. Sessions are in-memory only.
type AllocationService interface {
	StartAllocation(ctx context.Context, invoiceID string) (*Allocation, error)
	GetAllocation(invoiceID string) (*Allocation, error)
	AddEntry(invoiceID string) (*Allocation, error)
	RemoveEntry(invoiceID, entryID string) (*Allocation, error)
	UpdateEntryAmount(invoiceID, entryID, raw string) (*Allocation, error)
	UpdateEntryVAT(invoiceID, entryID, raw string) (*Allocation, error)
	SyncTotals(ctx context.Context, invoiceID string) (*Allocation, error)
}

type allocationService struct {
	ServiceParams

	mu       sync.Mutex
	sessions map[string]*Allocation
}

// NewAllocationService creates a new allocation service
func NewAllocationService(params ServiceParams) AllocationService {
	return &allocationService{
		ServiceParams: params,
		sessions:      make(map[string]*Allocation),
	}
}

// StartAllocation seeds a fresh allocation from the invoice totals,
// replacing any existing session for the invoice.
func (s *allocationService) StartAllocation(ctx context.Context, invoiceID string) (*Allocation, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	allocation := NewAllocation(inv.ID, inv.TotalAmount, inv.TotalVAT)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[invoiceID] = allocation
	return allocation, nil
}

func (s *allocationService) GetAllocation(invoiceID string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(invoiceID)
}

func (s *allocationService) AddEntry(invoiceID string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocation, err := s.sessionLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	allocation.AddEntry()
	return allocation, nil
}

func (s *allocationService) RemoveEntry(invoiceID, entryID string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocation, err := s.sessionLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := allocation.RemoveEntry(entryID); err != nil {
		return nil, err
	}
	return allocation, nil
}

func (s *allocationService) UpdateEntryAmount(invoiceID, entryID, raw string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocation, err := s.sessionLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := allocation.UpdateEntryAmount(entryID, raw); err != nil {
		return nil, err
	}
	return allocation, nil
}

func (s *allocationService) UpdateEntryVAT(invoiceID, entryID, raw string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allocation, err := s.sessionLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := allocation.UpdateEntryVAT(entryID, raw); err != nil {
		return nil, err
	}
	return allocation, nil
}

// SyncTotals re-reads the invoice and resyncs the first entry to its
// current totals.
func (s *allocationService) SyncTotals(ctx context.Context, invoiceID string) (*Allocation, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allocation, err := s.sessionLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	allocation.SyncTotals(inv.TotalAmount, inv.TotalVAT, "", "")
	return allocation, nil
}

func (s *allocationService) sessionLocked(invoiceID string) (*Allocation, error) {
	allocation, ok := s.sessions[invoiceID]
	if !ok {
		return nil, ierr.NewError("allocation session not found").
			WithHintf("Start an allocation for invoice %s first", invoiceID).
			Mark(ierr.ErrNotFound)
	}
	return allocation, nil
}
