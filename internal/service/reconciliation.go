package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ReconciliationService holds the working set of enriched lines for one
// reconciliation session: selection state, edit state, registered totals.
// All methods are synchronous in-memory transformations except
// RegisterSelection and ToggleFullyPaid, which each perform one write to
// the persistence collaborator.
type ReconciliationService interface {
	LoadWorkingSet(ctx context.Context) error
	Lines() []*invoice.EnrichedLine
	SelectLine(id string, checked bool) error
	SelectAll(checked bool)
	AllSelected() bool
	BeginEdit(lineID string, field types.EditField) error
	SetEditValue(raw string)
	CommitEdit() error
	CancelEdit()
	EditTarget() (types.EditTarget, bool)
	SelectionTotals() types.SelectionTotals
	RegisterSelection(ctx context.Context, confirmPaid bool) (*registration.Batch, error)
	ToggleFullyPaid(ctx context.Context, lineID string, paid bool) error
}

type reconciliationService struct {
	ServiceParams
	aggregator AggregatorService

	// The session is single reader/writer by contract; the mutex only
	// guards against parallel HTTP handlers touching the same session.
	mu        sync.Mutex
	lines     []*invoice.EnrichedLine
	byID      map[string]*invoice.EnrichedLine
	dirty     map[string]bool
	editing   *types.EditTarget
	editValue string
}

// NewReconciliationService creates a reconciliation session with an empty
// working set. Call LoadWorkingSet before anything else.
func NewReconciliationService(params ServiceParams) ReconciliationService {
	return &reconciliationService{
		ServiceParams: params,
		aggregator:    NewAggregatorService(params),
		byID:          make(map[string]*invoice.EnrichedLine),
		dirty:         make(map[string]bool),
	}
}

// LoadWorkingSet fetches fresh enriched lines and registration records,
// recomputes per line registered totals and merges into the existing
// session state. Selected flags and unsaved cost/VAT values survive for
// lines still present; stale selections are dropped; server owned fields
// always come from the fresh data.
func (s *reconciliationService) LoadWorkingSet(ctx context.Context) error {
	fresh, err := s.aggregator.LoadEnrichedLines(ctx)
	if err != nil {
		return err
	}

	records, err := s.RegistrationRepo.List(ctx, &types.RegistrationFilter{})
	if err != nil {
		return err
	}

	// Records referencing a line absent from the working set are silently
	// filtered, not an error.
	registered := make(map[string]decimal.Decimal, len(fresh))
	for _, r := range records {
		registered[r.InvoiceLineID] = registered[r.InvoiceLineID].Add(r.ActualCost)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*invoice.EnrichedLine, len(fresh))
	for _, line := range fresh {
		line.RegisteredActualCost = registered[line.ID]

		if prev, ok := s.byID[line.ID]; ok {
			line.Selected = prev.Selected
			if s.dirty[line.ID] {
				line.ActualCost = prev.ActualCost
				line.ActualVAT = prev.ActualVAT
			}
		}
		byID[line.ID] = line
	}

	// Drop dirty markers and any open edit for lines no longer present
	for id := range s.dirty {
		if _, ok := byID[id]; !ok {
			delete(s.dirty, id)
		}
	}
	if s.editing != nil {
		if _, ok := byID[s.editing.LineID]; !ok {
			s.editing = nil
			s.editValue = ""
		}
	}

	s.lines = fresh
	s.byID = byID
	return nil
}

// Lines returns the current working set snapshot
func (s *reconciliationService) Lines() []*invoice.EnrichedLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*invoice.EnrichedLine(nil), s.lines...)
}

// SelectLine toggles a line's selection. Checking a paid line is rejected
// with no state change. On a successful check, an absent or zero actual
// cost is seeded from the estimated cost as an editable default.
func (s *reconciliationService) SelectLine(id string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.byID[id]
	if !ok {
		return ierr.NewError("line not found").
			WithHintf("No invoice line with id %s in the working set", id).
			Mark(ierr.ErrNotFound)
	}

	if checked && !line.PaymentStatus.IsSelectable() {
		s.Notifier.Notify(types.NotificationError, "Cannot select a paid line")
		return ierr.NewError("cannot select paid line").
			WithHint("Paid lines are locked for registration").
			WithReportableDetails(map[string]any{"line_id": id}).
			Mark(ierr.ErrValidation)
	}

	if checked {
		s.seedActualCost(line)
	}
	line.Selected = checked
	return nil
}

// SelectAll selects every non paid line when checked; unchecked clears
// all selections unconditionally.
func (s *reconciliationService) SelectAll(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.lines {
		if !checked {
			line.Selected = false
			continue
		}
		if line.PaymentStatus.IsSelectable() {
			s.seedActualCost(line)
			line.Selected = true
		}
	}
}

// AllSelected is true iff the non paid subset is non empty and every
// member is selected.
func (s *reconciliationService) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectable := lo.Filter(s.lines, func(l *invoice.EnrichedLine, _ int) bool {
		return l.PaymentStatus.IsSelectable()
	})
	if len(selectable) == 0 {
		return false
	}
	return lo.EveryBy(selectable, func(l *invoice.EnrichedLine) bool {
		return l.Selected
	})
}

func (s *reconciliationService) seedActualCost(line *invoice.EnrichedLine) {
	if line.ActualCost == nil || line.ActualCost.IsZero() {
		seeded := line.EstimatedCost
		line.ActualCost = &seeded
		s.dirty[line.ID] = true
	}
}

// BeginEdit enters edit mode for exactly one (line, field) pair. Starting
// a new edit while another is open silently replaces it: last writer wins.
func (s *reconciliationService) BeginEdit(lineID string, field types.EditField) error {
	if err := field.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Edit field must be cost or vat").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.byID[lineID]
	if !ok {
		return ierr.NewError("line not found").
			WithHintf("No invoice line with id %s in the working set", lineID).
			Mark(ierr.ErrNotFound)
	}

	s.editing = &types.EditTarget{LineID: lineID, Field: field}
	switch field {
	case types.EditFieldCost:
		s.editValue = line.ActualCostOrZero().String()
	case types.EditFieldVAT:
		s.editValue = line.ActualVATOrZero().String()
	}
	return nil
}

// SetEditValue replaces the text buffer of the open edit
func (s *reconciliationService) SetEditValue(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return
	}
	s.editValue = raw
}

// CommitEdit parses the buffered text as a decimal and replaces the target
// field exactly with the parsed value. Unparsable input aborts with no
// mutation; the edit stays open so the user can correct it.
func (s *reconciliationService) CommitEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == nil {
		return ierr.NewError("no edit in progress").
			WithHint("Begin an edit before committing").
			Mark(ierr.ErrInvalidOperation)
	}

	value, err := decimal.NewFromString(s.editValue)
	if err != nil {
		s.Notifier.Notify(types.NotificationError, fmt.Sprintf("Invalid amount: %q", s.editValue))
		return ierr.WithError(err).
			WithHintf("%q is not a valid amount", s.editValue).
			Mark(ierr.ErrValidation)
	}

	line, ok := s.byID[s.editing.LineID]
	if !ok {
		s.editing = nil
		s.editValue = ""
		return ierr.NewError("line not found").
			WithHint("The edited line left the working set").
			Mark(ierr.ErrNotFound)
	}

	switch s.editing.Field {
	case types.EditFieldCost:
		line.ActualCost = &value
	case types.EditFieldVAT:
		line.ActualVAT = &value
	}
	s.dirty[line.ID] = true

	s.editing = nil
	s.editValue = ""
	return nil
}

// CancelEdit closes the open edit discarding the buffer
func (s *reconciliationService) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
	s.editValue = ""
}

// EditTarget returns the open edit target, if any
func (s *reconciliationService) EditTarget() (types.EditTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return types.EditTarget{}, false
	}
	return *s.editing, true
}

// SelectionTotals computes aggregates over the selected lines. Amounts are
// summed within whatever currency each line carries; mixed currency
// selections are the caller's responsibility and are not rejected here.
func (s *reconciliationService) SelectionTotals() types.SelectionTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionTotalsLocked()
}

func (s *reconciliationService) selectionTotalsLocked() types.SelectionTotals {
	totals := types.SelectionTotals{
		TotalEstimatedCost:  decimal.Zero,
		TotalActualCost:     decimal.Zero,
		TotalInvoicedAmount: decimal.Zero,
	}

	invoiceTotals := make(map[string]decimal.Decimal)
	for _, line := range s.lines {
		if !line.Selected {
			continue
		}
		totals.Count++
		totals.TotalEstimatedCost = totals.TotalEstimatedCost.Add(line.EstimatedCost)
		totals.TotalActualCost = totals.TotalActualCost.Add(line.ActualCostOrZero())
		invoiceTotals[line.InvoiceID] = line.InvoiceTotalAmount
	}

	for _, amount := range invoiceTotals {
		totals.TotalInvoicedAmount = totals.TotalInvoicedAmount.Add(amount)
	}

	return totals
}

// RegisterSelection emits one registration record per selected line and,
// when confirmPaid is set, transitions every selected line to paid. The
// commit runs as one logical unit: if either persistence write fails the
// in-memory state is left untouched, the selection preserved, and the
// failure reported. On success the selection is cleared and any open edit
// closed.
func (s *reconciliationService) RegisterSelection(ctx context.Context, confirmPaid bool) (*registration.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := lo.Filter(s.lines, func(l *invoice.EnrichedLine, _ int) bool {
		return l.Selected
	})
	if len(selected) == 0 {
		return nil, ierr.NewError("no lines selected").
			WithHint("Select at least one line to register").
			Mark(ierr.ErrValidation)
	}

	batch := &registration.Batch{
		Records: make([]*registration.RegistrationRecord, 0, len(selected)),
	}

	for _, line := range selected {
		currency := line.Currency
		if currency == "" {
			currency = types.DefaultCurrency
		}
		batch.Records = append(batch.Records, &registration.RegistrationRecord{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REGISTRATION),
			InvoiceLineID: line.ID,
			ActualCost:    line.ActualCostOrZero(),
			ActualVAT:     line.ActualVATOrZero(),
			Currency:      currency,
			Description:   line.Description,
			SupplierName:  line.SupplierName,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		})
	}

	if confirmPaid {
		batch.StatusUpdates = lo.Map(selected, func(l *invoice.EnrichedLine, _ int) types.PaymentStatusUpdate {
			return types.PaymentStatusUpdate{LineID: l.ID, Status: types.PaymentStatusPaid}
		})
	}

	if err := s.RegistrationRepo.CreateBulk(ctx, batch.Records); err != nil {
		s.Logger.Errorw("failed to insert registration records",
			"error", err,
			"count", len(batch.Records),
		)
		s.Notifier.Notify(types.NotificationError, "Registration failed, nothing was saved")
		return nil, ierr.WithError(err).
			WithHint("Registration failed, nothing was saved").
			Mark(ierr.ErrDatabase)
	}

	if len(batch.StatusUpdates) > 0 {
		if err := s.LineRepo.UpdatePaymentStatus(ctx, batch.StatusUpdates); err != nil {
			s.Logger.Errorw("failed to update payment status for batch",
				"error", err,
				"count", len(batch.StatusUpdates),
			)
			s.Notifier.Notify(types.NotificationError, "Registration failed, nothing was saved")
			return nil, ierr.WithError(err).
				WithHint("Registration failed, nothing was saved").
				Mark(ierr.ErrDatabase)
		}
	}

	// Persistence succeeded: apply the batch to the in-memory state
	for i, line := range selected {
		line.RegisteredActualCost = line.RegisteredActualCost.Add(batch.Records[i].ActualCost)
		if confirmPaid {
			line.PaymentStatus = types.PaymentStatusPaid
		}
		line.Selected = false
		delete(s.dirty, line.ID)
	}
	s.editing = nil
	s.editValue = ""

	s.Notifier.Notify(types.NotificationSuccess,
		fmt.Sprintf("Registered %d line(s)", len(batch.Records)))
	return batch, nil
}

// ToggleFullyPaid flips a single line's payment status outside the batch
// registration flow. The in-memory state updates optimistically; a failed
// persistence notification is reported but the local change stays in
// place. This asymmetry with RegisterSelection is deliberate and mirrors
// the original behavior.
func (s *reconciliationService) ToggleFullyPaid(ctx context.Context, lineID string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.byID[lineID]
	if !ok {
		return ierr.NewError("line not found").
			WithHintf("No invoice line with id %s in the working set", lineID).
			Mark(ierr.ErrNotFound)
	}

	target := types.PaymentStatusUnpaid
	if paid {
		target = types.PaymentStatusPaid
	}

	if line.PaymentStatus == target {
		return nil
	}

	if !line.PaymentStatus.CanTransition(target) {
		return ierr.NewError("invalid payment status transition").
			WithHintf("Cannot move line from %s to %s", line.PaymentStatus, target).
			Mark(ierr.ErrInvalidOperation)
	}

	line.PaymentStatus = target

	if err := s.LineRepo.UpdatePaymentStatus(ctx, []types.PaymentStatusUpdate{
		{LineID: lineID, Status: target},
	}); err != nil {
		// Optimistic local state is kept; only the failure is surfaced.
		s.Logger.Errorw("failed to persist payment status toggle",
			"error", err,
			"line_id", lineID,
			"status", target,
		)
		s.Notifier.Notify(types.NotificationError, "Could not save payment status")
		return nil
	}

	s.Notifier.Notify(types.NotificationSuccess,
		fmt.Sprintf("Line marked %s", target))
	return nil
}
