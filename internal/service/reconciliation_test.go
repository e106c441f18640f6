package service

import (
	"testing"

	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/testutil"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceSuite struct {
	testutil.BaseServiceTestSuite
	engine   ReconciliationService
	lineRepo *testutil.InMemoryLineStore
	regRepo  *testutil.InMemoryRegistrationStore
	testData struct {
		unpaid  *invoice.EnrichedLine
		costly  *invoice.EnrichedLine
		paid    *invoice.EnrichedLine
		partial *invoice.EnrichedLine
	}
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceSuite))
}

func (s *ReconciliationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *ReconciliationServiceSuite) setupService() {
	s.lineRepo = s.GetStores().LineRepo
	s.regRepo = s.GetStores().RegistrationRepo

	s.engine = NewReconciliationService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		InvoiceRepo:      s.GetStores().InvoiceRepo,
		LineRepo:         s.lineRepo,
		RegistrationRepo: s.regRepo,
		Notifier:         s.GetNotifier(),
	})
}

func (s *ReconciliationServiceSuite) newLine(id string, status types.PaymentStatus, estimated string, invoiceID string, invoiceTotal string) *invoice.EnrichedLine {
	line := &invoice.EnrichedLine{
		LineItem: invoice.LineItem{
			ID:            id,
			InvoiceID:     invoiceID,
			Description:   "Line " + id,
			Quantity:      1,
			UnitPrice:     decimal.RequireFromString(estimated),
			EstimatedCost: decimal.RequireFromString(estimated),
			Currency:      "USD",
			SupplierID:    "sup_1",
			SupplierName:  "Acme Supplies",
			PaymentStatus: status,
			BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
		},
		InvoiceNumber:      "SI-" + invoiceID,
		InvoiceTotalAmount: decimal.RequireFromString(invoiceTotal),
	}
	s.lineRepo.Add(line)
	return line
}

func (s *ReconciliationServiceSuite) setupTestData() {
	// Two lines on the same invoice, one on another, one partially paid
	s.testData.unpaid = s.newLine("line_1", types.PaymentStatusUnpaid, "100", "inv_1", "250")
	s.testData.costly = s.newLine("line_2", types.PaymentStatusUnpaid, "150", "inv_1", "250")
	s.testData.paid = s.newLine("line_3", types.PaymentStatusPaid, "80", "inv_2", "80")
	s.testData.partial = s.newLine("line_4", types.PaymentStatusPartial, "60", "inv_3", "60")

	cost := decimal.RequireFromString("120")
	s.testData.costly.ActualCost = &cost
	s.lineRepo.Clear()
	for _, line := range []*invoice.EnrichedLine{
		s.testData.unpaid, s.testData.costly, s.testData.paid, s.testData.partial,
	} {
		s.lineRepo.Add(line)
	}

	s.NoError(s.engine.LoadWorkingSet(s.GetContext()))
}

func (s *ReconciliationServiceSuite) addRegistration(lineID, amount string) {
	err := s.regRepo.Create(s.GetContext(), &registration.RegistrationRecord{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REGISTRATION),
		InvoiceLineID: lineID,
		ActualCost:    decimal.RequireFromString(amount),
		ActualVAT:     decimal.Zero,
		Currency:      "USD",
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *ReconciliationServiceSuite) lineByID(id string) *invoice.EnrichedLine {
	for _, line := range s.engine.Lines() {
		if line.ID == id {
			return line
		}
	}
	return nil
}

func (s *ReconciliationServiceSuite) TestLoadWorkingSetComputesRegisteredTotals() {
	s.addRegistration("line_1", "40")
	s.addRegistration("line_1", "25")
	// A record referencing a line outside the working set is ignored
	s.addRegistration("line_ghost", "999")

	s.NoError(s.engine.LoadWorkingSet(s.GetContext()))

	s.True(s.lineByID("line_1").RegisteredActualCost.Equal(decimal.RequireFromString("65")))
	s.True(s.lineByID("line_2").RegisteredActualCost.IsZero())
	s.Len(s.engine.Lines(), 4)
}

func (s *ReconciliationServiceSuite) TestSelectSeedsActualCostFromEstimate() {
	s.NoError(s.engine.SelectLine("line_1", true))

	line := s.lineByID("line_1")
	s.True(line.Selected)
	s.NotNil(line.ActualCost)
	s.True(line.ActualCost.Equal(line.EstimatedCost))
}

func (s *ReconciliationServiceSuite) TestSelectKeepsExistingActualCost() {
	s.NoError(s.engine.SelectLine("line_2", true))

	line := s.lineByID("line_2")
	s.True(line.Selected)
	s.True(line.ActualCost.Equal(decimal.RequireFromString("120")))
}

func (s *ReconciliationServiceSuite) TestSelectPaidLineRejected() {
	err := s.engine.SelectLine("line_3", true)

	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.False(s.lineByID("line_3").Selected)

	last, ok := s.GetNotifier().Last()
	s.True(ok)
	s.Equal(types.NotificationError, last.Kind)
}

func (s *ReconciliationServiceSuite) TestPartialLineIsSelectable() {
	s.NoError(s.engine.SelectLine("line_4", true))
	s.True(s.lineByID("line_4").Selected)
}

func (s *ReconciliationServiceSuite) TestUnselectPaidLineAllowed() {
	s.NoError(s.engine.SelectLine("line_3", false))
	s.False(s.lineByID("line_3").Selected)
}

func (s *ReconciliationServiceSuite) TestSelectUnknownLine() {
	err := s.engine.SelectLine("line_missing", true)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ReconciliationServiceSuite) TestSelectAllSkipsPaidLines() {
	s.engine.SelectAll(true)

	s.True(s.lineByID("line_1").Selected)
	s.True(s.lineByID("line_2").Selected)
	s.False(s.lineByID("line_3").Selected)
	s.True(s.lineByID("line_4").Selected)
	s.True(s.engine.AllSelected())

	s.engine.SelectAll(false)
	for _, line := range s.engine.Lines() {
		s.False(line.Selected)
	}
	s.False(s.engine.AllSelected())
}

func (s *ReconciliationServiceSuite) TestSelectionTotalsDedupeInvoicedAmount() {
	// line_1 and line_2 share inv_1 with total 250; it must count once
	s.NoError(s.engine.SelectLine("line_1", true))
	s.NoError(s.engine.SelectLine("line_2", true))

	totals := s.engine.SelectionTotals()
	s.Equal(2, totals.Count)
	s.True(totals.TotalEstimatedCost.Equal(decimal.RequireFromString("250")))
	// line_1 seeded to 100, line_2 keeps 120
	s.True(totals.TotalActualCost.Equal(decimal.RequireFromString("220")))
	s.True(totals.TotalInvoicedAmount.Equal(decimal.RequireFromString("250")))
}

func (s *ReconciliationServiceSuite) TestCommitEditReplacesValue() {
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldCost))
	s.engine.SetEditValue("87.50")
	s.NoError(s.engine.CommitEdit())

	line := s.lineByID("line_1")
	s.True(line.ActualCost.Equal(decimal.RequireFromString("87.50")))

	_, open := s.engine.EditTarget()
	s.False(open)
}

func (s *ReconciliationServiceSuite) TestCommitEditVAT() {
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldVAT))
	s.engine.SetEditValue("12.25")
	s.NoError(s.engine.CommitEdit())

	s.True(s.lineByID("line_1").ActualVAT.Equal(decimal.RequireFromString("12.25")))
}

func (s *ReconciliationServiceSuite) TestCommitEditInvalidInputKeepsEditOpen() {
	s.NoError(s.engine.BeginEdit("line_2", types.EditFieldCost))
	s.engine.SetEditValue("not-a-number")

	err := s.engine.CommitEdit()
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// No mutation, edit still open for correction
	s.True(s.lineByID("line_2").ActualCost.Equal(decimal.RequireFromString("120")))
	target, open := s.engine.EditTarget()
	s.True(open)
	s.Equal("line_2", target.LineID)
}

func (s *ReconciliationServiceSuite) TestBeginEditReplacesOpenEdit() {
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldCost))
	s.NoError(s.engine.BeginEdit("line_2", types.EditFieldVAT))

	target, open := s.engine.EditTarget()
	s.True(open)
	s.Equal("line_2", target.LineID)
	s.Equal(types.EditFieldVAT, target.Field)
}

func (s *ReconciliationServiceSuite) TestCancelEditDiscardsBuffer() {
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldCost))
	s.engine.SetEditValue("999")
	s.engine.CancelEdit()

	s.Nil(s.lineByID("line_1").ActualCost)
	_, open := s.engine.EditTarget()
	s.False(open)
}

func (s *ReconciliationServiceSuite) TestCommitEditWithoutBegin() {
	err := s.engine.CommitEdit()
	s.Error(err)
}

func (s *ReconciliationServiceSuite) TestRegisterSelectionEmptyRejected() {
	_, err := s.engine.RegisterSelection(s.GetContext(), true)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReconciliationServiceSuite) TestRegisterSelectionAppendsAndMarksPaid() {
	s.NoError(s.engine.SelectLine("line_1", true))
	s.NoError(s.engine.SelectLine("line_2", true))

	batch, err := s.engine.RegisterSelection(s.GetContext(), true)
	s.NoError(err)
	s.Len(batch.Records, 2)
	s.Len(batch.StatusUpdates, 2)

	// Records persisted
	records, err := s.regRepo.List(s.GetContext(), &types.RegistrationFilter{
		InvoiceLineIDs: []string{"line_1", "line_2"},
	})
	s.NoError(err)
	s.Len(records, 2)

	// Status persisted and reflected in memory
	s.Equal(types.PaymentStatusPaid, s.lineRepo.PaymentStatusOf("line_1"))
	s.Equal(types.PaymentStatusPaid, s.lineRepo.PaymentStatusOf("line_2"))
	s.Equal(types.PaymentStatusPaid, s.lineByID("line_1").PaymentStatus)

	// Selection cleared, registered totals bumped
	s.False(s.lineByID("line_1").Selected)
	s.True(s.lineByID("line_1").RegisteredActualCost.Equal(decimal.RequireFromString("100")))
	s.True(s.lineByID("line_2").RegisteredActualCost.Equal(decimal.RequireFromString("120")))

	last, ok := s.GetNotifier().Last()
	s.True(ok)
	s.Equal(types.NotificationSuccess, last.Kind)
}

func (s *ReconciliationServiceSuite) TestRegisterSelectionWithoutConfirmKeepsStatus() {
	s.NoError(s.engine.SelectLine("line_1", true))

	batch, err := s.engine.RegisterSelection(s.GetContext(), false)
	s.NoError(err)
	s.Len(batch.Records, 1)
	s.Empty(batch.StatusUpdates)

	s.Equal(types.PaymentStatusUnpaid, s.lineByID("line_1").PaymentStatus)
	s.Equal(types.PaymentStatusUnpaid, s.lineRepo.PaymentStatusOf("line_1"))
}

func (s *ReconciliationServiceSuite) TestRegisterSelectionRollsBackOnRecordFailure() {
	s.NoError(s.engine.SelectLine("line_1", true))
	s.regRepo.CreateBulkErr = ierr.NewError("insert failed").Mark(ierr.ErrDatabase)

	_, err := s.engine.RegisterSelection(s.GetContext(), true)
	s.Error(err)

	// Nothing stored, nothing mutated, selection preserved
	records, listErr := s.regRepo.List(s.GetContext(), &types.RegistrationFilter{})
	s.NoError(listErr)
	s.Empty(records)
	s.True(s.lineByID("line_1").Selected)
	s.Equal(types.PaymentStatusUnpaid, s.lineByID("line_1").PaymentStatus)
	s.True(s.lineByID("line_1").RegisteredActualCost.IsZero())

	last, ok := s.GetNotifier().Last()
	s.True(ok)
	s.Equal(types.NotificationError, last.Kind)
}

func (s *ReconciliationServiceSuite) TestRegisterSelectionRollsBackOnStatusFailure() {
	s.NoError(s.engine.SelectLine("line_1", true))
	s.lineRepo.UpdateErr = ierr.NewError("update failed").Mark(ierr.ErrDatabase)

	_, err := s.engine.RegisterSelection(s.GetContext(), true)
	s.Error(err)

	// In-memory session stays untouched
	s.True(s.lineByID("line_1").Selected)
	s.Equal(types.PaymentStatusUnpaid, s.lineByID("line_1").PaymentStatus)
	s.True(s.lineByID("line_1").RegisteredActualCost.IsZero())
	s.Equal(types.PaymentStatusUnpaid, s.lineRepo.PaymentStatusOf("line_1"))
}

func (s *ReconciliationServiceSuite) TestOverRegistrationSurfacedNotBlocked() {
	s.NoError(s.engine.SelectLine("line_1", true))
	_, err := s.engine.RegisterSelection(s.GetContext(), false)
	s.NoError(err)

	// Register the same line again; the total exceeds the estimate
	s.NoError(s.engine.SelectLine("line_1", true))
	_, err = s.engine.RegisterSelection(s.GetContext(), false)
	s.NoError(err)

	line := s.lineByID("line_1")
	s.True(line.RegisteredActualCost.GreaterThan(line.EstimatedCost))
	s.True(line.PaymentStatus.IsSelectable())
}

func (s *ReconciliationServiceSuite) TestLoadWorkingSetPreservesPendingState() {
	s.NoError(s.engine.SelectLine("line_1", true))
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldCost))
	s.engine.SetEditValue("77")
	s.NoError(s.engine.CommitEdit())

	s.NoError(s.engine.LoadWorkingSet(s.GetContext()))

	line := s.lineByID("line_1")
	s.True(line.Selected)
	s.True(line.ActualCost.Equal(decimal.RequireFromString("77")))
}

func (s *ReconciliationServiceSuite) TestLoadWorkingSetDropsStaleState() {
	s.NoError(s.engine.SelectLine("line_1", true))
	s.NoError(s.engine.BeginEdit("line_1", types.EditFieldCost))

	// The line disappears from the backing store before the reload
	s.NoError(s.lineRepo.Delete(s.GetContext(), "line_1"))
	s.NoError(s.engine.LoadWorkingSet(s.GetContext()))

	s.Nil(s.lineByID("line_1"))
	_, open := s.engine.EditTarget()
	s.False(open)
	s.Len(s.engine.Lines(), 3)
}

func (s *ReconciliationServiceSuite) TestLoadWorkingSetRefreshesServerFields() {
	s.NoError(s.engine.SelectLine("line_1", true))

	// Another actor marks the line paid out of band
	s.NoError(s.lineRepo.UpdatePaymentStatus(s.GetContext(), []types.PaymentStatusUpdate{
		{LineID: "line_1", Status: types.PaymentStatusPaid},
	}))
	s.NoError(s.engine.LoadWorkingSet(s.GetContext()))

	line := s.lineByID("line_1")
	s.Equal(types.PaymentStatusPaid, line.PaymentStatus)
	// Selection membership survives the merge
	s.True(line.Selected)
}

func (s *ReconciliationServiceSuite) TestToggleFullyPaid() {
	s.NoError(s.engine.ToggleFullyPaid(s.GetContext(), "line_1", true))

	s.Equal(types.PaymentStatusPaid, s.lineByID("line_1").PaymentStatus)
	s.Equal(types.PaymentStatusPaid, s.lineRepo.PaymentStatusOf("line_1"))

	last, ok := s.GetNotifier().Last()
	s.True(ok)
	s.Equal(types.NotificationSuccess, last.Kind)
}

func (s *ReconciliationServiceSuite) TestToggleFullyPaidReopensPaidLine() {
	s.NoError(s.engine.ToggleFullyPaid(s.GetContext(), "line_3", false))
	s.Equal(types.PaymentStatusUnpaid, s.lineByID("line_3").PaymentStatus)
}

func (s *ReconciliationServiceSuite) TestToggleFullyPaidNoOpOnSameStatus() {
	s.GetNotifier().Reset()
	s.NoError(s.engine.ToggleFullyPaid(s.GetContext(), "line_3", true))

	s.Empty(s.GetNotifier().Notifications())
	s.Equal(types.PaymentStatusPaid, s.lineByID("line_3").PaymentStatus)
}

func (s *ReconciliationServiceSuite) TestToggleFullyPaidKeepsOptimisticStateOnFailure() {
	s.lineRepo.UpdateErr = ierr.NewError("update failed").Mark(ierr.ErrDatabase)

	err := s.engine.ToggleFullyPaid(s.GetContext(), "line_1", true)
	s.NoError(err)

	// Local state flipped, store untouched, failure notified
	s.Equal(types.PaymentStatusPaid, s.lineByID("line_1").PaymentStatus)
	s.Equal(types.PaymentStatusUnpaid, s.lineRepo.PaymentStatusOf("line_1"))

	last, ok := s.GetNotifier().Last()
	s.True(ok)
	s.Equal(types.NotificationError, last.Kind)
}

func (s *ReconciliationServiceSuite) TestToggleFullyPaidUnknownLine() {
	err := s.engine.ToggleFullyPaid(s.GetContext(), "line_missing", true)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
