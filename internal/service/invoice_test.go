package service

import (
	"strings"
	"testing"

	"github.com/ledgerline/ledgerline/internal/api/dto"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/testutil"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		InvoiceRepo:      s.GetStores().InvoiceRepo,
		LineRepo:         s.GetStores().LineRepo,
		RegistrationRepo: s.GetStores().RegistrationRepo,
		Notifier:         s.GetNotifier(),
	})
}

func (s *InvoiceServiceSuite) createRequest(lines ...*dto.CreateInvoiceLineRequest) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		SupplierID:   "sup_1",
		SupplierName: "Acme Supplies",
		Lines:        lines,
	}
}

func (s *InvoiceServiceSuite) lineRequest(description string, quantity int64, unitPrice string) *dto.CreateInvoiceLineRequest {
	return &dto.CreateInvoiceLineRequest{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   decimal.RequireFromString(unitPrice),
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	req := s.createRequest(
		s.lineRequest("Widget A", 3, "10"),
		s.lineRequest("Widget B", 2, "25"),
	)
	vat := decimal.RequireFromString("7.50")
	req.Lines[0].EstimatedVAT = &vat

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)

	s.NotEmpty(resp.ID)
	s.True(strings.HasPrefix(resp.InvoiceNumber, "SI-"))
	s.Equal(types.InvoiceTypeMulti, resp.InvoiceType)
	s.Equal("USD", resp.Currency)
	s.Len(resp.LineItems, 2)

	// Estimated cost is quantity x unit price; totals are the line sums
	s.True(resp.LineItems[0].EstimatedCost.Equal(decimal.RequireFromString("30")))
	s.True(resp.TotalAmount.Equal(decimal.RequireFromString("80")))
	s.True(resp.TotalVAT.Equal(decimal.RequireFromString("7.50")))
	s.Equal(types.PaymentStatusUnpaid, resp.LineItems[0].PaymentStatus)
	s.Equal("sup_1", resp.LineItems[0].SupplierID)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceSingleLine() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 1, "10"),
	))
	s.NoError(err)
	s.Equal(types.InvoiceTypeSingle, resp.InvoiceType)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceKeepsProvidedNumber() {
	req := s.createRequest(s.lineRequest("Widget A", 1, "10"))
	req.InvoiceNumber = "SUP-2026-0042"

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	s.Equal("SUP-2026-0042", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	// No lines
	_, err := s.service.CreateInvoice(s.GetContext(), s.createRequest())
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// Zero quantity
	_, err = s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 0, "10"),
	))
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// Negative unit price
	_, err = s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 1, "-10"),
	))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetInvoiceNotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	for i := 0; i < 3; i++ {
		_, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
			s.lineRequest("Widget", 1, "10"),
		))
		s.NoError(err)
	}

	resp, err := s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{})
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.Len(resp.Items, 3)

	resp, err = s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{Limit: 2})
	s.NoError(err)
	s.Equal(3, resp.Total)
	s.Len(resp.Items, 2)
}

func (s *InvoiceServiceSuite) TestUpdateLineQuantityPriceRecalculates() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 2, "10"),
		s.lineRequest("Widget B", 1, "5"),
	))
	s.NoError(err)

	lineID := created.LineItems[0].ID
	updated, err := s.service.UpdateLineQuantityPrice(s.GetContext(), created.ID, lineID, 4, "12.50")
	s.NoError(err)

	for _, l := range updated.LineItems {
		if l.ID == lineID {
			s.True(l.EstimatedCost.Equal(decimal.RequireFromString("50")))
		}
	}
	s.True(updated.TotalAmount.Equal(decimal.RequireFromString("55")))
}

func (s *InvoiceServiceSuite) TestUpdateLineUnknownLine() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 1, "10"),
	))
	s.NoError(err)

	_, err = s.service.UpdateLineQuantityPrice(s.GetContext(), created.ID, "line_missing", 2, "")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestSearchLinesFreeText() {
	req := s.createRequest(
		s.lineRequest("Hydraulic pump", 1, "100"),
		s.lineRequest("Sealing kit", 1, "20"),
	)
	req.Lines[0].PartNumber = "HP-2200"
	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)

	lines, err := s.service.SearchLines(s.GetContext(), &types.LineFilter{Query: "hydraulic"})
	s.NoError(err)
	s.Len(lines, 1)
	s.Equal("Hydraulic pump", lines[0].Description)

	lines, err = s.service.SearchLines(s.GetContext(), &types.LineFilter{Query: "hp-2200"})
	s.NoError(err)
	s.Len(lines, 1)

	lines, err = s.service.SearchLines(s.GetContext(), &types.LineFilter{Query: "no-such-part"})
	s.NoError(err)
	s.Empty(lines)
}

func (s *InvoiceServiceSuite) TestSearchLinesByDisplayBookingNumber() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 1, "10"),
	))
	s.NoError(err)

	// No real booking number, so the derived placeholder matches
	placeholder := FallbackBookingNumber(created.LineItems[0].ID)
	lines, err := s.service.SearchLines(s.GetContext(), &types.LineFilter{
		BookingNumber: &placeholder,
	})
	s.NoError(err)
	s.Len(lines, 1)
	s.Equal(created.LineItems[0].ID, lines[0].ID)
}

func (s *InvoiceServiceSuite) TestSearchLinesByPaymentStatus() {
	_, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(
		s.lineRequest("Widget A", 1, "10"),
	))
	s.NoError(err)

	lines, err := s.service.SearchLines(s.GetContext(), &types.LineFilter{
		PaymentStatus: []types.PaymentStatus{types.PaymentStatusPaid},
	})
	s.NoError(err)
	s.Empty(lines)

	lines, err = s.service.SearchLines(s.GetContext(), &types.LineFilter{
		PaymentStatus: []types.PaymentStatus{types.PaymentStatusUnpaid},
	})
	s.NoError(err)
	s.Len(lines, 1)
}
