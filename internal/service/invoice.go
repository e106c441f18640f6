package service

import (
	"context"
	"strings"

	"github.com/ledgerline/ledgerline/internal/api/dto"
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/samber/lo"
)

// InvoiceService covers invoice authoring and lookup plus the cross
// invoice line search.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateLineQuantityPrice(ctx context.Context, invoiceID, lineID string, quantity int64, unitPrice string) (*dto.InvoiceResponse, error)
	SearchLines(ctx context.Context, filter *types.LineFilter) ([]*invoice.EnrichedLine, error)
}

type invoiceService struct {
	ServiceParams
	aggregator AggregatorService
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		aggregator:    NewAggregatorService(params),
	}
}

// CreateInvoice authors a new supplier invoice with its lines
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv := req.ToInvoice(ctx)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("created supplier invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"lines", len(inv.LineItems),
	)

	return dto.NewInvoiceResponse(inv), nil
}

// GetInvoice gets an invoice by ID
func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// ListInvoices lists invoices based on filter
func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Items: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return dto.NewInvoiceResponse(inv)
		}),
		Total: count,
	}, nil
}

// UpdateLineQuantityPrice updates a line's quantity and unit price and
// recomputes the estimated cost and invoice totals. Manual estimated cost
// values are overwritten by the recalculation.
func (s *invoiceService) UpdateLineQuantityPrice(ctx context.Context, invoiceID, lineID string, quantity int64, unitPrice string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	line, found := lo.Find(inv.LineItems, func(l *invoice.LineItem) bool {
		return l.ID == lineID
	})
	if !found {
		return nil, lineNotFound(lineID)
	}

	if quantity > 0 {
		line.Quantity = quantity
	}
	if unitPrice != "" {
		price := parseAmount(unitPrice)
		line.UnitPrice = price
	}
	line.Recalculate()
	if err := line.Validate(); err != nil {
		return nil, err
	}

	inv.RecalculateTotals()
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(inv), nil
}

// SearchLines searches individual invoice lines across all invoices by
// free text over description, supplier name, part number and the booking
// correlation keys.
func (s *invoiceService) SearchLines(ctx context.Context, filter *types.LineFilter) ([]*invoice.EnrichedLine, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.aggregator.LoadEnrichedLines(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Filter(lines, func(line *invoice.EnrichedLine, _ int) bool {
		return matchesLineFilter(line, filter)
	}), nil
}

func lineNotFound(lineID string) error {
	return ierr.NewError("line not found").
		WithHintf("No invoice line with id %s", lineID).
		Mark(ierr.ErrNotFound)
}

func matchesLineFilter(line *invoice.EnrichedLine, filter *types.LineFilter) bool {
	if filter == nil {
		return true
	}

	if filter.SupplierID != nil && line.SupplierID != *filter.SupplierID {
		return false
	}

	if filter.BookingNumber != nil &&
		line.BookingNumber != *filter.BookingNumber &&
		line.DisplayBookingNumber != *filter.BookingNumber {
		return false
	}

	if len(filter.PaymentStatus) > 0 && !lo.Contains(filter.PaymentStatus, line.PaymentStatus) {
		return false
	}

	if filter.Query != "" {
		query := strings.ToLower(filter.Query)
		haystack := strings.ToLower(strings.Join([]string{
			line.Description,
			line.SupplierName,
			line.PartNumber,
			line.InvoiceNumber,
			line.ConfirmationNumber,
		}, " "))
		if !strings.Contains(haystack, query) {
			return false
		}
	}

	return true
}
