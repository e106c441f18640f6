package service

import (
	"context"
	"strconv"
	"unicode/utf16"

	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/types"
)

// AggregatorService derives a flat, enriched list of line items from a set
// of invoices and the standalone line repository, attaching invoice level
// context to each line.
type AggregatorService interface {
	// Aggregate flattens the given invoices into enriched lines. Pure:
	// same input, same output, no I/O.
	Aggregate(invoices []*invoice.Invoice) []*invoice.EnrichedLine

	// LoadEnrichedLines fetches invoices and the line repository and
	// returns the combined enriched line list.
	LoadEnrichedLines(ctx context.Context) ([]*invoice.EnrichedLine, error)
}

type aggregatorService struct {
	ServiceParams
}

// NewAggregatorService creates a new aggregator service
func NewAggregatorService(params ServiceParams) AggregatorService {
	return &aggregatorService{ServiceParams: params}
}

// Aggregate flattens each invoice's line items. Lines are never dropped:
// missing correlation identifiers degrade to an empty string placeholder
// and the display booking number falls back to a derived one.
func (s *aggregatorService) Aggregate(invoices []*invoice.Invoice) []*invoice.EnrichedLine {
	enriched := make([]*invoice.EnrichedLine, 0)

	for _, inv := range invoices {
		for _, line := range inv.LineItems {
			if line == nil {
				continue
			}
			enriched = append(enriched, s.enrich(inv, line))
		}
	}

	return enriched
}

func (s *aggregatorService) enrich(inv *invoice.Invoice, line *invoice.LineItem) *invoice.EnrichedLine {
	item := *line
	item.InvoiceID = inv.ID

	if item.Currency == "" {
		item.Currency = types.DefaultCurrency
	}
	if item.PaymentStatus == "" {
		item.PaymentStatus = types.PaymentStatusUnpaid
	}

	e := &invoice.EnrichedLine{
		LineItem:           item,
		InvoiceNumber:      inv.InvoiceNumber,
		InvoiceTotalAmount: inv.TotalAmount,
	}
	e.DisplayBookingNumber = displayBookingNumber(&item)
	return e
}

// LoadEnrichedLines aggregates invoice lines and appends any standalone
// repository lines not already represented, keyed by line id.
func (s *aggregatorService) LoadEnrichedLines(ctx context.Context) ([]*invoice.EnrichedLine, error) {
	invoices, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{})
	if err != nil {
		return nil, err
	}

	lines := s.Aggregate(invoices)
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		seen[line.ID] = true
	}

	repoLines, err := s.LineRepo.ListEnriched(ctx, &types.LineFilter{})
	if err != nil {
		return nil, err
	}

	for _, line := range repoLines {
		if line == nil || seen[line.ID] {
			continue
		}
		if line.Currency == "" {
			line.Currency = types.DefaultCurrency
		}
		if line.PaymentStatus == "" {
			line.PaymentStatus = types.PaymentStatusUnpaid
		}
		if line.DisplayBookingNumber == "" {
			line.DisplayBookingNumber = displayBookingNumber(&line.LineItem)
		}
		lines = append(lines, line)
		seen[line.ID] = true
	}

	s.Logger.Debugw("aggregated enriched lines",
		"invoices", len(invoices),
		"lines", len(lines),
	)

	return lines, nil
}

func displayBookingNumber(line *invoice.LineItem) string {
	if line.BookingNumber != "" {
		return line.BookingNumber
	}
	return FallbackBookingNumber(line.ID)
}

// FallbackBookingNumber derives a stable 8 digit numeric placeholder from
// a line identifier. The rolling hash runs over UTF-16 code units so the
// same id always renders the same placeholder.
func FallbackBookingNumber(lineID string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(lineID)) {
		h = h*31 + int32(u)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}

	return strconv.FormatInt(10000000+v%90000000, 10)
}
