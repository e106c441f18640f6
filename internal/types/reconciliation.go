package types

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// EditField identifies which monetary field of a line is being edited
type EditField string

const (
	EditFieldCost EditField = "cost"
	EditFieldVAT  EditField = "vat"
)

func (f EditField) String() string {
	return string(f)
}

func (f EditField) Validate() error {
	allowed := []EditField{EditFieldCost, EditFieldVAT}
	if !lo.Contains(allowed, f) {
		return fmt.Errorf("invalid edit field: %s", f)
	}
	return nil
}

// EditTarget identifies the single (line, field) pair being edited
type EditTarget struct {
	LineID string    `json:"line_id"`
	Field  EditField `json:"field"`
}

// SelectionTotals aggregates the currently selected lines of a
// reconciliation session
type SelectionTotals struct {
	Count              int             `json:"count"`
	TotalEstimatedCost decimal.Decimal `json:"total_estimated_cost"`
	TotalActualCost    decimal.Decimal `json:"total_actual_cost"`

	// TotalInvoicedAmount counts each parent invoice's total exactly once
	// regardless of how many of its lines are selected.
	TotalInvoicedAmount decimal.Decimal `json:"total_invoiced_amount"`
}

// NotificationKind classifies a message sent to the notification surface
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)
