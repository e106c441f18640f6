package dto

import (
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	"github.com/ledgerline/ledgerline/internal/types"
)

// SelectLineRequest toggles one line's selection
type SelectLineRequest struct {
	LineID  string `json:"line_id" validate:"required"`
	Checked bool   `json:"checked"`
}

// SelectAllRequest toggles selection of every selectable line
type SelectAllRequest struct {
	Checked bool `json:"checked"`
}

// BeginEditRequest opens an edit for one (line, field) pair
type BeginEditRequest struct {
	LineID string          `json:"line_id" validate:"required"`
	Field  types.EditField `json:"field" validate:"required"`
}

// CommitEditRequest commits the buffered value of the open edit
type CommitEditRequest struct {
	Value string `json:"value"`
}

// RegisterSelectionRequest commits the selection as registration records
type RegisterSelectionRequest struct {
	ConfirmPaid bool `json:"confirm_paid"`
}

// ToggleFullyPaidRequest flips a single line's payment status
type ToggleFullyPaidRequest struct {
	Paid bool `json:"paid"`
}

// WorkingSetResponse is the engine snapshot handed to the rendering layer
type WorkingSetResponse struct {
	Lines       []*invoice.EnrichedLine `json:"lines"`
	AllSelected bool                    `json:"all_selected"`
	EditTarget  *types.EditTarget       `json:"edit_target,omitempty"`
	Totals      types.SelectionTotals   `json:"totals"`
}

// RegistrationBatchResponse wraps the durable output of a registration
type RegistrationBatchResponse struct {
	*registration.Batch
}
