package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatus represents the payment status of an invoice line
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusUnpaid,
		PaymentStatusPartial,
		PaymentStatusPaid,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment status: %s", s)
	}
	return nil
}

// IsSelectable reports whether a line in this status may join the
// selection set. Paid lines are locked; partial behaves like unpaid.
func (s PaymentStatus) IsSelectable() bool {
	return s != PaymentStatusPaid
}

// CanTransition reports whether a transition to target is allowed.
// Unpaid and partial lines can be marked paid; paid lines can always be
// reopened to unpaid. PARTIAL is never produced here: it is an external
// input state set by out of scope backend logic.
func (s PaymentStatus) CanTransition(target PaymentStatus) bool {
	switch target {
	case PaymentStatusPaid:
		return s == PaymentStatusUnpaid || s == PaymentStatusPartial
	case PaymentStatusUnpaid:
		return s == PaymentStatusPaid
	default:
		return false
	}
}

// PaymentStatusUpdate is one (line id, new status) pair handed to the
// persistence collaborator after a transition.
type PaymentStatusUpdate struct {
	LineID string        `json:"line_id"`
	Status PaymentStatus `json:"status"`
}
