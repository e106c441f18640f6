package types

import (
	"testing"
)

func TestPaymentStatusCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   PaymentStatus
		target PaymentStatus
		want   bool
	}{
		{"unpaid to paid", PaymentStatusUnpaid, PaymentStatusPaid, true},
		{"partial to paid", PaymentStatusPartial, PaymentStatusPaid, true},
		{"paid to paid", PaymentStatusPaid, PaymentStatusPaid, false},
		{"paid to unpaid", PaymentStatusPaid, PaymentStatusUnpaid, true},
		{"unpaid to unpaid", PaymentStatusUnpaid, PaymentStatusUnpaid, false},
		{"partial to unpaid", PaymentStatusPartial, PaymentStatusUnpaid, false},
		{"unpaid to partial", PaymentStatusUnpaid, PaymentStatusPartial, false},
		{"paid to partial", PaymentStatusPaid, PaymentStatusPartial, false},
		{"partial to partial", PaymentStatusPartial, PaymentStatusPartial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.target); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.target, got, tt.want)
			}
		})
	}
}

func TestPaymentStatusIsSelectable(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{PaymentStatusUnpaid, true},
		{PaymentStatusPartial, true},
		{PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsSelectable(); got != tt.want {
			t.Errorf("IsSelectable(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPaymentStatusValidate(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid} {
		if err := status.Validate(); err != nil {
			t.Errorf("Validate(%s) returned %v", status, err)
		}
	}
	if err := PaymentStatus("SETTLED").Validate(); err == nil {
		t.Error("Validate(SETTLED) should fail")
	}
	if err := PaymentStatus("").Validate(); err == nil {
		t.Error("Validate(empty) should fail")
	}
}
