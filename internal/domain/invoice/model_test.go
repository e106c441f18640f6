package invoice

import (
	"testing"

	"github.com/ledgerline/ledgerline/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineItemRecalculate(t *testing.T) {
	line := &LineItem{
		Quantity:      3,
		UnitPrice:     decimal.RequireFromString("12.50"),
		EstimatedCost: decimal.RequireFromString("999"), // manual value is overwritten
	}

	line.Recalculate()
	assert.True(t, line.EstimatedCost.Equal(decimal.RequireFromString("37.50")))
}

func TestRecalculateTotals(t *testing.T) {
	vat := decimal.RequireFromString("5")
	inv := &Invoice{
		InvoiceNumber: "SI-TEST1",
		InvoiceType:   types.InvoiceTypeMulti,
		LineItems: []*LineItem{
			{Quantity: 1, EstimatedCost: decimal.RequireFromString("100"), EstimatedVAT: &vat},
			{Quantity: 1, EstimatedCost: decimal.RequireFromString("50")},
		},
	}

	inv.RecalculateTotals()
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("150")))
	assert.True(t, inv.TotalVAT.Equal(decimal.RequireFromString("5")))
}

func TestInvoiceValidate(t *testing.T) {
	valid := &Invoice{
		InvoiceNumber: "SI-TEST1",
		InvoiceType:   types.InvoiceTypeSingle,
		LineItems: []*LineItem{
			{Quantity: 1, UnitPrice: decimal.RequireFromString("10")},
		},
	}
	assert.NoError(t, valid.Validate())

	missingNumber := &Invoice{InvoiceType: types.InvoiceTypeSingle}
	assert.Error(t, missingNumber.Validate())

	badType := &Invoice{InvoiceNumber: "SI-TEST1", InvoiceType: "BULK"}
	assert.Error(t, badType.Validate())

	badLine := &Invoice{
		InvoiceNumber: "SI-TEST1",
		InvoiceType:   types.InvoiceTypeSingle,
		LineItems:     []*LineItem{{Quantity: 0}},
	}
	assert.Error(t, badLine.Validate())
}

func TestActualCostOrZero(t *testing.T) {
	line := &LineItem{}
	assert.True(t, line.ActualCostOrZero().IsZero())
	assert.True(t, line.ActualVATOrZero().IsZero())

	cost := decimal.RequireFromString("42")
	line.ActualCost = &cost
	assert.True(t, line.ActualCostOrZero().Equal(cost))
}
