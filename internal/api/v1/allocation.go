package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/service"
)

type AllocationHandler struct {
	service service.AllocationService
	log     *logger.Logger
}

func NewAllocationHandler(service service.AllocationService, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{service: service, log: log}
}

type updateEntryRequest struct {
	Amount *string `json:"amount,omitempty"`
	VAT    *string `json:"vat,omitempty"`
}

// StartAllocation seeds an allocation session from the invoice totals
func (h *AllocationHandler) StartAllocation(c *gin.Context) {
	allocation, err := h.service.StartAllocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, h.respond(allocation))
}

// GetAllocation returns the current allocation session
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	allocation, err := h.service.GetAllocation(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.respond(allocation))
}

// AddEntry appends a zero amount entry
func (h *AllocationHandler) AddEntry(c *gin.Context) {
	allocation, err := h.service.AddEntry(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.respond(allocation))
}

// RemoveEntry removes an entry unless it is the last one
func (h *AllocationHandler) RemoveEntry(c *gin.Context) {
	allocation, err := h.service.RemoveEntry(c.Param("id"), c.Param("entryId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.respond(allocation))
}

// UpdateEntry updates an entry's amount and/or VAT with clamping
func (h *AllocationHandler) UpdateEntry(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	invoiceID, entryID := c.Param("id"), c.Param("entryId")

	var allocation *service.Allocation
	var err error
	if req.Amount != nil {
		allocation, err = h.service.UpdateEntryAmount(invoiceID, entryID, *req.Amount)
		if err != nil {
			c.Error(err)
			return
		}
	}
	if req.VAT != nil {
		allocation, err = h.service.UpdateEntryVAT(invoiceID, entryID, *req.VAT)
		if err != nil {
			c.Error(err)
			return
		}
	}

	if allocation == nil {
		c.Error(ierr.NewError("nothing to update").
			WithHint("Provide an amount or a vat value").
			Mark(ierr.ErrValidation))
		return
	}

	c.JSON(http.StatusOK, h.respond(allocation))
}

// SyncTotals resyncs the first entry to the invoice's current totals
func (h *AllocationHandler) SyncTotals(c *gin.Context) {
	allocation, err := h.service.SyncTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.respond(allocation))
}

func (h *AllocationHandler) respond(allocation *service.Allocation) gin.H {
	return gin.H{
		"allocation": allocation,
		"valid":      allocation.Valid(),
	}
}
