package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/ledgerline/internal/api/dto"
	ierr "github.com/ledgerline/ledgerline/internal/errors"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/service"
)

type ReconciliationHandler struct {
	engine service.ReconciliationService
	log    *logger.Logger
}

func NewReconciliationHandler(engine service.ReconciliationService, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{engine: engine, log: log}
}

// GetWorkingSet reloads and returns the reconciliation working set
func (h *ReconciliationHandler) GetWorkingSet(c *gin.Context) {
	if err := h.engine.LoadWorkingSet(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

// SelectLine toggles one line's selection
func (h *ReconciliationHandler) SelectLine(c *gin.Context) {
	var req dto.SelectLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.engine.SelectLine(req.LineID, req.Checked); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

// SelectAll selects or clears every selectable line
func (h *ReconciliationHandler) SelectAll(c *gin.Context) {
	var req dto.SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	h.engine.SelectAll(req.Checked)
	c.JSON(http.StatusOK, h.snapshot())
}

// BeginEdit opens an edit for a (line, field) pair
func (h *ReconciliationHandler) BeginEdit(c *gin.Context) {
	var req dto.BeginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.engine.BeginEdit(req.LineID, req.Field); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

// CommitEdit commits the open edit with the provided value
func (h *ReconciliationHandler) CommitEdit(c *gin.Context) {
	var req dto.CommitEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	h.engine.SetEditValue(req.Value)
	if err := h.engine.CommitEdit(); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

// CancelEdit discards the open edit
func (h *ReconciliationHandler) CancelEdit(c *gin.Context) {
	h.engine.CancelEdit()
	c.JSON(http.StatusOK, h.snapshot())
}

// GetTotals returns aggregates over the current selection
func (h *ReconciliationHandler) GetTotals(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.SelectionTotals())
}

// RegisterSelection commits the selection as registration records
func (h *ReconciliationHandler) RegisterSelection(c *gin.Context) {
	var req dto.RegisterSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	batch, err := h.engine.RegisterSelection(c.Request.Context(), req.ConfirmPaid)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegistrationBatchResponse{Batch: batch})
}

// ToggleFullyPaid flips a single line's payment status
func (h *ReconciliationHandler) ToggleFullyPaid(c *gin.Context) {
	lineID := c.Param("id")
	if lineID == "" {
		c.Error(ierr.NewError("line ID is required").
			WithHint("Please provide a valid line ID").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ToggleFullyPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.engine.ToggleFullyPaid(c.Request.Context(), lineID, req.Paid); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

func (h *ReconciliationHandler) snapshot() dto.WorkingSetResponse {
	resp := dto.WorkingSetResponse{
		Lines:       h.engine.Lines(),
		AllSelected: h.engine.AllSelected(),
		Totals:      h.engine.SelectionTotals(),
	}
	if target, ok := h.engine.EditTarget(); ok {
		resp.EditTarget = &target
	}
	return resp
}
