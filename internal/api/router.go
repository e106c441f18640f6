package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/ledgerline/ledgerline/internal/api/v1"
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/rest/middleware"
	"github.com/ledgerline/ledgerline/internal/types"
)

// Handlers groups the v1 handlers wired into the router
type Handlers struct {
	Invoice        *v1.InvoiceHandler
	Reconciliation *v1.ReconciliationHandler
	Allocation     *v1.AllocationHandler
}

// NewRouter builds the gin engine with middleware and v1 routes
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/v1")

	invoices := group.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)

		invoices.POST("/:id/allocation", handlers.Allocation.StartAllocation)
		invoices.GET("/:id/allocation", handlers.Allocation.GetAllocation)
		invoices.POST("/:id/allocation/entries", handlers.Allocation.AddEntry)
		invoices.PUT("/:id/allocation/entries/:entryId", handlers.Allocation.UpdateEntry)
		invoices.DELETE("/:id/allocation/entries/:entryId", handlers.Allocation.RemoveEntry)
		invoices.POST("/:id/allocation/sync", handlers.Allocation.SyncTotals)
	}

	lines := group.Group("/lines")
	{
		lines.GET("/search", handlers.Invoice.SearchLines)
		lines.POST("/:id/fully-paid", handlers.Reconciliation.ToggleFullyPaid)
	}

	reconciliation := group.Group("/reconciliation")
	{
		reconciliation.GET("/working-set", handlers.Reconciliation.GetWorkingSet)
		reconciliation.POST("/select", handlers.Reconciliation.SelectLine)
		reconciliation.POST("/select-all", handlers.Reconciliation.SelectAll)
		reconciliation.POST("/edit", handlers.Reconciliation.BeginEdit)
		reconciliation.POST("/edit/commit", handlers.Reconciliation.CommitEdit)
		reconciliation.POST("/edit/cancel", handlers.Reconciliation.CancelEdit)
		reconciliation.GET("/totals", handlers.Reconciliation.GetTotals)
		reconciliation.POST("/register", handlers.Reconciliation.RegisterSelection)
	}

	log.Infow("router initialized", "mode", cfg.Deployment.Mode)
	return router
}
