package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/ledgerline/internal/api"
	v1 "github.com/ledgerline/ledgerline/internal/api/v1"
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/notify"
	"github.com/ledgerline/ledgerline/internal/repository"
	"github.com/ledgerline/ledgerline/internal/repository/postgres"
	"github.com/ledgerline/ledgerline/internal/service"
	"github.com/ledgerline/ledgerline/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewClient,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewLineRepository,
			repository.NewRegistrationRepository,

			// Notifications
			notify.NewNotifier,

			// Services
			service.NewServiceParams,
			service.NewAggregatorService,
			service.NewReconciliationService,
			service.NewAllocationService,
			service.NewInvoiceService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	reconciliationService service.ReconciliationService,
	allocationService service.AllocationService,
) api.Handlers {
	return api.Handlers{
		Invoice:        v1.NewInvoiceHandler(invoiceService, logger),
		Reconciliation: v1.NewReconciliationHandler(reconciliationService, logger),
		Allocation:     v1.NewAllocationHandler(allocationService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
