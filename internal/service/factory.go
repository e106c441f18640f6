package service

import (
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/notify"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	InvoiceRepo      invoice.Repository
	LineRepo         invoice.LineRepository
	RegistrationRepo registration.Repository

	// Notification surface
	Notifier notify.Notifier
}

// NewServiceParams creates service params with all dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	invoiceRepo invoice.Repository,
	lineRepo invoice.LineRepository,
	registrationRepo registration.Repository,
	notifier notify.Notifier,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		InvoiceRepo:      invoiceRepo,
		LineRepo:         lineRepo,
		RegistrationRepo: registrationRepo,
		Notifier:         notifier,
	}
}
