package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/ledgerline/internal/domain/invoice"
	"github.com/ledgerline/ledgerline/internal/domain/registration"
	"github.com/ledgerline/ledgerline/internal/logger"
	"github.com/ledgerline/ledgerline/internal/repository/postgres"
)

func NewInvoiceRepository(db *sqlx.DB, log *logger.Logger) invoice.Repository {
	return postgres.NewInvoiceRepository(db, log)
}

func NewLineRepository(db *sqlx.DB, log *logger.Logger) invoice.LineRepository {
	return postgres.NewLineRepository(db, log)
}

func NewRegistrationRepository(db *sqlx.DB, log *logger.Logger) registration.Repository {
	return postgres.NewRegistrationRepository(db, log)
}
