package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/logger"
	_ "github.com/lib/pq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id VARCHAR(64) PRIMARY KEY,
		invoice_number VARCHAR(64) NOT NULL,
		supplier_id VARCHAR(64) NOT NULL DEFAULT '',
		supplier_name VARCHAR(255) NOT NULL DEFAULT '',
		total_amount NUMERIC(20,8) NOT NULL DEFAULT 0,
		total_vat NUMERIC(20,8) NOT NULL DEFAULT 0,
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		invoice_type VARCHAR(20) NOT NULL DEFAULT 'SINGLE',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id VARCHAR(64) PRIMARY KEY,
		invoice_id VARCHAR(64) NOT NULL REFERENCES invoices (id),
		description TEXT NOT NULL DEFAULT '',
		quantity BIGINT NOT NULL DEFAULT 1,
		unit_price NUMERIC(20,8) NOT NULL DEFAULT 0,
		estimated_cost NUMERIC(20,8) NOT NULL DEFAULT 0,
		actual_cost NUMERIC(20,8),
		estimated_vat NUMERIC(20,8),
		actual_vat NUMERIC(20,8),
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		supplier_id VARCHAR(64) NOT NULL DEFAULT '',
		supplier_name VARCHAR(255) NOT NULL DEFAULT '',
		part_number VARCHAR(64) NOT NULL DEFAULT '',
		booking_number VARCHAR(64) NOT NULL DEFAULT '',
		confirmation_number VARCHAR(64) NOT NULL DEFAULT '',
		departure_date VARCHAR(32) NOT NULL DEFAULT '',
		payment_status VARCHAR(20) NOT NULL DEFAULT 'UNPAID',
		fully_invoiced BOOLEAN NOT NULL DEFAULT FALSE,
		invoice_type VARCHAR(20) NOT NULL DEFAULT 'SINGLE',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS supplier_invoice_lines (
		id VARCHAR(64) PRIMARY KEY,
		invoice_line_id VARCHAR(64) NOT NULL,
		actual_cost NUMERIC(20,8) NOT NULL DEFAULT 0,
		actual_vat NUMERIC(20,8) NOT NULL DEFAULT 0,
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		description TEXT NOT NULL DEFAULT '',
		supplier_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice_id ON invoice_lines (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_lines_payment_status ON invoice_lines (payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_supplier_invoice_lines_line_id ON supplier_invoice_lines (invoice_line_id)`,
}

func main() {
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		for _, stmt := range schema {
			fmt.Println(stmt + ";")
		}
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
	}

	logger.Infow("Migration completed", "statements", len(schema))
}
