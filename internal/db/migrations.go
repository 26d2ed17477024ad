package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Constraint names the repositories match on when mapping unique violations.
const (
	ConstraintEstimateNumber      = "uq_estimates_number"
	ConstraintInvoiceNumber       = "uq_invoices_number"
	ConstraintInvoiceEstimate     = "uq_invoices_derived_from_estimate_id"
	ConstraintCustomerEmail       = "uq_customers_email"
	ConstraintUserEmail           = "uq_users_email"
	ConstraintJobAssignment       = "uq_job_assignments_job_employee"
	ConstraintOpenTimeEntry       = "uq_time_entries_open_per_employee"
	ConstraintAssignmentEmployee  = "fk_job_assignments_employee"
	ConstraintTimeEntryEmployee   = "fk_time_entries_employee"
	ConstraintInvoiceEstimateLink = "fk_invoices_estimate"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('ADMIN', 'MANAGER', 'EMPLOYEE');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'estimate_status') THEN
			CREATE TYPE estimate_status AS ENUM ('DRAFT', 'SENT', 'ACCEPTED', 'DECLINED', 'INVOICED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'invoice_status') THEN
			CREATE TYPE invoice_status AS ENUM ('DRAFT', 'SENT', 'PAID', 'VOID');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'lead_source') THEN
			CREATE TYPE lead_source AS ENUM ('CONTACT', 'REQUEST_ESTIMATE');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL,
		password_hash TEXT NOT NULL,
		role user_role NOT NULL DEFAULT 'EMPLOYEE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_users_email UNIQUE (email)
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_customers_email UNIQUE (email)
	);`,
	`CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		role user_role NOT NULL DEFAULT 'EMPLOYEE',
		user_id UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS leads (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		message TEXT NOT NULL,
		source lead_source NOT NULL DEFAULT 'CONTACT',
		job_address TEXT,
		moving_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		number VARCHAR(32) NOT NULL,
		status estimate_status NOT NULL DEFAULT 'DRAFT',
		moving_date TIMESTAMPTZ NOT NULL,
		customer_id UUID REFERENCES customers(id) ON DELETE SET NULL,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(64) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_job_address TEXT NOT NULL,
		currency_symbol VARCHAR(8) NOT NULL,
		subtotal BIGINT NOT NULL,
		tax BIGINT NOT NULL DEFAULT 0,
		total BIGINT NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_estimates_number UNIQUE (number)
	);`,
	`CREATE TABLE IF NOT EXISTS estimate_line_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		estimate_id UUID NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		line_key VARCHAR(32),
		description TEXT NOT NULL,
		qty BIGINT NOT NULL,
		unit_price BIGINT NOT NULL,
		total_price BIGINT NOT NULL,
		metadata JSONB,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		number VARCHAR(32) NOT NULL,
		status invoice_status NOT NULL DEFAULT 'DRAFT',
		derived_from_estimate_id UUID,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(64) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_job_address TEXT NOT NULL,
		currency_symbol VARCHAR(8) NOT NULL,
		subtotal BIGINT NOT NULL,
		tax BIGINT NOT NULL DEFAULT 0,
		total BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_invoices_number UNIQUE (number),
		CONSTRAINT uq_invoices_derived_from_estimate_id UNIQUE (derived_from_estimate_id),
		CONSTRAINT fk_invoices_estimate FOREIGN KEY (derived_from_estimate_id)
			REFERENCES estimates(id) ON DELETE SET NULL
	);`,
	`CREATE TABLE IF NOT EXISTS invoice_line_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		line_key VARCHAR(32),
		description TEXT NOT NULL,
		qty BIGINT NOT NULL,
		unit_price BIGINT NOT NULL,
		total_price BIGINT NOT NULL,
		metadata JSONB,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title VARCHAR(255) NOT NULL,
		address TEXT NOT NULL,
		start_date_time TIMESTAMPTZ NOT NULL,
		end_date_time TIMESTAMPTZ NOT NULL,
		estimate_id UUID REFERENCES estimates(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS job_assignments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		employee_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_job_assignments_job_employee UNIQUE (job_id, employee_id),
		CONSTRAINT fk_job_assignments_employee FOREIGN KEY (employee_id)
			REFERENCES employees(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id UUID NOT NULL,
		clock_in TIMESTAMPTZ NOT NULL,
		clock_out TIMESTAMPTZ,
		duration_minutes BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT fk_time_entries_employee FOREIGN KEY (employee_id)
			REFERENCES employees(id) ON DELETE CASCADE
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_time_entries_open_per_employee
		ON time_entries (employee_id) WHERE clock_out IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_created_at ON estimates (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_status ON estimates (status);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_line_items_estimate_id ON estimate_line_items (estimate_id);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_line_items_invoice_id ON invoice_line_items (invoice_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_start ON jobs (start_date_time);`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_employee_clock_in ON time_entries (employee_id, clock_in DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
