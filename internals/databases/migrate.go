package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	billing "schoolku_backend/internals/features/finance/billings/model"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// Statements that AutoMigrate cannot express. Each one is idempotent.
var constraintDDL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	// one open invoice per (student, academic year, fee type)
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_open_per_fee
	   ON invoices (invoice_student_id, invoice_academic_year, invoice_fee_type)
	   WHERE invoice_status IN ('pending', 'partial')`,

	// a gateway transaction is recorded at most once
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_online_transaction
	   ON payments (payment_transaction_id)
	   WHERE payment_method = 'online' AND payment_transaction_id IS NOT NULL`,

	`DO $$ BEGIN
	   ALTER TABLE invoices ADD CONSTRAINT ck_invoices_amounts CHECK (
	     invoice_paid_amount >= 0
	     AND invoice_paid_amount <= invoice_total_amount
	     AND invoice_balance_amount = invoice_total_amount - invoice_paid_amount);
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
	   ALTER TABLE invoices ADD CONSTRAINT ck_invoices_status
	     CHECK (invoice_status IN ('pending', 'partial', 'paid'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
	   ALTER TABLE payments ADD CONSTRAINT ck_payments_amount_positive CHECK (payment_amount > 0);
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
	   ALTER TABLE payments ADD CONSTRAINT ck_payments_method
	     CHECK (payment_method IN ('cash', 'card', 'upi', 'bank_transfer', 'cheque', 'online'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
	   ALTER TABLE payments ADD CONSTRAINT ck_payments_cheque_number
	     CHECK (payment_method <> 'cheque' OR payment_cheque_number IS NOT NULL);
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
	   ALTER TABLE fee_structures ADD CONSTRAINT ck_fee_structures_amount CHECK (fee_structure_amount >= 0);
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
}

// Counters pick up where pre-existing INV/RCP numbers left off.
var seedSequencesDDL = []string{
	`INSERT INTO document_sequences (document_sequence_prefix, document_sequence_year, document_sequence_last_value, document_sequence_updated_at)
	 SELECT 'INV', substr(invoice_number, 4, 4)::int, max(substr(invoice_number, 8)::int), now()
	   FROM invoices WHERE invoice_number ~ '^INV[0-9]{9}$'
	  GROUP BY 2
	 ON CONFLICT (document_sequence_prefix, document_sequence_year) DO UPDATE
	   SET document_sequence_last_value = GREATEST(document_sequences.document_sequence_last_value, EXCLUDED.document_sequence_last_value)`,

	`INSERT INTO document_sequences (document_sequence_prefix, document_sequence_year, document_sequence_last_value, document_sequence_updated_at)
	 SELECT 'RCP', substr(payment_receipt_number, 4, 4)::int, max(substr(payment_receipt_number, 8)::int), now()
	   FROM payments WHERE payment_receipt_number ~ '^RCP[0-9]{9}$'
	  GROUP BY 2
	 ON CONFLICT (document_sequence_prefix, document_sequence_year) DO UPDATE
	   SET document_sequence_last_value = GREATEST(document_sequences.document_sequence_last_value, EXCLUDED.document_sequence_last_value)`,
}

// Migrate brings the fee ledger schema up to date. Safe to run repeatedly.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.Exec(constraintDDL[0]).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&studentModel.StudentModel{},
		&billing.FeeStructureModel{},
		&billing.DocumentSequenceModel{},
		&billing.InvoiceModel{},
		&billing.PaymentModel{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, stmt := range constraintDDL[1:] {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint ddl: %w", err)
		}
	}
	for _, stmt := range seedSequencesDDL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("seed document sequences: %w", err)
		}
	}

	log.Info().Msg("✅ fee ledger schema migrated")
	return nil
}
