// file: internals/features/finance/billings/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// Constraint names created by database.Migrate.
const (
	ConstraintOpenInvoice    = "uq_invoices_open_per_fee"
	ConstraintOnlineTxn      = "uq_payments_online_transaction"
	ConstraintInvoiceNumber  = "uq_invoices_number"
	ConstraintReceiptNumber  = "uq_payments_receipt_number"
	studentJoin              = "JOIN students ON students.student_id = invoices.invoice_student_id"
	paymentsChronological    = "payment_date ASC, payment_receipt_number ASC"
	invoicesNewestFirst      = "invoices.invoice_created_at DESC, invoices.invoice_number DESC"
	nextSequenceSQL          = `
INSERT INTO document_sequences (document_sequence_prefix, document_sequence_year, document_sequence_last_value, document_sequence_updated_at)
VALUES (?, ?, 1, now())
ON CONFLICT (document_sequence_prefix, document_sequence_year)
DO UPDATE SET document_sequence_last_value = document_sequences.document_sequence_last_value + 1,
              document_sequence_updated_at = now()
RETURNING document_sequence_last_value`
)

type PostgresStore struct {
	db *gorm.DB
}

var _ service.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresStore{db: tx})
	})
}

/* ===================== fee structures ===================== */

func (s *PostgresStore) CreateFeeStructure(ctx context.Context, m *model.FeeStructureModel) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *PostgresStore) SaveFeeStructure(ctx context.Context, m *model.FeeStructureModel) error {
	res := s.db.WithContext(ctx).
		Model(&model.FeeStructureModel{}).
		Where("fee_structure_id = ?", m.FeeStructureID).
		Select("fee_structure_class", "fee_structure_academic_year", "fee_structure_fee_type",
			"fee_structure_amount", "fee_structure_frequency", "fee_structure_due_date",
			"fee_structure_description", "fee_structure_status", "fee_structure_updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrFeeStructureNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteFeeStructure(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.FeeStructureModel{}, "fee_structure_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrFeeStructureNotFound
	}
	return nil
}

func (s *PostgresStore) GetFeeStructure(ctx context.Context, id uuid.UUID) (*model.FeeStructureModel, error) {
	var m model.FeeStructureModel
	if err := s.db.WithContext(ctx).First(&m, "fee_structure_id = ?", id).Error; err != nil {
		return nil, notFound(err, service.ErrFeeStructureNotFound)
	}
	return &m, nil
}

func (s *PostgresStore) ListFeeStructures(ctx context.Context, f service.StructureFilter) ([]model.FeeStructureModel, error) {
	q := s.db.WithContext(ctx).Model(&model.FeeStructureModel{})
	if f.Class != "" {
		q = q.Where("fee_structure_class = ?", f.Class)
	}
	if f.AcademicYear != "" {
		q = q.Where("fee_structure_academic_year = ?", f.AcademicYear)
	}
	if f.Status != "" {
		q = q.Where("fee_structure_status = ?", f.Status)
	}
	var rows []model.FeeStructureModel
	err := q.Order("fee_structure_class ASC, fee_structure_fee_type ASC, fee_structure_seq ASC").Find(&rows).Error
	return rows, err
}

func (s *PostgresStore) FindActiveFeeStructure(ctx context.Context, class, academicYear, feeType string) (*model.FeeStructureModel, error) {
	var m model.FeeStructureModel
	err := s.db.WithContext(ctx).
		Where("fee_structure_class = ? AND fee_structure_academic_year = ? AND fee_structure_fee_type = ?", class, academicYear, feeType).
		Where("fee_structure_status = ?", model.FeeStructureActive).
		Order("fee_structure_seq ASC").
		First(&m).Error
	if err != nil {
		return nil, notFound(err, service.ErrStructureNotFound)
	}
	return &m, nil
}

/* ===================== students ===================== */

func (s *PostgresStore) ListActiveStudents(ctx context.Context, class string, ids []uuid.UUID) ([]studentModel.StudentModel, error) {
	q := s.db.WithContext(ctx).
		Where("student_class = ? AND student_status = ?", class, studentModel.StudentActive)
	if len(ids) > 0 {
		q = q.Where("student_id IN ?", ids)
	}
	var rows []studentModel.StudentModel
	err := q.Order("student_admission_no ASC").Find(&rows).Error
	return rows, err
}

/* ===================== invoices ===================== */

func (s *PostgresStore) HasOpenInvoice(ctx context.Context, studentID uuid.UUID, academicYear, feeType string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Where("invoice_student_id = ? AND invoice_academic_year = ? AND invoice_fee_type = ?", studentID, academicYear, feeType).
		Where("invoice_status IN ?", model.OpenInvoiceStatuses).
		Count(&n).Error
	return n > 0, err
}

func (s *PostgresStore) CreateInvoice(ctx context.Context, m *model.InvoiceModel) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, ConstraintOpenInvoice):
		return service.ErrOpenInvoiceExists
	case isUniqueViolation(err, ConstraintInvoiceNumber):
		return fmt.Errorf("%w: %s", service.ErrDuplicateNumber, m.InvoiceNumber)
	default:
		return err
	}
}

func (s *PostgresStore) LockInvoice(ctx context.Context, id uuid.UUID) (*model.InvoiceModel, error) {
	var m model.InvoiceModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "invoice_id = ?", id).Error
	if err != nil {
		return nil, notFound(err, service.ErrInvoiceNotFound)
	}
	return &m, nil
}

func (s *PostgresStore) UpdateInvoiceBalance(ctx context.Context, m *model.InvoiceModel) error {
	res := s.db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Where("invoice_id = ?", m.InvoiceID).
		Updates(map[string]any{
			"invoice_paid_amount":    m.InvoicePaidAmount,
			"invoice_balance_amount": m.InvoiceBalanceAmount,
			"invoice_status":         m.InvoiceStatus,
			"invoice_updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrInvoiceNotFound
	}
	return nil
}

func (s *PostgresStore) GetInvoice(ctx context.Context, id uuid.UUID) (*model.InvoiceModel, error) {
	var m model.InvoiceModel
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order(paymentsChronological) }).
		First(&m, "invoice_id = ?", id).Error
	if err != nil {
		return nil, notFound(err, service.ErrInvoiceNotFound)
	}
	return &m, nil
}

func (s *PostgresStore) FindInvoiceByNumber(ctx context.Context, number string) (*model.InvoiceModel, error) {
	var m model.InvoiceModel
	err := s.db.WithContext(ctx).Preload("Student").First(&m, "invoice_number = ?", number).Error
	if err != nil {
		return nil, notFound(err, service.ErrInvoiceNotFound)
	}
	return &m, nil
}

func (s *PostgresStore) ListInvoices(ctx context.Context, f service.InvoiceFilter) ([]model.InvoiceModel, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.InvoiceModel{}).Joins(studentJoin)

	if f.Class != "" {
		q = q.Where("students.student_class = ?", f.Class)
	}
	if f.AcademicYear != "" {
		q = q.Where("invoices.invoice_academic_year = ?", f.AcademicYear)
	}
	switch model.InvoiceStatus(f.Status) {
	case "":
	case model.InvoiceStatusOverdue:
		q = q.Where("invoices.invoice_status IN ? AND invoices.invoice_due_date < ?", model.OpenInvoiceStatuses, f.Today)
	default:
		q = q.Where("invoices.invoice_status = ?", f.Status)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(students.student_first_name ILIKE ? OR students.student_last_name ILIKE ? OR students.student_admission_no ILIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.InvoiceModel
	q = q.Preload("Student").Order(invoicesNewestFirst).Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *PostgresStore) ListStudentInvoices(ctx context.Context, studentID uuid.UUID) ([]model.InvoiceModel, error) {
	var rows []model.InvoiceModel
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order(paymentsChronological) }).
		Where("invoice_student_id = ?", studentID).
		Order("invoice_created_at DESC, invoice_number DESC").
		Find(&rows).Error
	return rows, err
}

/* ===================== payments ===================== */

func (s *PostgresStore) CreatePayment(ctx context.Context, m *model.PaymentModel) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, ConstraintOnlineTxn):
		return service.ErrDuplicatePayment
	case isUniqueViolation(err, ConstraintReceiptNumber):
		return fmt.Errorf("%w: %s", service.ErrDuplicateNumber, m.PaymentReceiptNumber)
	default:
		return err
	}
}

func (s *PostgresStore) GetPayment(ctx context.Context, id uuid.UUID) (*model.PaymentModel, error) {
	var m model.PaymentModel
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Invoice").
		First(&m, "payment_id = ?", id).Error
	if err != nil {
		return nil, notFound(err, service.ErrPaymentNotFound)
	}
	return &m, nil
}

func (s *PostgresStore) FindOnlinePayment(ctx context.Context, transactionID string) (*model.PaymentModel, error) {
	var m model.PaymentModel
	err := s.db.WithContext(ctx).
		First(&m, "payment_method = ? AND payment_transaction_id = ?", model.MethodOnline, transactionID).Error
	if err != nil {
		return nil, notFound(err, service.ErrPaymentNotFound)
	}
	return &m, nil
}

/* ===================== sequences ===================== */

// NextSequence bumps the (prefix, year) counter in the caller's transaction.
// A rolled-back transaction gives the number back.
func (s *PostgresStore) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	var next int64
	if err := s.db.WithContext(ctx).Raw(nextSequenceSQL, prefix, year).Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", prefix, err)
	}
	return next, nil
}

/* ===================== reports ===================== */

func (s *PostgresStore) ListDefaulters(ctx context.Context, f service.DefaulterFilter) ([]model.InvoiceModel, error) {
	q := s.db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Joins(studentJoin).
		Preload("Student").
		Where("invoices.invoice_status IN ? AND invoices.invoice_due_date < ?", model.OpenInvoiceStatuses, f.Today)
	if f.Class != "" {
		q = q.Where("students.student_class = ?", f.Class)
	}
	if f.AcademicYear != "" {
		q = q.Where("invoices.invoice_academic_year = ?", f.AcademicYear)
	}
	var rows []model.InvoiceModel
	err := q.Order("invoices.invoice_due_date ASC, invoices.invoice_number ASC").Find(&rows).Error
	return rows, err
}

func (s *PostgresStore) AggregateInvoices(ctx context.Context, f service.StatsFilter) (service.InvoiceAggregate, error) {
	var agg service.InvoiceAggregate
	q := s.db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(invoice_total_amount), 0) AS total,
			COALESCE(SUM(invoice_paid_amount), 0) AS paid,
			COALESCE(SUM(invoice_balance_amount), 0) AS balance,
			COUNT(*) FILTER (WHERE invoice_status = ?) AS paid_count,
			COUNT(*) FILTER (WHERE invoice_status = ?) AS pending_count,
			COUNT(*) FILTER (WHERE invoice_status = ?) AS partial_count,
			COUNT(*) FILTER (WHERE invoice_status IN ? AND invoice_due_date < ?) AS overdue_count`,
			model.InvoiceStatusPaid, model.InvoiceStatusPending, model.InvoiceStatusPartial,
			model.OpenInvoiceStatuses, f.Today)
	if f.AcademicYear != "" {
		q = q.Where("invoice_academic_year = ?", f.AcademicYear)
	}
	if err := q.Scan(&agg).Error; err != nil {
		return agg, err
	}
	return agg, nil
}

/* ===================== helpers ===================== */

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// isUniqueViolation matches SQLSTATE 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
