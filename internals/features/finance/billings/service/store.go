// file: internals/features/finance/billings/service/store.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// Store is the persistence boundary of the fee ledger.
// Implementations: store.PostgresStore (gorm) and store.MemoryStore (tests, local runs).
type Store interface {
	// WithTx runs fn in one transaction. The Store handed to fn is bound to it;
	// any error from fn rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// fee structures
	CreateFeeStructure(ctx context.Context, m *model.FeeStructureModel) error
	SaveFeeStructure(ctx context.Context, m *model.FeeStructureModel) error
	DeleteFeeStructure(ctx context.Context, id uuid.UUID) error
	GetFeeStructure(ctx context.Context, id uuid.UUID) (*model.FeeStructureModel, error)
	ListFeeStructures(ctx context.Context, f StructureFilter) ([]model.FeeStructureModel, error)
	FindActiveFeeStructure(ctx context.Context, class, academicYear, feeType string) (*model.FeeStructureModel, error)

	// students (read-only)
	ListActiveStudents(ctx context.Context, class string, ids []uuid.UUID) ([]studentModel.StudentModel, error)

	// invoices
	HasOpenInvoice(ctx context.Context, studentID uuid.UUID, academicYear, feeType string) (bool, error)
	CreateInvoice(ctx context.Context, m *model.InvoiceModel) error
	LockInvoice(ctx context.Context, id uuid.UUID) (*model.InvoiceModel, error)
	UpdateInvoiceBalance(ctx context.Context, m *model.InvoiceModel) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.InvoiceModel, error)
	FindInvoiceByNumber(ctx context.Context, number string) (*model.InvoiceModel, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]model.InvoiceModel, int64, error)
	ListStudentInvoices(ctx context.Context, studentID uuid.UUID) ([]model.InvoiceModel, error)

	// payments
	CreatePayment(ctx context.Context, m *model.PaymentModel) error
	GetPayment(ctx context.Context, id uuid.UUID) (*model.PaymentModel, error)
	FindOnlinePayment(ctx context.Context, transactionID string) (*model.PaymentModel, error)

	// document numbers
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)

	// reports
	ListDefaulters(ctx context.Context, f DefaulterFilter) ([]model.InvoiceModel, error)
	AggregateInvoices(ctx context.Context, f StatsFilter) (InvoiceAggregate, error)
}

type StructureFilter struct {
	Class        string
	AcademicYear string
	Status       string
}

// InvoiceFilter: Status "overdue" means open and due before Today.
type InvoiceFilter struct {
	Search       string
	Status       string
	Class        string
	AcademicYear string
	Today        time.Time
	Offset       int
	Limit        int
}

type DefaulterFilter struct {
	Class        string
	AcademicYear string
	Today        time.Time
}

type StatsFilter struct {
	AcademicYear string
	Today        time.Time
}

// InvoiceAggregate: sums are zero, never null, on an empty set.
type InvoiceAggregate struct {
	Count        int64
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Balance      decimal.Decimal
	PaidCount    int64
	PendingCount int64
	PartialCount int64
	OverdueCount int64
}
