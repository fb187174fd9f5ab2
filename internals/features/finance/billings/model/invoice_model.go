// file: internals/features/finance/billings/model/invoice_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	studentModel "schoolku_backend/internals/features/school/students/model"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

// =========================================================
// ENUM invoice_status
// =========================================================

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"

	// Display-only. Never written to invoice_status.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// OpenInvoiceStatuses still carry a balance.
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPartial}

// NextInvoiceStatus applies the ordered rule: balance 0 → paid, any paid → partial, else pending.
func NextInvoiceStatus(paid, balance decimal.Decimal) InvoiceStatus {
	switch {
	case balance.IsZero():
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusPending
	}
}

// =========================================================
// MODEL invoices
// =========================================================

type InvoiceModel struct {
	InvoiceID     uuid.UUID `json:"invoice_id" gorm:"column:invoice_id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string    `json:"invoice_number" gorm:"column:invoice_number;type:varchar(20);not null;uniqueIndex:uq_invoices_number"`

	InvoiceStudentID    uuid.UUID `json:"invoice_student_id" gorm:"column:invoice_student_id;type:uuid;not null;index:idx_invoices_student"`
	InvoiceAcademicYear string    `json:"invoice_academic_year" gorm:"column:invoice_academic_year;type:varchar(20);not null;index:idx_invoices_year"`
	InvoiceFeeType      string    `json:"invoice_fee_type" gorm:"column:invoice_fee_type;type:varchar(100);not null"`

	InvoiceTotalAmount   decimal.Decimal `json:"invoice_total_amount" gorm:"column:invoice_total_amount;type:numeric(12,2);not null"`
	InvoicePaidAmount    decimal.Decimal `json:"invoice_paid_amount" gorm:"column:invoice_paid_amount;type:numeric(12,2);not null;default:0"`
	InvoiceBalanceAmount decimal.Decimal `json:"invoice_balance_amount" gorm:"column:invoice_balance_amount;type:numeric(12,2);not null"`

	InvoiceDueDate time.Time     `json:"invoice_due_date" gorm:"column:invoice_due_date;type:date;not null;index:idx_invoices_status_due,priority:2"`
	InvoiceStatus  InvoiceStatus `json:"invoice_status" gorm:"column:invoice_status;type:varchar(20);not null;default:'pending';index:idx_invoices_status_due,priority:1"`

	InvoiceRemarks  *string    `json:"invoice_remarks,omitempty" gorm:"column:invoice_remarks;type:text"`
	InvoiceIssuedBy *uuid.UUID `json:"invoice_issued_by,omitempty" gorm:"column:invoice_issued_by;type:uuid"`

	InvoiceCreatedAt time.Time `json:"invoice_created_at" gorm:"column:invoice_created_at;type:timestamptz;not null;autoCreateTime;index:idx_invoices_created_at"`
	InvoiceUpdatedAt time.Time `json:"invoice_updated_at" gorm:"column:invoice_updated_at;type:timestamptz;not null;autoUpdateTime"`

	Student  *studentModel.StudentModel `json:"student,omitempty" gorm:"foreignKey:InvoiceStudentID;references:StudentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Payments []PaymentModel             `json:"payments,omitempty" gorm:"foreignKey:PaymentInvoiceID;references:InvoiceID"`
}

func (InvoiceModel) TableName() string { return "invoices" }

func (m InvoiceModel) IsOpen() bool {
	return m.InvoiceStatus == InvoiceStatusPending || m.InvoiceStatus == InvoiceStatusPartial
}

// IsOverdue: open and due strictly before today. Due today is not overdue.
func (m InvoiceModel) IsOverdue(today time.Time) bool {
	return m.IsOpen() && dbtime.Before(m.InvoiceDueDate, today)
}

func (m InvoiceModel) DisplayStatus(today time.Time) InvoiceStatus {
	if m.IsOverdue(today) {
		return InvoiceStatusOverdue
	}
	return m.InvoiceStatus
}

// CheckPayment validates amount against the current balance.
func (m InvoiceModel) CheckPayment(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	case !money.HasCents(amount):
		return fmt.Errorf("%w: amount has more than 2 decimal places", ErrInvalidAmount)
	case amount.GreaterThan(m.InvoiceBalanceAmount):
		return fmt.Errorf("%w: amount %s exceeds balance %s", ErrInvalidAmount, money.Format(amount), money.Format(m.InvoiceBalanceAmount))
	}
	return nil
}

// ApplyPayment moves amount from balance to paid and re-derives status.
func (m *InvoiceModel) ApplyPayment(amount decimal.Decimal) error {
	if err := m.CheckPayment(amount); err != nil {
		return err
	}
	m.InvoicePaidAmount = m.InvoicePaidAmount.Add(amount)
	m.InvoiceBalanceAmount = m.InvoiceTotalAmount.Sub(m.InvoicePaidAmount)
	m.InvoiceStatus = NextInvoiceStatus(m.InvoicePaidAmount, m.InvoiceBalanceAmount)
	return nil
}
