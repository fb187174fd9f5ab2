// file: internals/features/finance/billings/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	studentModel "schoolku_backend/internals/features/school/students/model"
)

// =========================================================
// MODEL payments (append-only)
// =========================================================

type PaymentModel struct {
	PaymentID            uuid.UUID `json:"payment_id" gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentReceiptNumber string    `json:"payment_receipt_number" gorm:"column:payment_receipt_number;type:varchar(20);not null;uniqueIndex:uq_payments_receipt_number"`

	PaymentInvoiceID uuid.UUID `json:"payment_invoice_id" gorm:"column:payment_invoice_id;type:uuid;not null;index:idx_payments_invoice"`
	PaymentStudentID uuid.UUID `json:"payment_student_id" gorm:"column:payment_student_id;type:uuid;not null;index:idx_payments_student"`

	PaymentAmount decimal.Decimal `json:"payment_amount" gorm:"column:payment_amount;type:numeric(12,2);not null"`
	PaymentDate   time.Time       `json:"payment_date" gorm:"column:payment_date;type:date;not null"`

	// Method + its columns. Use Details()/SetDetails(), never the raw columns.
	PaymentMethod        PaymentMethod `json:"payment_method" gorm:"column:payment_method;type:varchar(20);not null"`
	PaymentTransactionID *string       `json:"payment_transaction_id,omitempty" gorm:"column:payment_transaction_id;type:varchar(100)"`
	PaymentChequeNumber  *string       `json:"payment_cheque_number,omitempty" gorm:"column:payment_cheque_number;type:varchar(50)"`
	PaymentBankName      *string       `json:"payment_bank_name,omitempty" gorm:"column:payment_bank_name;type:varchar(100)"`

	PaymentRemarks     *string           `json:"payment_remarks,omitempty" gorm:"column:payment_remarks;type:text"`
	PaymentCollectedBy *uuid.UUID        `json:"payment_collected_by,omitempty" gorm:"column:payment_collected_by;type:uuid"`
	PaymentGatewayMeta datatypes.JSONMap `json:"payment_gateway_meta,omitempty" gorm:"column:payment_gateway_meta;type:jsonb"`

	PaymentCreatedAt time.Time `json:"payment_created_at" gorm:"column:payment_created_at;type:timestamptz;not null;autoCreateTime"`

	Invoice *InvoiceModel              `json:"invoice,omitempty" gorm:"foreignKey:PaymentInvoiceID;references:InvoiceID"`
	Student *studentModel.StudentModel `json:"student,omitempty" gorm:"foreignKey:PaymentStudentID;references:StudentID"`
}

func (PaymentModel) TableName() string { return "payments" }

// Details rebuilds the method variant from the stored columns.
func (p PaymentModel) Details() MethodDetails {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	switch p.PaymentMethod {
	case MethodCard:
		return Card{TransactionID: str(p.PaymentTransactionID)}
	case MethodUPI:
		return UPI{TransactionID: str(p.PaymentTransactionID)}
	case MethodBankTransfer:
		return BankTransfer{TransactionID: str(p.PaymentTransactionID), BankName: str(p.PaymentBankName)}
	case MethodCheque:
		return Cheque{ChequeNumber: str(p.PaymentChequeNumber), BankName: str(p.PaymentBankName)}
	case MethodOnline:
		return Online{TransactionID: str(p.PaymentTransactionID)}
	default:
		return Cash{}
	}
}

// SetDetails writes the variant into the method columns, clearing the ones it does not carry.
func (p *PaymentModel) SetDetails(d MethodDetails) {
	p.PaymentMethod = d.Method()
	p.PaymentTransactionID, p.PaymentChequeNumber, p.PaymentBankName = nil, nil, nil
	d.apply(p)
}
