// file: internals/features/finance/billings/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

////////////////////////////////////////////////////////////////////////////////
// RECORD PAYMENT — REQUEST
////////////////////////////////////////////////////////////////////////////////

type RecordPaymentRequest struct {
	InvoiceID     uuid.UUID        `json:"invoice_id" validate:"required"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate   *string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card upi bank_transfer cheque online"`
	TransactionID *string          `json:"transaction_id" validate:"omitempty,max=100"`
	ChequeNumber  *string          `json:"cheque_number" validate:"omitempty,max=50"`
	BankName      *string          `json:"bank_name" validate:"omitempty,max=100"`
	Remarks       *string          `json:"remarks" validate:"omitempty,max=500"`
}

func (r RecordPaymentRequest) ToInput() (service.RecordPaymentInput, error) {
	details, err := service.BuildMethodDetails(r.PaymentMethod, r.TransactionID, r.ChequeNumber, r.BankName)
	if err != nil {
		return service.RecordPaymentInput{}, err
	}
	date, err := parseDatePtr("payment_date", r.PaymentDate)
	if err != nil {
		return service.RecordPaymentInput{}, err
	}
	in := service.RecordPaymentInput{
		InvoiceID:   r.InvoiceID,
		PaymentDate: date,
		Details:     details,
		Remarks:     r.Remarks,
	}
	if r.Amount != nil {
		in.Amount = *r.Amount
	}
	return in, nil
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSE
////////////////////////////////////////////////////////////////////////////////

type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	ReceiptNumber string     `json:"receipt_number"`
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	Amount        string     `json:"amount"`
	PaymentDate   string     `json:"payment_date"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	ChequeNumber  *string    `json:"cheque_number,omitempty"`
	BankName      *string    `json:"bank_name,omitempty"`
	Remarks       *string    `json:"remarks,omitempty"`
	CollectedBy   *uuid.UUID `json:"collected_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func FromPayment(p *model.PaymentModel) PaymentResponse {
	return PaymentResponse{
		ID:            p.PaymentID,
		ReceiptNumber: p.PaymentReceiptNumber,
		InvoiceID:     p.PaymentInvoiceID,
		StudentID:     p.PaymentStudentID,
		Amount:        money.Format(p.PaymentAmount),
		PaymentDate:   dbtime.FormatDate(p.PaymentDate),
		PaymentMethod: string(p.PaymentMethod),
		TransactionID: p.PaymentTransactionID,
		ChequeNumber:  p.PaymentChequeNumber,
		BankName:      p.PaymentBankName,
		Remarks:       p.PaymentRemarks,
		CollectedBy:   p.PaymentCollectedBy,
		CreatedAt:     p.PaymentCreatedAt,
	}
}

func FromPayments(rows []model.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromPayment(&rows[i]))
	}
	return out
}

type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

func FromPaymentResult(r *service.PaymentResult, today time.Time) PaymentResultResponse {
	return PaymentResultResponse{
		Payment: FromPayment(r.Payment),
		Invoice: FromInvoice(r.Invoice, today),
	}
}

// ReceiptResponse is what the front desk prints.
type ReceiptResponse struct {
	PaymentResponse
	Student *StudentSummary  `json:"student,omitempty"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

func FromReceipt(p *model.PaymentModel, today time.Time) ReceiptResponse {
	resp := ReceiptResponse{
		PaymentResponse: FromPayment(p),
		Student:         FromStudent(p.Student),
	}
	if p.Invoice != nil {
		inv := FromInvoice(p.Invoice, today)
		inv.Payments = nil
		resp.Invoice = &inv
	}
	return resp
}
