// file: internals/features/finance/billings/dto/invoice_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	studentModel "schoolku_backend/internals/features/school/students/model"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

////////////////////////////////////////////////////////////////////////////////
// GENERATE — REQUEST
////////////////////////////////////////////////////////////////////////////////

type GenerateInvoicesRequest struct {
	Class        string      `json:"class" validate:"required,max=40"`
	AcademicYear string      `json:"academic_year" validate:"required,max=20"`
	FeeType      string      `json:"fee_type" validate:"required,max=100"`
	StudentIDs   []uuid.UUID `json:"student_ids,omitempty"`
}

func (r GenerateInvoicesRequest) ToInput() service.IssueInvoicesInput {
	return service.IssueInvoicesInput{
		Class:        r.Class,
		AcademicYear: r.AcademicYear,
		FeeType:      r.FeeType,
		StudentIDs:   r.StudentIDs,
	}
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSE
////////////////////////////////////////////////////////////////////////////////

type StudentSummary struct {
	ID          uuid.UUID `json:"id"`
	AdmissionNo string    `json:"admission_no"`
	Name        string    `json:"name"`
	Class       string    `json:"class"`
	Section     *string   `json:"section,omitempty"`
	ParentName  *string   `json:"parent_name,omitempty"`
	ParentPhone *string   `json:"parent_phone,omitempty"`
	ParentEmail *string   `json:"parent_email,omitempty"`
}

func FromStudent(s *studentModel.StudentModel) *StudentSummary {
	if s == nil {
		return nil
	}
	return &StudentSummary{
		ID:          s.StudentID,
		AdmissionNo: s.StudentAdmissionNo,
		Name:        s.FullName(),
		Class:       s.StudentClass,
		Section:     s.StudentSection,
		ParentName:  s.StudentParentName,
		ParentPhone: s.StudentParentPhone,
		ParentEmail: s.StudentParentEmail,
	}
}

// InvoiceResponse: status is the stored lifecycle state, display_status adds the
// derived "overdue".
type InvoiceResponse struct {
	ID            uuid.UUID         `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	StudentID     uuid.UUID         `json:"student_id"`
	Student       *StudentSummary   `json:"student,omitempty"`
	AcademicYear  string            `json:"academic_year"`
	FeeType       string            `json:"fee_type"`
	TotalAmount   string            `json:"total_amount"`
	PaidAmount    string            `json:"paid_amount"`
	BalanceAmount string            `json:"balance_amount"`
	DueDate       string            `json:"due_date"`
	Status        string            `json:"status"`
	DisplayStatus string            `json:"display_status"`
	IsOverdue     bool              `json:"is_overdue"`
	Remarks       *string           `json:"remarks,omitempty"`
	IssuedBy      *uuid.UUID        `json:"issued_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

func FromInvoice(m *model.InvoiceModel, today time.Time) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		StudentID:     m.InvoiceStudentID,
		Student:       FromStudent(m.Student),
		AcademicYear:  m.InvoiceAcademicYear,
		FeeType:       m.InvoiceFeeType,
		TotalAmount:   money.Format(m.InvoiceTotalAmount),
		PaidAmount:    money.Format(m.InvoicePaidAmount),
		BalanceAmount: money.Format(m.InvoiceBalanceAmount),
		DueDate:       dbtime.FormatDate(m.InvoiceDueDate),
		Status:        string(m.InvoiceStatus),
		DisplayStatus: string(m.DisplayStatus(today)),
		IsOverdue:     m.IsOverdue(today),
		Remarks:       m.InvoiceRemarks,
		IssuedBy:      m.InvoiceIssuedBy,
		CreatedAt:     m.InvoiceCreatedAt,
		UpdatedAt:     m.InvoiceUpdatedAt,
	}
	if m.Payments != nil {
		resp.Payments = FromPayments(m.Payments)
	}
	return resp
}

func FromInvoices(rows []model.InvoiceModel, today time.Time) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromInvoice(&rows[i], today))
	}
	return out
}

type IssueFailureResponse struct {
	StudentID   uuid.UUID `json:"student_id"`
	AdmissionNo string    `json:"admission_no"`
	Error       string    `json:"error"`
}

type GenerateInvoicesResponse struct {
	IssuedCount  int                    `json:"issued_count"`
	SkippedCount int                    `json:"skipped_count"`
	FailedCount  int                    `json:"failed_count"`
	Invoices     []InvoiceResponse      `json:"invoices"`
	Failures     []IssueFailureResponse `json:"failures"`
}

func FromIssueResult(r *service.IssueResult, today time.Time) GenerateInvoicesResponse {
	failures := make([]IssueFailureResponse, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, IssueFailureResponse{StudentID: f.StudentID, AdmissionNo: f.AdmissionNo, Error: f.Message})
	}
	return GenerateInvoicesResponse{
		IssuedCount:  len(r.Issued),
		SkippedCount: r.Skipped,
		FailedCount:  len(r.Failures),
		Invoices:     FromInvoices(r.Issued, today),
		Failures:     failures,
	}
}

////////////////////////////////////////////////////////////////////////////////
// REPORTS
////////////////////////////////////////////////////////////////////////////////

type DefaulterResponse struct {
	InvoiceResponse
	DaysOverdue int `json:"days_overdue"`
}

func FromDefaulters(rows []model.InvoiceModel, today time.Time) []DefaulterResponse {
	out := make([]DefaulterResponse, 0, len(rows))
	for i := range rows {
		out = append(out, DefaulterResponse{
			InvoiceResponse: FromInvoice(&rows[i], today),
			DaysOverdue:     int(today.Sub(rows[i].InvoiceDueDate).Hours() / 24),
		})
	}
	return out
}

type FeeStatsResponse struct {
	TotalInvoices        int64  `json:"total_invoices"`
	TotalAmount          string `json:"total_amount"`
	PaidAmount           string `json:"paid_amount"`
	BalanceAmount        string `json:"balance_amount"`
	PaidCount            int64  `json:"paid_count"`
	PendingCount         int64  `json:"pending_count"`
	PartialCount         int64  `json:"partial_count"`
	OverdueCount         int64  `json:"overdue_count"`
	CollectionPercentage string `json:"collection_percentage"`
}

func FromFeeStats(s *service.FeeStats) FeeStatsResponse {
	return FeeStatsResponse{
		TotalInvoices:        s.TotalInvoices,
		TotalAmount:          money.Format(s.TotalAmount),
		PaidAmount:           money.Format(s.PaidAmount),
		BalanceAmount:        money.Format(s.BalanceAmount),
		PaidCount:            s.PaidCount,
		PendingCount:         s.PendingCount,
		PartialCount:         s.PartialCount,
		OverdueCount:         s.OverdueCount,
		CollectionPercentage: money.Format(s.CollectionPercentage),
	}
}

////////////////////////////////////////////////////////////////////////////////
// CHECKOUT
////////////////////////////////////////////////////////////////////////////////

type CheckoutResponse struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	OrderID     string    `json:"order_id"`
	Amount      string    `json:"amount"`
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url"`
}

func FromCheckout(s *service.CheckoutSession) CheckoutResponse {
	return CheckoutResponse{
		InvoiceID:   s.InvoiceID,
		OrderID:     s.OrderID,
		Amount:      money.Format(s.Amount),
		Token:       s.Token,
		RedirectURL: s.RedirectURL,
	}
}
