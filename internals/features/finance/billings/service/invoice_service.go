// file: internals/features/finance/billings/service/invoice_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/helpers/dbtime"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type IssueInvoicesInput struct {
	Class        string
	AcademicYear string
	FeeType      string
	StudentIDs   []uuid.UUID // optional subset of the class
}

type IssueFailure struct {
	StudentID   uuid.UUID
	AdmissionNo string
	Message     string
}

// IssueResult: every targeted student lands in exactly one bucket.
type IssueResult struct {
	Issued   []model.InvoiceModel
	Skipped  int
	Failures []IssueFailure
}

var errAlreadyOpen = errors.New("open invoice exists")

// IssueInvoices creates one pending invoice per active student of the class from the
// active fee structure. Each student runs in its own transaction; one failure does
// not abort the batch.
func (s *Service) IssueInvoices(ctx context.Context, actor helperAuth.Actor, in IssueInvoicesInput) (*IssueResult, error) {
	in.Class = strings.TrimSpace(in.Class)
	in.AcademicYear = strings.TrimSpace(in.AcademicYear)
	in.FeeType = strings.TrimSpace(in.FeeType)

	v := NewValidationError()
	if in.Class == "" {
		v.Add("class", "is required")
	}
	if in.AcademicYear == "" {
		v.Add("academic_year", "is required")
	}
	if in.FeeType == "" {
		v.Add("fee_type", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	structure, err := s.store.FindActiveFeeStructure(ctx, in.Class, in.AcademicYear, in.FeeType)
	if err != nil {
		return nil, err
	}

	students, err := s.store.ListActiveStudents(ctx, in.Class, in.StudentIDs)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return nil, ErrNoStudentsFound
	}

	dueDate := s.Today()
	if structure.FeeStructureDueDate != nil {
		dueDate = dbtime.DateOf(*structure.FeeStructureDueDate)
	}
	year := s.currentYear()

	res := &IssueResult{Issued: make([]model.InvoiceModel, 0, len(students))}
	for i := range students {
		stu := students[i]

		var inv *model.InvoiceModel
		err := s.store.WithTx(ctx, func(tx Store) error {
			open, err := tx.HasOpenInvoice(ctx, stu.StudentID, in.AcademicYear, in.FeeType)
			if err != nil {
				return err
			}
			if open {
				return errAlreadyOpen
			}

			seq, err := tx.NextSequence(ctx, model.PrefixInvoice, year)
			if err != nil {
				return err
			}
			number, err := model.FormatDocumentNumber(model.PrefixInvoice, year, seq)
			if err != nil {
				return err
			}

			inv = &model.InvoiceModel{
				InvoiceNumber:        number,
				InvoiceStudentID:     stu.StudentID,
				InvoiceAcademicYear:  in.AcademicYear,
				InvoiceFeeType:       in.FeeType,
				InvoiceTotalAmount:   structure.FeeStructureAmount,
				InvoicePaidAmount:    decimal.Zero,
				InvoiceBalanceAmount: structure.FeeStructureAmount,
				InvoiceDueDate:       dueDate,
				InvoiceStatus:        model.InvoiceStatusPending,
				InvoiceRemarks:       structure.FeeStructureDescription,
				InvoiceIssuedBy:      actor.UserIDPtr(),
			}
			return tx.CreateInvoice(ctx, inv)
		})

		switch {
		case err == nil:
			inv.Student = &stu
			res.Issued = append(res.Issued, *inv)
		case errors.Is(err, errAlreadyOpen), errors.Is(err, ErrOpenInvoiceExists):
			res.Skipped++
		default:
			s.log.Warn().Err(err).
				Str("student_id", stu.StudentID.String()).
				Str("fee_type", in.FeeType).
				Msg("invoice issuance failed for student")
			res.Failures = append(res.Failures, IssueFailure{
				StudentID:   stu.StudentID,
				AdmissionNo: stu.StudentAdmissionNo,
				Message:     err.Error(),
			})
		}
	}

	s.log.Info().
		Str("actor", actor.UserID.String()).
		Str("class", in.Class).
		Str("academic_year", in.AcademicYear).
		Str("fee_type", in.FeeType).
		Int("issued", len(res.Issued)).
		Int("skipped", res.Skipped).
		Int("failed", len(res.Failures)).
		Msg("invoices issued")
	return res, nil
}

func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]model.InvoiceModel, int64, error) {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	switch model.InvoiceStatus(f.Status) {
	case "", model.InvoiceStatusPending, model.InvoiceStatusPartial, model.InvoiceStatusPaid, model.InvoiceStatusOverdue:
	default:
		v := NewValidationError()
		v.Add("status", "must be one of pending, partial, paid, overdue")
		return nil, 0, v
	}
	f.Today = s.Today()
	return s.store.ListInvoices(ctx, f)
}

func (s *Service) StudentInvoices(ctx context.Context, studentID uuid.UUID) ([]model.InvoiceModel, error) {
	return s.store.ListStudentInvoices(ctx, studentID)
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*model.InvoiceModel, error) {
	return s.store.GetInvoice(ctx, id)
}
