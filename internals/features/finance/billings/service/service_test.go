package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	"schoolku_backend/internals/features/finance/billings/store"
	studentModel "schoolku_backend/internals/features/school/students/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var (
	ctx        = context.Background()
	accountant = helperAuth.Actor{UserID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Role: "accountant"}
)

type fixture struct {
	mem      *store.MemoryStore
	svc      *service.Service
	now      time.Time
	students []studentModel.StudentModel
}

func (f *fixture) setNow(t time.Time) { f.now = t }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	f := &fixture{mem: store.NewMemoryStore(), now: time.Date(2024, 8, 20, 9, 30, 0, 0, time.UTC)}
	opts = append([]service.Option{
		service.WithClock(func() time.Time { return f.now }),
		service.WithLocation(time.UTC),
	}, opts...)
	f.svc = service.New(f.mem, opts...)

	for i, name := range []string{"Asha", "Bilal", "Chen"} {
		f.students = append(f.students, f.mem.AddStudent(studentModel.StudentModel{
			StudentAdmissionNo: "G5-00" + string(rune('1'+i)),
			StudentFirstName:   name,
			StudentLastName:    "Rao",
			StudentClass:       "Grade 5",
			StudentParentPhone: ptr("+91-98000000" + string(rune('1'+i))),
		}))
	}
	// not targeted: inactive, and another class
	f.mem.AddStudent(studentModel.StudentModel{StudentAdmissionNo: "G5-099", StudentFirstName: "Old", StudentClass: "Grade 5", StudentStatus: studentModel.StudentPassedOut})
	f.mem.AddStudent(studentModel.StudentModel{StudentAdmissionNo: "G6-001", StudentFirstName: "Dev", StudentClass: "Grade 6"})
	return f
}

func (f *fixture) tuitionStructure(t *testing.T) *model.FeeStructureModel {
	t.Helper()
	fs, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class:        "Grade 5",
		AcademicYear: "2024-2025",
		FeeType:      "Tuition Fee",
		Amount:       dec("5000.00"),
		DueDate:      ptr(day(2024, 9, 1)),
	})
	require.NoError(t, err)
	return fs
}

func (f *fixture) issueTuition(t *testing.T) *service.IssueResult {
	t.Helper()
	res, err := f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Tuition Fee",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) invoiceFor(t *testing.T, number string) *model.InvoiceModel {
	t.Helper()
	rows, _, err := f.svc.ListInvoices(ctx, service.InvoiceFilter{})
	require.NoError(t, err)
	for _, r := range rows {
		if r.InvoiceNumber == number {
			inv, err := f.svc.GetInvoice(ctx, r.InvoiceID)
			require.NoError(t, err)
			return inv
		}
	}
	t.Fatalf("invoice %s not found", number)
	return nil
}

func pay(t *testing.T, f *fixture, invoiceID uuid.UUID, amount string) (*service.PaymentResult, error) {
	t.Helper()
	return f.svc.RecordPayment(ctx, accountant, service.RecordPaymentInput{
		InvoiceID: invoiceID,
		Amount:    dec(amount),
		Details:   model.Cash{},
	})
}

func assertBalanced(t *testing.T, inv *model.InvoiceModel) {
	t.Helper()
	assert.True(t, inv.InvoiceBalanceAmount.Equal(inv.InvoiceTotalAmount.Sub(inv.InvoicePaidAmount)),
		"balance %s != total %s - paid %s", inv.InvoiceBalanceAmount, inv.InvoiceTotalAmount, inv.InvoicePaidAmount)
	assert.False(t, inv.InvoicePaidAmount.IsNegative())
	assert.True(t, inv.InvoicePaidAmount.LessThanOrEqual(inv.InvoiceTotalAmount))
}

/* ===================== issuance ===================== */

func TestIssueInvoicesCreatesOnePendingInvoicePerActiveStudent(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)

	res := f.issueTuition(t)

	require.Len(t, res.Issued, 3)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Failures)

	numbers := map[string]bool{}
	for _, inv := range res.Issued {
		numbers[inv.InvoiceNumber] = true
		assert.Equal(t, "5000.00", inv.InvoiceTotalAmount.StringFixed(2))
		assert.True(t, inv.InvoicePaidAmount.IsZero())
		assert.Equal(t, "5000.00", inv.InvoiceBalanceAmount.StringFixed(2))
		assert.Equal(t, model.InvoiceStatusPending, inv.InvoiceStatus)
		assert.Equal(t, day(2024, 9, 1), inv.InvoiceDueDate)
		assert.Equal(t, &accountant.UserID, inv.InvoiceIssuedBy)
		require.NotNil(t, inv.Student)
	}
	assert.Equal(t, map[string]bool{"INV202400001": true, "INV202400002": true, "INV202400003": true}, numbers)
}

func TestIssueInvoicesIsIdempotentWhileOpen(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	f.issueTuition(t)

	again := f.issueTuition(t)

	assert.Empty(t, again.Issued)
	assert.Equal(t, 3, again.Skipped)
	rows, total, err := f.svc.ListInvoices(ctx, service.InvoiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 3)
}

func TestIssueInvoicesAfterFullPaymentIssuesAgain(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	first := f.issueTuition(t)

	_, err := pay(t, f, first.Issued[0].InvoiceID, "5000.00")
	require.NoError(t, err)

	again := f.issueTuition(t)
	assert.Len(t, again.Issued, 1)
	assert.Equal(t, 2, again.Skipped)
	assert.Equal(t, "INV202400004", again.Issued[0].InvoiceNumber)
}

func TestIssueInvoicesRestrictedToStudentSubset(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)

	res, err := f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Tuition Fee",
		StudentIDs: []uuid.UUID{f.students[1].StudentID},
	})
	require.NoError(t, err)
	require.Len(t, res.Issued, 1)
	assert.Equal(t, f.students[1].StudentID, res.Issued[0].InvoiceStudentID)
}

func TestIssueInvoicesDueDateDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Lab Fee", Amount: dec("750"),
	})
	require.NoError(t, err)

	res, err := f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Lab Fee",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Issued)
	assert.Equal(t, day(2024, 8, 20), res.Issued[0].InvoiceDueDate)
}

func TestIssueInvoicesErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Tuition Fee",
	})
	assert.ErrorIs(t, err, service.ErrStructureNotFound)

	_, err = f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 9", AcademicYear: "2024-2025", FeeType: "Tuition Fee", Amount: dec("100"),
	})
	require.NoError(t, err)
	_, err = f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 9", AcademicYear: "2024-2025", FeeType: "Tuition Fee",
	})
	assert.ErrorIs(t, err, service.ErrNoStudentsFound)

	_, err = f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{Class: "Grade 5"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "academic_year")
	assert.Contains(t, verr.Fields, "fee_type")
}

func TestIssueInvoicesReportsPerStudentFailures(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	f.mem.FailOn("CreateInvoice", errors.New("disk full"))

	res := f.issueTuition(t)

	assert.Empty(t, res.Issued)
	require.Len(t, res.Failures, 3)
	assert.Equal(t, "disk full", res.Failures[0].Message)

	// rolled back numbers are handed out again
	f.mem.FailOn("CreateInvoice", nil)
	res = f.issueTuition(t)
	require.Len(t, res.Issued, 3)
	assert.Equal(t, "INV202400001", res.Issued[0].InvoiceNumber)
}

func TestFirstActiveStructureWins(t *testing.T) {
	f := newFixture(t)
	first := f.tuitionStructure(t)
	_, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Tuition Fee", Amount: dec("9999"),
	})
	require.NoError(t, err)

	got, err := f.svc.FindActiveStructure(ctx, "Grade 5", "2024-2025", "Tuition Fee")
	require.NoError(t, err)
	assert.Equal(t, first.FeeStructureID, got.FeeStructureID)

	_, err = f.svc.UpdateFeeStructure(ctx, first.FeeStructureID, service.UpdateFeeStructureInput{Status: ptr("inactive")})
	require.NoError(t, err)
	got, err = f.svc.FindActiveStructure(ctx, "Grade 5", "2024-2025", "Tuition Fee")
	require.NoError(t, err)
	assert.Equal(t, "9999.00", got.FeeStructureAmount.StringFixed(2))
}

/* ===================== payments ===================== */

func TestPaymentScenario(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	f.issueTuition(t)
	inv := f.invoiceFor(t, "INV202400001")

	// partial
	res, err := pay(t, f, inv.InvoiceID, "2000.00")
	require.NoError(t, err)
	assert.Equal(t, "RCP202400001", res.Payment.PaymentReceiptNumber)
	assert.Equal(t, inv.InvoiceStudentID, res.Payment.PaymentStudentID)
	assert.Equal(t, &accountant.UserID, res.Payment.PaymentCollectedBy)
	assert.Equal(t, day(2024, 8, 20), res.Payment.PaymentDate)
	assert.Equal(t, "2000.00", res.Invoice.InvoicePaidAmount.StringFixed(2))
	assert.Equal(t, "3000.00", res.Invoice.InvoiceBalanceAmount.StringFixed(2))
	assert.Equal(t, model.InvoiceStatusPartial, res.Invoice.InvoiceStatus)
	assert.Len(t, res.Invoice.Payments, 1)
	assertBalanced(t, res.Invoice)

	// settle
	res, err = pay(t, f, inv.InvoiceID, "3000.00")
	require.NoError(t, err)
	assert.Equal(t, "RCP202400002", res.Payment.PaymentReceiptNumber)
	assert.Equal(t, "5000.00", res.Invoice.InvoicePaidAmount.StringFixed(2))
	assert.True(t, res.Invoice.InvoiceBalanceAmount.IsZero())
	assert.Equal(t, model.InvoiceStatusPaid, res.Invoice.InvoiceStatus)
	assert.Len(t, res.Invoice.Payments, 2)
	assertBalanced(t, res.Invoice)

	// overpay a paid invoice
	_, err = pay(t, f, inv.InvoiceID, "1.00")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
	after := f.invoiceFor(t, "INV202400001")
	assert.Equal(t, model.InvoiceStatusPaid, after.InvoiceStatus)
	assert.Len(t, after.Payments, 2)
}

func TestRecordPaymentRejectsInvalidAmounts(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	for _, amount := range []string{"0", "-5", "5000.01", "10.555"} {
		_, err := pay(t, f, inv.InvoiceID, amount)
		assert.ErrorIs(t, err, service.ErrInvalidAmount, amount)
	}
	got, err := f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPending, got.InvoiceStatus)
	assert.Empty(t, got.Payments)
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	f := newFixture(t)
	_, err := pay(t, f, uuid.New(), "10")
	assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
}

func TestRecordPaymentRollsBackOnPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	f.mem.FailOn("UpdateInvoiceBalance", errors.New("connection reset"))
	_, err := pay(t, f, inv.InvoiceID, "1000")
	require.Error(t, err)

	got, err := f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.True(t, got.InvoicePaidAmount.IsZero())
	assert.Empty(t, got.Payments, "payment row must roll back with the invoice update")

	f.mem.FailOn("UpdateInvoiceBalance", nil)
	res, err := pay(t, f, inv.InvoiceID, "1000")
	require.NoError(t, err)
	assert.Equal(t, "RCP202400001", res.Payment.PaymentReceiptNumber)
}

func TestConcurrentPaymentsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	const writers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordPayment(ctx, accountant, service.RecordPaymentInput{
				InvoiceID: inv.InvoiceID, Amount: dec("2000"), Details: model.Cash{},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, service.ErrInvalidAmount) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, writers-2, fail)

	got, err := f.svc.GetInvoice(ctx, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "4000.00", got.InvoicePaidAmount.StringFixed(2))
	assert.Len(t, got.Payments, 2)
	assertBalanced(t, got)
}

func TestChequePaymentRequiresChequeNumber(t *testing.T) {
	_, err := service.BuildMethodDetails("cheque", nil, nil, ptr("SBI"))
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cheque_number")

	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]

	d, err := service.BuildMethodDetails("cheque", nil, ptr("004512"), ptr("SBI"))
	require.NoError(t, err)
	res, err := f.svc.RecordPayment(ctx, accountant, service.RecordPaymentInput{
		InvoiceID: inv.InvoiceID, Amount: dec("500"), Details: d, PaymentDate: ptr(day(2024, 8, 18)),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MethodCheque, res.Payment.PaymentMethod)
	assert.Equal(t, "004512", *res.Payment.PaymentChequeNumber)
	assert.Equal(t, day(2024, 8, 18), res.Payment.PaymentDate)
}

func TestGetReceiptEmbedsStudentAndInvoice(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	inv := f.issueTuition(t).Issued[0]
	res, err := pay(t, f, inv.InvoiceID, "100")
	require.NoError(t, err)

	rcp, err := f.svc.GetReceipt(ctx, res.Payment.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, rcp.Student)
	require.NotNil(t, rcp.Invoice)
	assert.Equal(t, inv.InvoiceNumber, rcp.Invoice.InvoiceNumber)

	_, err = f.svc.GetReceipt(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}

/* ===================== reports ===================== */

func TestDefaultersUseStrictDueDate(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued
	_, err := pay(t, f, issued[0].InvoiceID, "5000")
	require.NoError(t, err)
	_, err = pay(t, f, issued[1].InvoiceID, "100")
	require.NoError(t, err)

	f.setNow(time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC))
	rows, err := f.svc.FindDefaulters(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, rows, "due today is not yet a defaulter")

	f.setNow(time.Date(2024, 9, 15, 8, 0, 0, 0, time.UTC))
	rows, err = f.svc.FindDefaulters(ctx, "Grade 5", "2024-2025")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotEqual(t, model.InvoiceStatusPaid, r.InvoiceStatus)
		require.NotNil(t, r.Student)
		assert.NotNil(t, r.Student.StudentParentPhone)
	}

	rows, err = f.svc.FindDefaulters(ctx, "Grade 6", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDefaultersOrderedByDueDate(t *testing.T) {
	f := newFixture(t)
	f.setNow(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	late := f.mem.PutInvoice(model.InvoiceModel{
		InvoiceNumber: "INV202400010", InvoiceStudentID: f.students[0].StudentID, InvoiceAcademicYear: "2024-2025",
		InvoiceFeeType: "Bus", InvoiceTotalAmount: dec("10"), InvoiceBalanceAmount: dec("10"),
		InvoiceDueDate: day(2024, 11, 1), InvoiceStatus: model.InvoiceStatusPending,
	})
	early := f.mem.PutInvoice(model.InvoiceModel{
		InvoiceNumber: "INV202400011", InvoiceStudentID: f.students[1].StudentID, InvoiceAcademicYear: "2024-2025",
		InvoiceFeeType: "Bus", InvoiceTotalAmount: dec("10"), InvoiceBalanceAmount: dec("10"),
		InvoiceDueDate: day(2024, 10, 1), InvoiceStatus: model.InvoiceStatusPending,
	})

	rows, err := f.svc.FindDefaulters(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, early.InvoiceID, rows[0].InvoiceID)
	assert.Equal(t, late.InvoiceID, rows[1].InvoiceID)
}

func TestFeeStats(t *testing.T) {
	f := newFixture(t)

	empty, err := f.svc.FeeStats(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalInvoices)
	assert.True(t, empty.TotalAmount.IsZero())
	assert.True(t, empty.CollectionPercentage.IsZero())

	f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued
	_, err = pay(t, f, issued[0].InvoiceID, "5000")
	require.NoError(t, err)
	_, err = pay(t, f, issued[1].InvoiceID, "2000")
	require.NoError(t, err)

	f.setNow(time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC))
	st, err := f.svc.FeeStats(ctx, "2024-2025")
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.TotalInvoices)
	assert.Equal(t, "15000.00", st.TotalAmount.StringFixed(2))
	assert.Equal(t, "7000.00", st.PaidAmount.StringFixed(2))
	assert.Equal(t, "8000.00", st.BalanceAmount.StringFixed(2))
	assert.EqualValues(t, 1, st.PaidCount)
	assert.EqualValues(t, 1, st.PartialCount)
	assert.EqualValues(t, 1, st.PendingCount)
	assert.EqualValues(t, 2, st.OverdueCount)
	assert.Equal(t, "46.67", st.CollectionPercentage.StringFixed(2))

	other, err := f.svc.FeeStats(ctx, "2030-2031")
	require.NoError(t, err)
	assert.True(t, other.CollectionPercentage.IsZero())
}

func TestFeeStatsZeroTotal(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Waived", Amount: decimal.Zero,
	})
	require.NoError(t, err)
	res, err := f.svc.IssueInvoices(ctx, accountant, service.IssueInvoicesInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Waived",
	})
	require.NoError(t, err)
	require.Len(t, res.Issued, 3)
	assert.Equal(t, model.InvoiceStatusPending, res.Issued[0].InvoiceStatus)

	st, err := f.svc.FeeStats(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.TotalInvoices)
	assert.True(t, st.CollectionPercentage.IsZero())
}

func TestIssueZeroAmountStructureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Waived Fee", Amount: decimal.Zero,
	})
	require.NoError(t, err)
	in := service.IssueInvoicesInput{Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Waived Fee"}

	first, err := f.svc.IssueInvoices(ctx, accountant, in)
	require.NoError(t, err)
	require.Len(t, first.Issued, 3)
	for _, inv := range first.Issued {
		assert.Equal(t, model.InvoiceStatusPending, inv.InvoiceStatus)
		assert.True(t, inv.InvoiceBalanceAmount.IsZero())
	}

	second, err := f.svc.IssueInvoices(ctx, accountant, in)
	require.NoError(t, err)
	assert.Empty(t, second.Issued)
	assert.Equal(t, 3, second.Skipped)

	_, total, err := f.svc.ListInvoices(ctx, service.InvoiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	// nothing to pay on a zero balance
	_, err = pay(t, f, first.Issued[0].InvoiceID, "0.01")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestListInvoicesFilters(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued
	_, err := pay(t, f, issued[0].InvoiceID, "5000")
	require.NoError(t, err)

	rows, total, err := f.svc.ListInvoices(ctx, service.InvoiceFilter{Search: "bil"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bilal", rows[0].Student.StudentFirstName)

	rows, _, err = f.svc.ListInvoices(ctx, service.InvoiceFilter{Search: "G5-003"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, total, err = f.svc.ListInvoices(ctx, service.InvoiceFilter{Status: "paid"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = f.svc.ListInvoices(ctx, service.InvoiceFilter{Status: "overdue"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	f.setNow(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC))
	rows, total, err = f.svc.ListInvoices(ctx, service.InvoiceFilter{Status: "overdue", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 1)
	assert.Equal(t, model.InvoiceStatusOverdue, rows[0].DisplayStatus(f.svc.Today()))
	assert.Equal(t, model.InvoiceStatusPending, rows[0].InvoiceStatus)

	_, _, err = f.svc.ListInvoices(ctx, service.InvoiceFilter{Status: "cancelled"})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStudentInvoicesCarryPaymentHistory(t *testing.T) {
	f := newFixture(t)
	f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued
	_, err := pay(t, f, issued[0].InvoiceID, "100")
	require.NoError(t, err)

	rows, err := f.svc.StudentInvoices(ctx, issued[0].InvoiceStudentID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Payments, 1)
}

/* ===================== catalog ===================== */

func TestFeeStructureValidationAndLifecycle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateFeeStructure(ctx, service.CreateFeeStructureInput{
		Class: "Grade 5", AcademicYear: "2024-2025", FeeType: "Tuition", Amount: dec("-1"), Frequency: "weekly",
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")
	assert.Contains(t, verr.Fields, "frequency")

	fs := f.tuitionStructure(t)
	assert.Equal(t, model.FeeFrequencyMonthly, fs.FeeStructureFrequency)
	assert.Equal(t, model.FeeStructureActive, fs.FeeStructureStatus)

	updated, err := f.svc.UpdateFeeStructure(ctx, fs.FeeStructureID, service.UpdateFeeStructureInput{
		Amount: ptr(dec("5500.50")), ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "5500.50", updated.FeeStructureAmount.StringFixed(2))
	assert.Nil(t, updated.FeeStructureDueDate)
	assert.Equal(t, "Tuition Fee", updated.FeeStructureFeeType)

	require.NoError(t, f.svc.DeleteFeeStructure(ctx, fs.FeeStructureID))
	_, err = f.svc.GetFeeStructure(ctx, fs.FeeStructureID)
	assert.ErrorIs(t, err, service.ErrFeeStructureNotFound)
	assert.ErrorIs(t, f.svc.DeleteFeeStructure(ctx, fs.FeeStructureID), service.ErrFeeStructureNotFound)

	list, err := f.svc.ListFeeStructures(ctx, service.StructureFilter{Class: "Grade 5"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeletingStructureKeepsIssuedInvoices(t *testing.T) {
	f := newFixture(t)
	fs := f.tuitionStructure(t)
	issued := f.issueTuition(t).Issued

	require.NoError(t, f.svc.DeleteFeeStructure(ctx, fs.FeeStructureID))

	got, err := f.svc.GetInvoice(ctx, issued[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "5000.00", got.InvoiceTotalAmount.StringFixed(2))
}
