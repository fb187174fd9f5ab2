// file: internals/features/finance/billings/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	studentModel "schoolku_backend/internals/features/school/students/model"
	"schoolku_backend/internals/helpers/dbtime"
)

type seqKey struct {
	prefix string
	year   int
}

type memState struct {
	structures map[uuid.UUID]model.FeeStructureModel
	students   map[uuid.UUID]studentModel.StudentModel
	invoices   map[uuid.UUID]model.InvoiceModel
	payments   map[uuid.UUID]model.PaymentModel
	sequences  map[seqKey]int64
	structSeq  int64
	tick       int64
	failures   map[string]error
}

func (s *memState) clone() *memState {
	c := &memState{
		structures: make(map[uuid.UUID]model.FeeStructureModel, len(s.structures)),
		students:   make(map[uuid.UUID]studentModel.StudentModel, len(s.students)),
		invoices:   make(map[uuid.UUID]model.InvoiceModel, len(s.invoices)),
		payments:   make(map[uuid.UUID]model.PaymentModel, len(s.payments)),
		sequences:  make(map[seqKey]int64, len(s.sequences)),
		structSeq:  s.structSeq,
		tick:       s.tick,
		failures:   s.failures,
	}
	for k, v := range s.structures {
		c.structures[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// MemoryStore is an in-process service.Store. A transaction holds the store mutex
// for its whole duration and restores a snapshot when fn fails, which gives the
// same serialization a row lock gives on Postgres.
type MemoryStore struct {
	mu   *sync.Mutex
	st   *memState
	inTx bool
}

var _ service.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		st: &memState{
			structures: map[uuid.UUID]model.FeeStructureModel{},
			students:   map[uuid.UUID]studentModel.StudentModel{},
			invoices:   map[uuid.UUID]model.InvoiceModel{},
			payments:   map[uuid.UUID]model.PaymentModel{},
			sequences:  map[seqKey]int64{},
			failures:   map[string]error{},
		},
	}
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// FailOn makes the named Store method return err until cleared with a nil err.
func (m *MemoryStore) FailOn(method string, err error) {
	defer m.lock()()
	if err == nil {
		delete(m.st.failures, method)
		return
	}
	m.st.failures[method] = err
}

func (m *MemoryStore) fail(method string) error {
	return m.st.failures[method]
}

func (m *MemoryStore) stamp() time.Time {
	m.st.tick++
	return time.Now().UTC().Add(time.Duration(m.st.tick) * time.Microsecond)
}

// AddStudent seeds the read-only registry.
func (m *MemoryStore) AddStudent(s studentModel.StudentModel) studentModel.StudentModel {
	defer m.lock()()
	if s.StudentID == uuid.Nil {
		s.StudentID = uuid.New()
	}
	if s.StudentStatus == "" {
		s.StudentStatus = studentModel.StudentActive
	}
	s.StudentCreatedAt = m.stamp()
	m.st.students[s.StudentID] = s
	return s
}

// PutInvoice stores an invoice as-is. Used to set up back-dated fixtures.
func (m *MemoryStore) PutInvoice(inv model.InvoiceModel) model.InvoiceModel {
	defer m.lock()()
	if inv.InvoiceID == uuid.Nil {
		inv.InvoiceID = uuid.New()
	}
	if inv.InvoiceCreatedAt.IsZero() {
		inv.InvoiceCreatedAt = m.stamp()
	}
	inv.Student, inv.Payments = nil, nil
	m.st.invoices[inv.InvoiceID] = inv
	return inv
}

func (m *MemoryStore) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := m.st.clone()
	if err := fn(&MemoryStore{mu: m.mu, st: m.st, inTx: true}); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

/* ===================== fee structures ===================== */

func (m *MemoryStore) CreateFeeStructure(_ context.Context, fs *model.FeeStructureModel) error {
	defer m.lock()()
	if err := m.fail("CreateFeeStructure"); err != nil {
		return err
	}
	if fs.FeeStructureID == uuid.Nil {
		fs.FeeStructureID = uuid.New()
	}
	m.st.structSeq++
	fs.FeeStructureSeq = m.st.structSeq
	fs.FeeStructureCreatedAt = m.stamp()
	fs.FeeStructureUpdatedAt = fs.FeeStructureCreatedAt
	m.st.structures[fs.FeeStructureID] = *fs
	return nil
}

func (m *MemoryStore) SaveFeeStructure(_ context.Context, fs *model.FeeStructureModel) error {
	defer m.lock()()
	cur, ok := m.st.structures[fs.FeeStructureID]
	if !ok || cur.FeeStructureDeletedAt.Valid {
		return service.ErrFeeStructureNotFound
	}
	fs.FeeStructureUpdatedAt = m.stamp()
	m.st.structures[fs.FeeStructureID] = *fs
	return nil
}

func (m *MemoryStore) DeleteFeeStructure(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	cur, ok := m.st.structures[id]
	if !ok || cur.FeeStructureDeletedAt.Valid {
		return service.ErrFeeStructureNotFound
	}
	cur.FeeStructureDeletedAt.Time = m.stamp()
	cur.FeeStructureDeletedAt.Valid = true
	m.st.structures[id] = cur
	return nil
}

func (m *MemoryStore) GetFeeStructure(_ context.Context, id uuid.UUID) (*model.FeeStructureModel, error) {
	defer m.lock()()
	cur, ok := m.st.structures[id]
	if !ok || cur.FeeStructureDeletedAt.Valid {
		return nil, service.ErrFeeStructureNotFound
	}
	return &cur, nil
}

func (m *MemoryStore) ListFeeStructures(_ context.Context, f service.StructureFilter) ([]model.FeeStructureModel, error) {
	defer m.lock()()
	out := make([]model.FeeStructureModel, 0)
	for _, fs := range m.st.structures {
		if fs.FeeStructureDeletedAt.Valid {
			continue
		}
		if f.Class != "" && fs.FeeStructureClass != f.Class {
			continue
		}
		if f.AcademicYear != "" && fs.FeeStructureAcademicYear != f.AcademicYear {
			continue
		}
		if f.Status != "" && string(fs.FeeStructureStatus) != f.Status {
			continue
		}
		out = append(out, fs)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FeeStructureClass != b.FeeStructureClass {
			return a.FeeStructureClass < b.FeeStructureClass
		}
		if a.FeeStructureFeeType != b.FeeStructureFeeType {
			return a.FeeStructureFeeType < b.FeeStructureFeeType
		}
		return a.FeeStructureSeq < b.FeeStructureSeq
	})
	return out, nil
}

func (m *MemoryStore) FindActiveFeeStructure(_ context.Context, class, academicYear, feeType string) (*model.FeeStructureModel, error) {
	defer m.lock()()
	var best *model.FeeStructureModel
	for _, fs := range m.st.structures {
		if !fs.IsActive() || fs.FeeStructureClass != class ||
			fs.FeeStructureAcademicYear != academicYear || fs.FeeStructureFeeType != feeType {
			continue
		}
		if best == nil || fs.FeeStructureSeq < best.FeeStructureSeq {
			c := fs
			best = &c
		}
	}
	if best == nil {
		return nil, service.ErrStructureNotFound
	}
	return best, nil
}

/* ===================== students ===================== */

func (m *MemoryStore) ListActiveStudents(_ context.Context, class string, ids []uuid.UUID) ([]studentModel.StudentModel, error) {
	defer m.lock()()
	var want map[uuid.UUID]bool
	if len(ids) > 0 {
		want = make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
	}
	out := make([]studentModel.StudentModel, 0)
	for _, s := range m.st.students {
		if s.StudentClass != class || s.StudentStatus != studentModel.StudentActive || s.StudentDeletedAt.Valid {
			continue
		}
		if want != nil && !want[s.StudentID] {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentAdmissionNo < out[j].StudentAdmissionNo })
	return out, nil
}

/* ===================== invoices ===================== */

func (m *MemoryStore) HasOpenInvoice(_ context.Context, studentID uuid.UUID, academicYear, feeType string) (bool, error) {
	defer m.lock()()
	return m.openInvoiceExists(studentID, academicYear, feeType, uuid.Nil), nil
}

func (m *MemoryStore) openInvoiceExists(studentID uuid.UUID, academicYear, feeType string, except uuid.UUID) bool {
	for _, inv := range m.st.invoices {
		if inv.InvoiceID != except && inv.InvoiceStudentID == studentID &&
			inv.InvoiceAcademicYear == academicYear && inv.InvoiceFeeType == feeType && inv.IsOpen() {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateInvoice(_ context.Context, inv *model.InvoiceModel) error {
	defer m.lock()()
	if err := m.fail("CreateInvoice"); err != nil {
		return err
	}
	for _, other := range m.st.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return service.ErrDuplicateNumber
		}
	}
	if inv.IsOpen() && m.openInvoiceExists(inv.InvoiceStudentID, inv.InvoiceAcademicYear, inv.InvoiceFeeType, uuid.Nil) {
		return service.ErrOpenInvoiceExists
	}
	if inv.InvoiceID == uuid.Nil {
		inv.InvoiceID = uuid.New()
	}
	inv.InvoiceCreatedAt = m.stamp()
	inv.InvoiceUpdatedAt = inv.InvoiceCreatedAt
	row := *inv
	row.Student, row.Payments = nil, nil
	m.st.invoices[inv.InvoiceID] = row
	return nil
}

func (m *MemoryStore) LockInvoice(_ context.Context, id uuid.UUID) (*model.InvoiceModel, error) {
	defer m.lock()()
	inv, ok := m.st.invoices[id]
	if !ok {
		return nil, service.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (m *MemoryStore) UpdateInvoiceBalance(_ context.Context, inv *model.InvoiceModel) error {
	defer m.lock()()
	if err := m.fail("UpdateInvoiceBalance"); err != nil {
		return err
	}
	cur, ok := m.st.invoices[inv.InvoiceID]
	if !ok {
		return service.ErrInvoiceNotFound
	}
	cur.InvoicePaidAmount = inv.InvoicePaidAmount
	cur.InvoiceBalanceAmount = inv.InvoiceBalanceAmount
	cur.InvoiceStatus = inv.InvoiceStatus
	cur.InvoiceUpdatedAt = m.stamp()
	m.st.invoices[inv.InvoiceID] = cur
	return nil
}

func (m *MemoryStore) hydrateInvoice(inv model.InvoiceModel, withPayments bool) model.InvoiceModel {
	if s, ok := m.st.students[inv.InvoiceStudentID]; ok {
		inv.Student = &s
	}
	if withPayments {
		inv.Payments = m.paymentsOf(inv.InvoiceID)
	}
	return inv
}

func (m *MemoryStore) paymentsOf(invoiceID uuid.UUID) []model.PaymentModel {
	out := make([]model.PaymentModel, 0)
	for _, p := range m.st.payments {
		if p.PaymentInvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].PaymentReceiptNumber < out[j].PaymentReceiptNumber
	})
	return out
}

func (m *MemoryStore) GetInvoice(_ context.Context, id uuid.UUID) (*model.InvoiceModel, error) {
	defer m.lock()()
	inv, ok := m.st.invoices[id]
	if !ok {
		return nil, service.ErrInvoiceNotFound
	}
	out := m.hydrateInvoice(inv, true)
	return &out, nil
}

func (m *MemoryStore) FindInvoiceByNumber(_ context.Context, number string) (*model.InvoiceModel, error) {
	defer m.lock()()
	for _, inv := range m.st.invoices {
		if inv.InvoiceNumber == number {
			out := m.hydrateInvoice(inv, false)
			return &out, nil
		}
	}
	return nil, service.ErrInvoiceNotFound
}

func (m *MemoryStore) ListInvoices(_ context.Context, f service.InvoiceFilter) ([]model.InvoiceModel, int64, error) {
	defer m.lock()()
	search := strings.ToLower(strings.TrimSpace(f.Search))

	rows := make([]model.InvoiceModel, 0)
	for _, inv := range m.st.invoices {
		stu := m.st.students[inv.InvoiceStudentID]
		if f.Class != "" && stu.StudentClass != f.Class {
			continue
		}
		if f.AcademicYear != "" && inv.InvoiceAcademicYear != f.AcademicYear {
			continue
		}
		switch model.InvoiceStatus(f.Status) {
		case "":
		case model.InvoiceStatusOverdue:
			if !inv.IsOverdue(f.Today) {
				continue
			}
		default:
			if string(inv.InvoiceStatus) != f.Status {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(stu.StudentFirstName), search) &&
			!strings.Contains(strings.ToLower(stu.StudentLastName), search) &&
			!strings.Contains(strings.ToLower(stu.StudentAdmissionNo), search) {
			continue
		}
		rows = append(rows, m.hydrateInvoice(inv, false))
	}
	sortNewestFirst(rows)

	total := int64(len(rows))
	start := f.Offset
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return rows[start:end], total, nil
}

func (m *MemoryStore) ListStudentInvoices(_ context.Context, studentID uuid.UUID) ([]model.InvoiceModel, error) {
	defer m.lock()()
	rows := make([]model.InvoiceModel, 0)
	for _, inv := range m.st.invoices {
		if inv.InvoiceStudentID == studentID {
			rows = append(rows, m.hydrateInvoice(inv, true))
		}
	}
	sortNewestFirst(rows)
	return rows, nil
}

func sortNewestFirst(rows []model.InvoiceModel) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].InvoiceCreatedAt.Equal(rows[j].InvoiceCreatedAt) {
			return rows[i].InvoiceCreatedAt.After(rows[j].InvoiceCreatedAt)
		}
		return rows[i].InvoiceNumber > rows[j].InvoiceNumber
	})
}

/* ===================== payments ===================== */

func (m *MemoryStore) CreatePayment(_ context.Context, p *model.PaymentModel) error {
	defer m.lock()()
	if err := m.fail("CreatePayment"); err != nil {
		return err
	}
	for _, other := range m.st.payments {
		if other.PaymentReceiptNumber == p.PaymentReceiptNumber {
			return service.ErrDuplicateNumber
		}
		if p.PaymentMethod == model.MethodOnline && other.PaymentMethod == model.MethodOnline &&
			p.PaymentTransactionID != nil && other.PaymentTransactionID != nil &&
			*p.PaymentTransactionID == *other.PaymentTransactionID {
			return service.ErrDuplicatePayment
		}
	}
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	p.PaymentCreatedAt = m.stamp()
	row := *p
	row.Invoice, row.Student = nil, nil
	m.st.payments[p.PaymentID] = row
	return nil
}

func (m *MemoryStore) GetPayment(_ context.Context, id uuid.UUID) (*model.PaymentModel, error) {
	defer m.lock()()
	p, ok := m.st.payments[id]
	if !ok {
		return nil, service.ErrPaymentNotFound
	}
	if s, ok := m.st.students[p.PaymentStudentID]; ok {
		p.Student = &s
	}
	if inv, ok := m.st.invoices[p.PaymentInvoiceID]; ok {
		p.Invoice = &inv
	}
	return &p, nil
}

func (m *MemoryStore) FindOnlinePayment(_ context.Context, transactionID string) (*model.PaymentModel, error) {
	defer m.lock()()
	for _, p := range m.st.payments {
		if p.PaymentMethod == model.MethodOnline && p.PaymentTransactionID != nil && *p.PaymentTransactionID == transactionID {
			out := p
			return &out, nil
		}
	}
	return nil, service.ErrPaymentNotFound
}

/* ===================== sequences ===================== */

func (m *MemoryStore) NextSequence(_ context.Context, prefix string, year int) (int64, error) {
	defer m.lock()()
	if err := m.fail("NextSequence"); err != nil {
		return 0, err
	}
	k := seqKey{prefix: prefix, year: year}
	m.st.sequences[k]++
	return m.st.sequences[k], nil
}

/* ===================== reports ===================== */

func (m *MemoryStore) ListDefaulters(_ context.Context, f service.DefaulterFilter) ([]model.InvoiceModel, error) {
	defer m.lock()()
	rows := make([]model.InvoiceModel, 0)
	for _, inv := range m.st.invoices {
		if !inv.IsOverdue(f.Today) {
			continue
		}
		stu := m.st.students[inv.InvoiceStudentID]
		if f.Class != "" && stu.StudentClass != f.Class {
			continue
		}
		if f.AcademicYear != "" && inv.InvoiceAcademicYear != f.AcademicYear {
			continue
		}
		rows = append(rows, m.hydrateInvoice(inv, false))
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].InvoiceDueDate.Equal(rows[j].InvoiceDueDate) {
			return rows[i].InvoiceDueDate.Before(rows[j].InvoiceDueDate)
		}
		return rows[i].InvoiceNumber < rows[j].InvoiceNumber
	})
	return rows, nil
}

func (m *MemoryStore) AggregateInvoices(_ context.Context, f service.StatsFilter) (service.InvoiceAggregate, error) {
	defer m.lock()()
	agg := service.InvoiceAggregate{Total: decimal.Zero, Paid: decimal.Zero, Balance: decimal.Zero}
	for _, inv := range m.st.invoices {
		if f.AcademicYear != "" && inv.InvoiceAcademicYear != f.AcademicYear {
			continue
		}
		agg.Count++
		agg.Total = agg.Total.Add(inv.InvoiceTotalAmount)
		agg.Paid = agg.Paid.Add(inv.InvoicePaidAmount)
		agg.Balance = agg.Balance.Add(inv.InvoiceBalanceAmount)
		switch inv.InvoiceStatus {
		case model.InvoiceStatusPaid:
			agg.PaidCount++
		case model.InvoiceStatusPending:
			agg.PendingCount++
		case model.InvoiceStatusPartial:
			agg.PartialCount++
		}
		if inv.IsOpen() && dbtime.Before(inv.InvoiceDueDate, f.Today) {
			agg.OverdueCount++
		}
	}
	return agg, nil
}
