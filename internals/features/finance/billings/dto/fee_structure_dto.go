// file: internals/features/finance/billings/dto/fee_structure_dto.go
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
// FEE STRUCTURES — REQUEST
////////////////////////////////////////////////////////////////////////////////

type CreateFeeStructureRequest struct {
	Class        string           `json:"class" validate:"required,max=40"`
	AcademicYear string           `json:"academic_year" validate:"required,max=20"`
	FeeType      string           `json:"fee_type" validate:"required,max=100"`
	Amount       *decimal.Decimal `json:"amount" validate:"required"`
	Frequency    string           `json:"frequency" validate:"omitempty,oneof=monthly quarterly half_yearly yearly one_time"`
	DueDate      *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	Status       string           `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CreateFeeStructureRequest) ToInput() (service.CreateFeeStructureInput, error) {
	due, err := parseDatePtr("due_date", r.DueDate)
	if err != nil {
		return service.CreateFeeStructureInput{}, err
	}
	in := service.CreateFeeStructureInput{
		Class:        r.Class,
		AcademicYear: r.AcademicYear,
		FeeType:      r.FeeType,
		Frequency:    r.Frequency,
		DueDate:      due,
		Description:  r.Description,
		Status:       r.Status,
	}
	if r.Amount != nil {
		in.Amount = *r.Amount
	}
	return in, nil
}

// UpdateFeeStructureRequest is a partial update. due_date "" clears the date.
type UpdateFeeStructureRequest struct {
	Class        *string          `json:"class" validate:"omitempty,min=1,max=40"`
	AcademicYear *string          `json:"academic_year" validate:"omitempty,min=1,max=20"`
	FeeType      *string          `json:"fee_type" validate:"omitempty,min=1,max=100"`
	Amount       *decimal.Decimal `json:"amount"`
	Frequency    *string          `json:"frequency" validate:"omitempty,oneof=monthly quarterly half_yearly yearly one_time"`
	DueDate      *string          `json:"due_date"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r UpdateFeeStructureRequest) ToInput() (service.UpdateFeeStructureInput, error) {
	in := service.UpdateFeeStructureInput{
		Class:        r.Class,
		AcademicYear: r.AcademicYear,
		FeeType:      r.FeeType,
		Amount:       r.Amount,
		Frequency:    r.Frequency,
		Description:  r.Description,
		Status:       r.Status,
	}
	if r.DueDate != nil {
		if *r.DueDate == "" {
			in.ClearDueDate = true
		} else {
			d, err := parseDatePtr("due_date", r.DueDate)
			if err != nil {
				return in, err
			}
			in.DueDate = d
		}
	}
	return in, nil
}

////////////////////////////////////////////////////////////////////////////////
// FEE STRUCTURES — RESPONSE
////////////////////////////////////////////////////////////////////////////////

type FeeStructureResponse struct {
	ID           uuid.UUID `json:"id"`
	Class        string    `json:"class"`
	AcademicYear string    `json:"academic_year"`
	FeeType      string    `json:"fee_type"`
	Amount       string    `json:"amount"`
	Frequency    string    `json:"frequency"`
	DueDate      *string   `json:"due_date"`
	Description  *string   `json:"description,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromFeeStructure(m *model.FeeStructureModel) FeeStructureResponse {
	return FeeStructureResponse{
		ID:           m.FeeStructureID,
		Class:        m.FeeStructureClass,
		AcademicYear: m.FeeStructureAcademicYear,
		FeeType:      m.FeeStructureFeeType,
		Amount:       money.Format(m.FeeStructureAmount),
		Frequency:    string(m.FeeStructureFrequency),
		DueDate:      dbtime.FormatDatePtr(m.FeeStructureDueDate),
		Description:  m.FeeStructureDescription,
		Status:       string(m.FeeStructureStatus),
		CreatedAt:    m.FeeStructureCreatedAt,
		UpdatedAt:    m.FeeStructureUpdatedAt,
	}
}

func FromFeeStructures(rows []model.FeeStructureModel) []FeeStructureResponse {
	out := make([]FeeStructureResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromFeeStructure(&rows[i]))
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// helpers
////////////////////////////////////////////////////////////////////////////////

func parseDatePtr(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := dbtime.ParseDate(*s)
	if err != nil {
		v := service.NewValidationError()
		v.Add(field, "must be a date in YYYY-MM-DD form")
		return nil, v
	}
	return &t, nil
}
