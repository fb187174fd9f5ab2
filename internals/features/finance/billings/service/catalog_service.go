// file: internals/features/finance/billings/service/catalog_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

type CreateFeeStructureInput struct {
	Class        string
	AcademicYear string
	FeeType      string
	Amount       decimal.Decimal
	Frequency    string
	DueDate      *time.Time
	Description  *string
	Status       string
}

// UpdateFeeStructureInput: nil fields are left unchanged. ClearDueDate drops the due date.
type UpdateFeeStructureInput struct {
	Class        *string
	AcademicYear *string
	FeeType      *string
	Amount       *decimal.Decimal
	Frequency    *string
	DueDate      *time.Time
	ClearDueDate bool
	Description  *string
	Status       *string
}

func (s *Service) CreateFeeStructure(ctx context.Context, in CreateFeeStructureInput) (*model.FeeStructureModel, error) {
	m := &model.FeeStructureModel{
		FeeStructureClass:        strings.TrimSpace(in.Class),
		FeeStructureAcademicYear: strings.TrimSpace(in.AcademicYear),
		FeeStructureFeeType:      strings.TrimSpace(in.FeeType),
		FeeStructureAmount:       in.Amount,
		FeeStructureFrequency:    model.FeeFrequency(defaultString(in.Frequency, string(model.FeeFrequencyMonthly))),
		FeeStructureDescription:  trimPtr(in.Description),
		FeeStructureStatus:       model.FeeStructureStatus(defaultString(in.Status, string(model.FeeStructureActive))),
	}
	if in.DueDate != nil {
		d := dbtime.DateOf(*in.DueDate)
		m.FeeStructureDueDate = &d
	}
	if err := validateFeeStructure(m); err != nil {
		return nil, err
	}
	if err := s.store.CreateFeeStructure(ctx, m); err != nil {
		return nil, fmt.Errorf("create fee structure: %w", err)
	}
	return m, nil
}

func (s *Service) UpdateFeeStructure(ctx context.Context, id uuid.UUID, in UpdateFeeStructureInput) (*model.FeeStructureModel, error) {
	m, err := s.store.GetFeeStructure(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Class != nil {
		m.FeeStructureClass = strings.TrimSpace(*in.Class)
	}
	if in.AcademicYear != nil {
		m.FeeStructureAcademicYear = strings.TrimSpace(*in.AcademicYear)
	}
	if in.FeeType != nil {
		m.FeeStructureFeeType = strings.TrimSpace(*in.FeeType)
	}
	if in.Amount != nil {
		m.FeeStructureAmount = *in.Amount
	}
	if in.Frequency != nil {
		m.FeeStructureFrequency = model.FeeFrequency(strings.TrimSpace(*in.Frequency))
	}
	switch {
	case in.ClearDueDate:
		m.FeeStructureDueDate = nil
	case in.DueDate != nil:
		d := dbtime.DateOf(*in.DueDate)
		m.FeeStructureDueDate = &d
	}
	if in.Description != nil {
		m.FeeStructureDescription = trimPtr(in.Description)
	}
	if in.Status != nil {
		m.FeeStructureStatus = model.FeeStructureStatus(strings.TrimSpace(*in.Status))
	}

	if err := validateFeeStructure(m); err != nil {
		return nil, err
	}
	if err := s.store.SaveFeeStructure(ctx, m); err != nil {
		return nil, fmt.Errorf("update fee structure: %w", err)
	}
	return m, nil
}

// DeleteFeeStructure soft-deletes. Issued invoices keep their copied amounts.
func (s *Service) DeleteFeeStructure(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteFeeStructure(ctx, id)
}

func (s *Service) GetFeeStructure(ctx context.Context, id uuid.UUID) (*model.FeeStructureModel, error) {
	return s.store.GetFeeStructure(ctx, id)
}

func (s *Service) ListFeeStructures(ctx context.Context, f StructureFilter) ([]model.FeeStructureModel, error) {
	return s.store.ListFeeStructures(ctx, f)
}

// FindActiveStructure is the first active match by insertion order.
func (s *Service) FindActiveStructure(ctx context.Context, class, academicYear, feeType string) (*model.FeeStructureModel, error) {
	return s.store.FindActiveFeeStructure(ctx, strings.TrimSpace(class), strings.TrimSpace(academicYear), strings.TrimSpace(feeType))
}

func validateFeeStructure(m *model.FeeStructureModel) error {
	v := NewValidationError()
	if m.FeeStructureClass == "" {
		v.Add("class", "is required")
	}
	if m.FeeStructureAcademicYear == "" {
		v.Add("academic_year", "is required")
	}
	if m.FeeStructureFeeType == "" {
		v.Add("fee_type", "is required")
	}
	if m.FeeStructureAmount.IsNegative() {
		v.Add("amount", "must not be negative")
	}
	if !money.HasCents(m.FeeStructureAmount) {
		v.Add("amount", "must have at most 2 decimal places")
	}
	if !m.FeeStructureFrequency.Valid() {
		v.Add("frequency", "must be one of monthly, quarterly, half_yearly, yearly, one_time")
	}
	if !m.FeeStructureStatus.Valid() {
		v.Add("status", "must be one of active, inactive")
	}
	return v.OrNil()
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
