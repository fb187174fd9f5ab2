// file: internals/features/finance/billings/model/fee_structure_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM fee_frequency ------------------------------------------------------
type FeeFrequency string

const (
	FeeFrequencyMonthly    FeeFrequency = "monthly"
	FeeFrequencyQuarterly  FeeFrequency = "quarterly"
	FeeFrequencyHalfYearly FeeFrequency = "half_yearly"
	FeeFrequencyYearly     FeeFrequency = "yearly"
	FeeFrequencyOneTime    FeeFrequency = "one_time"
)

func (f FeeFrequency) Valid() bool {
	switch f {
	case FeeFrequencyMonthly, FeeFrequencyQuarterly, FeeFrequencyHalfYearly, FeeFrequencyYearly, FeeFrequencyOneTime:
		return true
	}
	return false
}

// --- ENUM fee_structure_status -----------------------------------------------
type FeeStructureStatus string

const (
	FeeStructureActive   FeeStructureStatus = "active"
	FeeStructureInactive FeeStructureStatus = "inactive"
)

func (s FeeStructureStatus) Valid() bool {
	return s == FeeStructureActive || s == FeeStructureInactive
}

// --- MODEL fee_structures ----------------------------------------------------
type FeeStructureModel struct {
	FeeStructureID uuid.UUID `json:"fee_structure_id" gorm:"column:fee_structure_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// Insertion order; "first active match" is resolved against this.
	FeeStructureSeq int64 `json:"-" gorm:"column:fee_structure_seq;type:bigserial;autoIncrement;not null"`

	FeeStructureClass        string `json:"fee_structure_class" gorm:"column:fee_structure_class;type:varchar(40);not null;index:idx_fee_structures_lookup,priority:1"`
	FeeStructureAcademicYear string `json:"fee_structure_academic_year" gorm:"column:fee_structure_academic_year;type:varchar(20);not null;index:idx_fee_structures_lookup,priority:2"`
	FeeStructureFeeType      string `json:"fee_structure_fee_type" gorm:"column:fee_structure_fee_type;type:varchar(100);not null;index:idx_fee_structures_lookup,priority:3"`

	FeeStructureAmount    decimal.Decimal `json:"fee_structure_amount" gorm:"column:fee_structure_amount;type:numeric(12,2);not null"`
	FeeStructureFrequency FeeFrequency    `json:"fee_structure_frequency" gorm:"column:fee_structure_frequency;type:varchar(20);not null;default:'monthly'"`

	FeeStructureDueDate     *time.Time `json:"fee_structure_due_date,omitempty" gorm:"column:fee_structure_due_date;type:date"`
	FeeStructureDescription *string    `json:"fee_structure_description,omitempty" gorm:"column:fee_structure_description;type:text"`

	FeeStructureStatus FeeStructureStatus `json:"fee_structure_status" gorm:"column:fee_structure_status;type:varchar(20);not null;default:'active'"`

	FeeStructureCreatedAt time.Time      `json:"fee_structure_created_at" gorm:"column:fee_structure_created_at;type:timestamptz;not null;autoCreateTime"`
	FeeStructureUpdatedAt time.Time      `json:"fee_structure_updated_at" gorm:"column:fee_structure_updated_at;type:timestamptz;not null;autoUpdateTime"`
	FeeStructureDeletedAt gorm.DeletedAt `json:"fee_structure_deleted_at,omitempty" gorm:"column:fee_structure_deleted_at;type:timestamptz;index"`
}

func (FeeStructureModel) TableName() string { return "fee_structures" }

func (m FeeStructureModel) IsActive() bool {
	return m.FeeStructureStatus == FeeStructureActive && !m.FeeStructureDeletedAt.Valid
}
