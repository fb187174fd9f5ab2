// file: internals/features/school/students/model/student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// =======================================
// ENUM
// =======================================

type StudentStatus string

const (
	StudentActive      StudentStatus = "active"
	StudentInactive    StudentStatus = "inactive"
	StudentPassedOut   StudentStatus = "passed_out"
	StudentTransferred StudentStatus = "transferred"
)

// =======================================
// Model: students
// Owned by the student registry; the fee office only reads it.
// =======================================

type StudentModel struct {
	StudentID          uuid.UUID `gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_id"`
	StudentAdmissionNo string    `gorm:"column:student_admission_no;type:varchar(40);not null;uniqueIndex:uq_students_admission_no" json:"student_admission_no"`

	StudentFirstName string `gorm:"column:student_first_name;type:varchar(80);not null" json:"student_first_name"`
	StudentLastName  string `gorm:"column:student_last_name;type:varchar(80);not null;default:''" json:"student_last_name"`

	StudentClass   string  `gorm:"column:student_class;type:varchar(40);not null;index:idx_students_class_status,priority:1" json:"student_class"`
	StudentSection *string `gorm:"column:student_section;type:varchar(20)" json:"student_section,omitempty"`

	StudentParentName  *string `gorm:"column:student_parent_name;type:varchar(120)" json:"student_parent_name,omitempty"`
	StudentParentPhone *string `gorm:"column:student_parent_phone;type:varchar(30)" json:"student_parent_phone,omitempty"`
	StudentParentEmail *string `gorm:"column:student_parent_email;type:varchar(120)" json:"student_parent_email,omitempty"`

	StudentStatus StudentStatus `gorm:"column:student_status;type:varchar(20);not null;default:'active';index:idx_students_class_status,priority:2" json:"student_status"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;type:timestamptz;not null;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;type:timestamptz;not null;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;type:timestamptz;index" json:"-"`
}

func (StudentModel) TableName() string { return "students" }

func (s StudentModel) FullName() string {
	if s.StudentLastName == "" {
		return s.StudentFirstName
	}
	return s.StudentFirstName + " " + s.StudentLastName
}
