package students

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/school/students/model"
)

// StudentSeed is one roster row as exported by the student registry.
type StudentSeed struct {
	AdmissionNo string  `json:"admission_no"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Class       string  `json:"class"`
	Section     *string `json:"section"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	ParentEmail *string `json:"parent_email"`
	Status      string  `json:"status"`
}

// DecodeStudentSeeds reads a JSON array of roster rows and checks each one.
func DecodeStudentSeeds(r io.Reader) ([]model.StudentModel, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var seeds []StudentSeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	seen := make(map[string]struct{}, len(seeds))
	out := make([]model.StudentModel, 0, len(seeds))
	for i, s := range seeds {
		adm := strings.TrimSpace(s.AdmissionNo)
		first := strings.TrimSpace(s.FirstName)
		class := strings.TrimSpace(s.Class)
		if adm == "" || first == "" || class == "" {
			return nil, fmt.Errorf("roster row %d: admission_no, first_name and class are required", i+1)
		}
		if _, dup := seen[adm]; dup {
			return nil, fmt.Errorf("roster row %d: admission_no %s repeated", i+1, adm)
		}
		seen[adm] = struct{}{}

		status := model.StudentActive
		switch model.StudentStatus(strings.ToLower(strings.TrimSpace(s.Status))) {
		case "", model.StudentActive:
		case model.StudentInactive:
			status = model.StudentInactive
		case model.StudentPassedOut:
			status = model.StudentPassedOut
		case model.StudentTransferred:
			status = model.StudentTransferred
		default:
			return nil, fmt.Errorf("roster row %d: unknown status %q", i+1, s.Status)
		}

		out = append(out, model.StudentModel{
			StudentAdmissionNo: adm,
			StudentFirstName:   first,
			StudentLastName:    strings.TrimSpace(s.LastName),
			StudentClass:       class,
			StudentSection:     s.Section,
			StudentParentName:  s.ParentName,
			StudentParentPhone: s.ParentPhone,
			StudentParentEmail: s.ParentEmail,
			StudentStatus:      status,
		})
	}
	return out, nil
}

// SeedStudentsFromJSON inserts roster rows; admission numbers already present are left alone.
func SeedStudentsFromJSON(ctx context.Context, db *gorm.DB, filePath string) (int64, error) {
	log := configs.WithComponent("seed")
	log.Info().Str("file", filePath).Msg("📥 reading roster")

	f, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := DecodeStudentSeeds(f)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_admission_no"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, 200)
	if res.Error != nil {
		return 0, res.Error
	}
	log.Info().Int("rows", len(rows)).Int64("inserted", res.RowsAffected).Msg("✅ roster seeded")
	return res.RowsAffected, nil
}
