// file: internals/features/finance/billings/model/document_sequence_model.go
package model

import (
	"errors"
	"fmt"
	"time"
)

const (
	PrefixInvoice = "INV"
	PrefixReceipt = "RCP"

	// Five digits per (prefix, year).
	MaxDocumentSequence = 99999
)

var ErrSequenceExhausted = errors.New("document sequence exhausted for year")

// DocumentSequenceModel is one counter row per (prefix, calendar year).
type DocumentSequenceModel struct {
	DocumentSequencePrefix    string    `gorm:"column:document_sequence_prefix;type:varchar(8);primaryKey"`
	DocumentSequenceYear      int       `gorm:"column:document_sequence_year;primaryKey;autoIncrement:false"`
	DocumentSequenceLastValue int64     `gorm:"column:document_sequence_last_value;not null;default:0"`
	DocumentSequenceUpdatedAt time.Time `gorm:"column:document_sequence_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (DocumentSequenceModel) TableName() string { return "document_sequences" }

// FormatDocumentNumber renders INV202400001 style numbers.
func FormatDocumentNumber(prefix string, year int, seq int64) (string, error) {
	if seq < 1 || seq > MaxDocumentSequence {
		return "", fmt.Errorf("%w: %s %d reached %d", ErrSequenceExhausted, prefix, year, seq)
	}
	return fmt.Sprintf("%s%04d%05d", prefix, year, seq), nil
}
