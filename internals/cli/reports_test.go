package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

func TestWriteDefaulters(t *testing.T) {
	phone := "+91-9800000001"
	today := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	rows := []model.InvoiceModel{{
		InvoiceNumber:        "INV202400001",
		InvoiceFeeType:       "Tuition Fee",
		InvoiceTotalAmount:   decimal.RequireFromString("5000"),
		InvoicePaidAmount:    decimal.RequireFromString("2000"),
		InvoiceBalanceAmount: decimal.RequireFromString("3000"),
		InvoiceDueDate:       time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		InvoiceStatus:        model.InvoiceStatusPartial,
		Student: &studentModel.StudentModel{
			StudentAdmissionNo: "G5-001", StudentFirstName: "Asha", StudentLastName: "Rao",
			StudentClass: "Grade 5", StudentParentPhone: &phone,
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeDefaulters(&buf, rows, today))
	out := buf.String()

	assert.Contains(t, out, "INV202400001")
	assert.Contains(t, out, "Asha Rao")
	assert.Contains(t, out, "2024-09-01")
	assert.Contains(t, out, "3000.00")
	assert.Contains(t, out, phone)
	assert.Contains(t, out, "1 overdue invoice(s), 3000.00 outstanding as of 2024-09-15")
}

func TestWriteStatsIsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, &service.FeeStats{
		TotalInvoices:        3,
		TotalAmount:          decimal.RequireFromString("15000"),
		PaidAmount:           decimal.RequireFromString("7000"),
		BalanceAmount:        decimal.RequireFromString("8000"),
		CollectionPercentage: decimal.RequireFromString("46.67"),
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 3, got["total_invoices"])
	assert.Equal(t, "15000.00", got["total_amount"])
	assert.Equal(t, "46.67", got["collection_percentage"])
}
