// file: internals/features/finance/billings/service/report_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/helpers/money"
)

type FeeStats struct {
	TotalInvoices        int64
	TotalAmount          decimal.Decimal
	PaidAmount           decimal.Decimal
	BalanceAmount        decimal.Decimal
	PaidCount            int64
	PendingCount         int64
	PartialCount         int64
	OverdueCount         int64
	CollectionPercentage decimal.Decimal
}

// FindDefaulters lists open invoices due strictly before today, oldest first.
func (s *Service) FindDefaulters(ctx context.Context, class, academicYear string) ([]model.InvoiceModel, error) {
	rows, err := s.store.ListDefaulters(ctx, DefaulterFilter{
		Class:        strings.TrimSpace(class),
		AcademicYear: strings.TrimSpace(academicYear),
		Today:        s.Today(),
	})
	if err != nil {
		return nil, fmt.Errorf("list defaulters: %w", err)
	}
	return rows, nil
}

func (s *Service) FeeStats(ctx context.Context, academicYear string) (*FeeStats, error) {
	agg, err := s.store.AggregateInvoices(ctx, StatsFilter{
		AcademicYear: strings.TrimSpace(academicYear),
		Today:        s.Today(),
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate invoices: %w", err)
	}
	return &FeeStats{
		TotalInvoices:        agg.Count,
		TotalAmount:          agg.Total,
		PaidAmount:           agg.Paid,
		BalanceAmount:        agg.Balance,
		PaidCount:            agg.PaidCount,
		PendingCount:         agg.PendingCount,
		PartialCount:         agg.PartialCount,
		OverdueCount:         agg.OverdueCount,
		CollectionPercentage: money.Percent(agg.Paid, agg.Total),
	}, nil
}
