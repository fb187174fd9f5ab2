// file: internals/features/finance/billings/scheduler/defaulter_digest.go
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/helpers/money"
)

// DefaulterSource is the read side the digest needs. *service.Service satisfies it.
type DefaulterSource interface {
	FindDefaulters(ctx context.Context, class, academicYear string) ([]model.InvoiceModel, error)
	Today() time.Time
}

type ClassDigest struct {
	Class       string
	Invoices    int
	Students    int
	Outstanding decimal.Decimal
	OldestDue   time.Time
}

type Digest struct {
	Today       time.Time
	Invoices    int
	Outstanding decimal.Decimal
	Classes     []ClassDigest
}

// BuildDigest groups today's defaulters by class. Read-only.
func BuildDigest(ctx context.Context, src DefaulterSource) (*Digest, error) {
	rows, err := src.FindDefaulters(ctx, "", "")
	if err != nil {
		return nil, err
	}

	d := &Digest{Today: src.Today(), Outstanding: decimal.Zero}
	byClass := map[string]*ClassDigest{}
	students := map[string]map[string]struct{}{}

	for _, inv := range rows {
		class := "(unknown)"
		if inv.Student != nil {
			class = inv.Student.StudentClass
		}
		cd, ok := byClass[class]
		if !ok {
			cd = &ClassDigest{Class: class, Outstanding: decimal.Zero, OldestDue: inv.InvoiceDueDate}
			byClass[class] = cd
			students[class] = map[string]struct{}{}
		}
		cd.Invoices++
		cd.Outstanding = cd.Outstanding.Add(inv.InvoiceBalanceAmount)
		if inv.InvoiceDueDate.Before(cd.OldestDue) {
			cd.OldestDue = inv.InvoiceDueDate
		}
		students[class][inv.InvoiceStudentID.String()] = struct{}{}

		d.Invoices++
		d.Outstanding = d.Outstanding.Add(inv.InvoiceBalanceAmount)
	}

	for class, cd := range byClass {
		cd.Students = len(students[class])
		d.Classes = append(d.Classes, *cd)
	}
	sort.Slice(d.Classes, func(i, j int) bool { return d.Classes[i].Class < d.Classes[j].Class })
	return d, nil
}

func logDigest(l zerolog.Logger, d *Digest) {
	for _, c := range d.Classes {
		l.Info().
			Str("class", c.Class).
			Int("invoices", c.Invoices).
			Int("students", c.Students).
			Str("outstanding", money.Format(c.Outstanding)).
			Str("oldest_due", c.OldestDue.Format("2006-01-02")).
			Msg("defaulters")
	}
	l.Info().
		Str("today", d.Today.Format("2006-01-02")).
		Int("invoices", d.Invoices).
		Str("outstanding", money.Format(d.Outstanding)).
		Msg("defaulter digest done")
}

// StartDefaulterDigest schedules the digest. The caller stops the returned cron on shutdown.
func StartDefaulterDigest(schedule string, loc *time.Location, src DefaulterSource) (*cron.Cron, error) {
	l := configs.WithComponent("defaulter-digest")

	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		d, err := BuildDigest(ctx, src)
		if err != nil {
			l.Error().Err(err).Msg("defaulter digest failed")
			return
		}
		logDigest(l, d)
	})
	if err != nil {
		return nil, fmt.Errorf("add defaulter digest schedule %q: %w", schedule, err)
	}

	l.Info().Str("schedule", schedule).Str("tz", loc.String()).Msg("defaulter digest scheduled")
	c.Start()
	return c, nil
}
