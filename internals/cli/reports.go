package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"schoolku_backend/internals/features/finance/billings/dto"
	"schoolku_backend/internals/features/finance/billings/model"
	"schoolku_backend/internals/features/finance/billings/service"
	"schoolku_backend/internals/helpers/dbtime"
	"schoolku_backend/internals/helpers/money"
)

var defaultersCmd = &cobra.Command{
	Use:   "defaulters",
	Short: "List open invoices past their due date",
	Example: `  # All classes
  feesctl defaulters

  # One class, one academic year
  feesctl defaulters --class "Grade 5" --year 2024-2025`,
	RunE: runDefaulters,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print collection statistics as JSON",
	Example: `  feesctl stats --year 2024-2025`,
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(defaultersCmd, statsCmd)

	defaultersCmd.Flags().String("class", "", "Only this class")
	defaultersCmd.Flags().String("year", "", "Only this academic year (e.g. 2024-2025)")
	statsCmd.Flags().String("year", "", "Only this academic year (e.g. 2024-2025)")
}

func runDefaulters(cmd *cobra.Command, args []string) error {
	class, _ := cmd.Flags().GetString("class")
	year, _ := cmd.Flags().GetString("year")

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	rows, err := svc.FindDefaulters(ctx, class, year)
	if err != nil {
		return err
	}
	return writeDefaulters(cmd.OutOrStdout(), rows, svc.Today())
}

func runStats(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetString("year")

	svc, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	st, err := svc.FeeStats(ctx, year)
	if err != nil {
		return err
	}
	return writeStats(cmd.OutOrStdout(), st)
}

func writeDefaulters(w io.Writer, rows []model.InvoiceModel, today time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INVOICE\tADMISSION\tSTUDENT\tCLASS\tFEE\tDUE\tDAYS\tBALANCE\tPARENT PHONE")

	outstanding := decimal.Zero
	for _, inv := range rows {
		outstanding = outstanding.Add(inv.InvoiceBalanceAmount)
	}

	for _, d := range dto.FromDefaulters(rows, today) {
		admission, name, class, phone := "-", "-", "-", "-"
		if s := d.Student; s != nil {
			admission, name, class = s.AdmissionNo, s.Name, s.Class
			if s.ParentPhone != nil {
				phone = *s.ParentPhone
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			d.InvoiceNumber, admission, name, class, d.FeeType, d.DueDate, d.DaysOverdue, d.BalanceAmount, phone)
	}
	fmt.Fprintf(tw, "\n%d overdue invoice(s), %s outstanding as of %s\n", len(rows), money.Format(outstanding), dbtime.FormatDate(today))
	return tw.Flush()
}

func writeStats(w io.Writer, st *service.FeeStats) error {
	out, err := sonic.ConfigStd.MarshalIndent(dto.FromFeeStats(st), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
