package cmd

import (
	"fmt"

	"github.com/frahmantamala/household-expense/internal/core/common/validation"
	"github.com/frahmantamala/household-expense/internal/core/period"
	"github.com/spf13/cobra"
)

var (
	periodClosingDay int
	periodYear       int
	periodMonth      int
	periodDate       string
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Print the date range of an accounting period",
	Long: `Print the inclusive date range and label of the period owned by --year/--month,
or of the period containing --date, for the given closing day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateClosingDay(periodClosingDay); err != nil {
			return err
		}

		ym := period.YearMonth{Year: periodYear, Month: periodMonth}
		if periodDate != "" {
			owning, err := period.ForDateString(periodDate, periodClosingDay)
			if err != nil {
				return err
			}
			ym = owning
		} else if err := validation.ValidateYearMonth(ym.Year, ym.Month); err != nil {
			return err
		}

		p := period.Compute(periodClosingDay, ym.Year, ym.Month)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", ym.Label(), p.StartString(), p.EndString())
		return nil
	},
}

func init() {
	periodCmd.Flags().IntVar(&periodClosingDay, "closing-day", 25, "closing day of the group (1-28)")
	periodCmd.Flags().IntVar(&periodYear, "year", 0, "period year")
	periodCmd.Flags().IntVar(&periodMonth, "month", 0, "period month (1-12)")
	periodCmd.Flags().StringVar(&periodDate, "date", "", "a YYYY-MM-DD date whose period is printed")
}
