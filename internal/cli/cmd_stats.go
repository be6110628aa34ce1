package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// newStatsCmd creates the stats command
func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly productivity stats",
		Long: `Show the per-day productivity ledger for a month.

Examples:
  timebuddy stats                      # Current month
  timebuddy stats --year 2024 --month 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(nil)
			if err != nil {
				return err
			}
			defer app.Close()

			now := time.Now()
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			stats, err := app.engine.MonthlyStats(context.Background(), year, month)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"year":  year,
					"month": month,
					"stats": stats,
				})
			}

			styles := outputStyles()
			fmt.Println(styles.Title.Render(fmt.Sprintf("Productivity %04d-%02d", year, month)))

			if len(stats) == 0 {
				fmt.Println(styles.Subtle.Render("No scheduled days this month"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCOMPLETED\tSCHEDULED")
			totalDone, totalScheduled := 0, 0
			for _, stat := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\n", stat.Date, stat.BlocksCompleted, stat.TotalBlocksScheduled)
				totalDone += stat.BlocksCompleted
				totalScheduled += stat.TotalBlocksScheduled
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Println(styles.Subtle.Render(fmt.Sprintf("%d days, %d/%d blocks completed",
				len(stats), totalDone, totalScheduled)))
			return nil
		},
	}

	cmd.Flags().Int("year", 0, "year (default current)")
	cmd.Flags().Int("month", 0, "month 1-12 (default current)")

	return cmd
}
