package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/timebuddy/internal/api"
	"github.com/randalmurphal/timebuddy/internal/db"
)

// newTodayCmd creates the today command
func newTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's stored schedule",
		Long: `Show today's stored schedule with per-block completion state.

Examples:
  timebuddy today          # Render today's timeline
  timebuddy today --json   # Raw schedule document
  timebuddy today --date 2024-06-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(nil)
			if err != nil {
				return err
			}
			defer app.Close()

			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format(api.DateFormat)
			}

			sched, err := app.engine.ScheduleFor(context.Background(), date)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"date":     date,
					"schedule": sched,
				})
			}

			return renderSchedule(date, sched)
		},
	}

	cmd.Flags().String("date", "", "date to show (YYYY-MM-DD, default today)")

	return cmd
}

func renderSchedule(date string, sched *db.Schedule) error {
	styles := outputStyles()

	if sched == nil {
		fmt.Println(styles.Subtle.Render("No schedule stored for " + date))
		return nil
	}

	fmt.Println(styles.Title.Render("Schedule for " + date))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, block := range sched.Timeline {
		mark := "[ ]"
		style := styles.Pending
		switch {
		case block.ItemID.IsBreak():
			mark = " - "
			style = styles.Break
		case block.Completed:
			mark = "[x]"
			style = styles.Done
		}
		line := fmt.Sprintf("%s\t%d\t%s\t%s → %s", mark, block.ID, block.ItemName,
			clockTime(block.StartTime), clockTime(block.EndTime))
		fmt.Fprintln(w, style.Render(line))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println(styles.Subtle.Render(fmt.Sprintf("final score: %.2f", sched.FinalScore)))
	return nil
}

// clockTime trims a timeline timestamp down to HH:MM for display.
func clockTime(ts string) string {
	if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
		return t.Format("15:04")
	}
	return ts
}
