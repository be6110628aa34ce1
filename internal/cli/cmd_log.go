package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/timebuddy/internal/db"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <task name>",
		Short: "Record a completed task",
		Long: `Append a completed task to the history log.

Crossing the retrain threshold kicks off a model retrain in the
background; the command does not wait for it.

Examples:
  timebuddy log "Write report" --priority high --duration 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(nil)
			if err != nil {
				return err
			}
			defer app.Close()

			priority, _ := cmd.Flags().GetString("priority")
			duration, _ := cmd.Flags().GetInt("duration")

			rec := &db.TaskHistoryRecord{
				TaskName:              args[0],
				Priority:              priority,
				ActualDurationMinutes: duration,
			}
			if err := app.engine.LogCompletedTask(context.Background(), rec); err != nil {
				return err
			}

			fmt.Printf("Logged %q (#%d, %s, %d min)\n", rec.TaskName, rec.ID, rec.Priority, rec.ActualDurationMinutes)
			return nil
		},
	}

	cmd.Flags().String("priority", "medium", "task priority (low, medium, high)")
	cmd.Flags().Int("duration", 0, "actual duration in minutes")

	return cmd
}
