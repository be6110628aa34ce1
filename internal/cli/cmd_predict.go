package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newPredictCmd creates the predict command
func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <task name>",
		Short: "Predict priority and duration for a task",
		Long: `Ask the scheduling service for a priority/duration estimate.

When the service is unreachable a usable default is returned
(medium priority, 30 minutes).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(nil)
			if err != nil {
				return err
			}
			defer app.Close()

			pred := app.oracle.Predict(context.Background(), args[0])

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(pred)
			}

			fmt.Printf("%s: %s priority, ~%d minutes\n", args[0], pred.PredictedPriority, pred.PredictedDuration)
			return nil
		},
	}
}
