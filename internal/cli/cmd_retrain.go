package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newRetrainCmd creates the retrain command
func newRetrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the scheduling model now",
		Long: `Send the full task history to the scheduling service for an
immediate retrain, without waiting for the automatic threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(nil)
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.engine.Retrain(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Retrained on %d history records\n", count)
			return nil
		},
	}
}
