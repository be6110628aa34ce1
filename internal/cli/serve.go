package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/timebuddy/internal/api"
	"github.com/randalmurphal/timebuddy/internal/events"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the timebuddy API server for the web UI.

The API server provides REST endpoints and a websocket feed for:
  • Schedule generation and retrieval
  • Block completion tracking
  • Monthly productivity stats
  • Task history logging and predictions

Example:
  timebuddy serve              # Start on configured port (default 3001)
  timebuddy serve --port 8080  # Start on custom port`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(events.NewMemoryPublisher())
			if err != nil {
				return err
			}
			defer app.Close()

			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				app.cfg.Server.Port = port
			}

			server := api.New(&api.Config{
				Addr:          app.cfg.Server.Addr(),
				AllowedOrigin: app.cfg.Server.AllowedOrigin,
				Engine:        app.engine,
				Oracle:        app.oracle,
				Publisher:     app.publisher,
				Logger:        app.logger,
			})

			fmt.Printf("Starting API server on %s...\n", app.cfg.Server.Addr())
			fmt.Println("Press Ctrl+C to stop")

			// Handle graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				fmt.Println("\nShutting down...")
				cancel()
			}()

			return server.Start(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", 3001, "port to listen on")

	return cmd
}
