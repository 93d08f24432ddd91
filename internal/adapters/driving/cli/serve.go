package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/faqrag/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	Long: `Start the HTTP front end.

Endpoints:
  POST /api/v1/ask          answer as JSON
  POST /api/v1/ask/stream   answer as server-sent events
  POST /api/v1/feedback     rate an answer
  GET  /api/v1/index        collection status
  GET  /healthz             liveness
  GET  /metrics             Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}

	settings := currentSettings()
	addr := serveAddr
	if addr == "" {
		addr = settings.ServerAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Assistant: assistant,
		Index:     services.Index,
		Feedback:  services.Feedback,
		Chat:      settings.Chat,
	}, httpapi.WithLogger(logger.L()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	watchPrompts(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
	return server.Run(ctx, addr)
}
