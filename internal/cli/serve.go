package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/quill/internal/api"
	"github.com/sprite-ai/quill/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local stand-in writing backend",
	Long: `Start an HTTP server that speaks the writing backend protocol with a
deterministic generator. Useful for trying quill without a model server.

Endpoints:
  GET  /health                  Health check
  POST /start_generation        Prime the next push channel
  GET  /stream_cursor           Real-time fragments (SSE)
  GET  /stream_suggestions      Batch fragments (SSE)
  GET  /ws/stream_cursor        Real-time fragments (WebSocket)
  GET  /ws/stream_suggestions   Batch fragments (WebSocket)
  POST /suggest                 Batch suggest
  POST /detect_errors           Error detection`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 8000, "port to listen on")
	serveCmd.Flags().Duration("delay", 50*time.Millisecond, "pause between streamed fragments")
	serveCmd.Flags().Int("drop-after", 0, "drop push channels after this many fragments (0 = never)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, logging.WithConsole(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")
	delay, _ := cmd.Flags().GetDuration("delay")
	dropAfter, _ := cmd.Flags().GetInt("drop-after")

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen,
		api.WithLogger(log),
		api.WithFragmentDelay(delay),
		api.WithDropAfter(dropAfter),
	)
	return srv.ListenAndServe()
}
