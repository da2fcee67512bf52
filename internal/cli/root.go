// Package cli wires quill's cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/config"
	"github.com/sprite-ai/quill/internal/logging"
	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/stream"
)

const pingTimeout = 2 * time.Second

// errFindings makes the process exit 1 without printing an error.
var errFindings = errors.New("errors found")

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Streaming Korean writing assistant",
	Long: `quill asks a writing backend for continuation ideas, batch suggestions
and spelling corrections while you write.

Configuration is read from ` + "`config.toml`" + ` in the quill config directory
($QUILL_CONFIG_DIR, $XDG_CONFIG_HOME/quill or ~/.config/quill). Environment
variables override the file and flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "backend base URL")
	pf.String("tone", "", "writing tone (자동, 감성적, 논리적, 설명적, 서사적)")
	pf.String("transport", "", "push channel transport: sse or websocket")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(writeCmd, suggestCmd, batchCmd, checkCmd, serveCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errFindings) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// loadConfig reads the configuration and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v, _ := flags.GetString("tone"); v != "" {
		cfg.Writing.Tone = v
	}
	if v, _ := flags.GetString("transport"); v != "" {
		cfg.Backend.Transport = config.NormalizeTransport(v)
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	for _, w := range config.Validate(cfg) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return cfg, nil
}

// app bundles what the backend-facing commands share.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *backend.Client
	manager *stream.Manager
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	log = log.With(zap.String("command", cmd.Name()))

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout(), cfg.Backend.CacheTTL(),
		backend.WithLogger(log),
		backend.WithPaths(backend.Paths{
			Start:        cfg.Endpoints.Start,
			Suggest:      cfg.Endpoints.Suggest,
			DetectErrors: cfg.Endpoints.DetectErrors,
			Health:       cfg.Endpoints.Health,
		}),
	)

	var t stream.Transport
	if cfg.Backend.Transport == config.TransportWebSocket {
		t = stream.NewWSTransport(client.BaseURL(), client)
	} else {
		t = stream.NewSSETransport(client.BaseURL(), client)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		manager: stream.NewManager(t, stream.WithLogger(log)),
	}, nil
}

func (a *app) payload(text string) model.Payload {
	return model.Payload{Message: text, Tone: model.Tone(a.cfg.Writing.Tone)}
}

func (a *app) endpoints() map[model.Mode]string {
	return map[model.Mode]string{
		model.ModeRealtime: a.cfg.StreamPath(model.ModeRealtime),
		model.ModeBatch:    a.cfg.StreamPath(model.ModeBatch),
	}
}

func (a *app) Close() {
	a.manager.Close()
	a.client.Close()
	_ = a.log.Sync()
}

// warnUnreachable checks the backend's health endpoint and prints a warning
// to w when it does not answer.
func warnUnreachable(ctx context.Context, w io.Writer, c *backend.Client) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		fmt.Fprintf(w, "Warning: backend %s is not reachable: %v\n", c.BaseURL(), err)
		return false
	}
	return true
}

// readInput returns the text to work on: stdin for no arguments or "-",
// otherwise the arguments joined with spaces.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

// requireText rejects blank input before any backend call.
func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return backend.ErrEmptyMessage
	}
	return nil
}
