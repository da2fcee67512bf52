package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/stream"
	"github.com/sprite-ai/quill/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [text|-]",
	Short: "Stream suggestions for a text (non-interactive)",
	Long: `Run one push channel for the text and print the parsed suggestions.
Fragments are echoed to stderr as they arrive; the records go to stdout.

Examples:
  quill suggest 오늘은 비가 왔다.
  quill suggest --mode batch - < draft.txt
  cat draft.txt | quill suggest --format json`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringP("mode", "m", "realtime", "suggestion mode: realtime, batch")
	suggestCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	suggestCmd.Flags().BoolP("quiet", "q", false, "do not echo fragments to stderr")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, ok := model.ParseMode(modeName)
	if !ok {
		return fmt.Errorf("unknown mode %q", modeName)
	}
	format, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if err := requireText(text); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var records []model.Record
	s := a.manager.Start(a.cfg.StreamPath(mode), a.payload(text))
	s.OnComplete(func(s *stream.Session) {
		records = suggest.Parse(mode, s.Buffer())
	})

	echo := cmd.ErrOrStderr()
	if quiet {
		echo = io.Discard
	}
	err = a.manager.Drain(cmd.Context(), func(_ *stream.Session, ev stream.Event) {
		if ev.Err == nil && ev.Fragment != stream.Sentinel {
			fmt.Fprint(echo, ev.Fragment)
		}
	})
	fmt.Fprintln(echo)
	if err != nil {
		return err
	}

	if s.Status() != stream.Completed {
		a.log.Warn("suggest stream ended early",
			zap.String("session", s.ID()),
			zap.Stringer("status", s.Status()),
			zap.Error(s.Err()))
		if s.Err() != nil {
			return fmt.Errorf("stream %s: %w", s.Status(), s.Err())
		}
		return fmt.Errorf("stream %s", s.Status())
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if records == nil {
			records = []model.Record{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		printRecords(out, records)
		return nil
	}
}

func printRecords(w io.Writer, records []model.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return
	}
	for i, r := range records {
		ordinal := strings.TrimSpace(r.Ordinal)
		if ordinal == "" {
			ordinal = fmt.Sprintf("%d.", i+1)
		}
		fmt.Fprintf(w, "%s %s\n", ordinal, r.Text)
		if r.Explanation != "" {
			fmt.Fprintf(w, "   설명: %s\n", r.Explanation)
		}
	}
}
