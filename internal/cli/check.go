package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/diff"
	"github.com/sprite-ai/quill/internal/suggest"
	"github.com/sprite-ai/quill/internal/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check [text|-]",
	Short: "Run error detection and output a report (non-interactive)",
	Long: `Ask the backend for spelling and spacing errors in the text and print a
report. Useful for pre-commit hooks on documentation and for piping into
other tools.

Exit codes:
  0  no errors found
  1  errors found`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown")
	checkCmd.Flags().Bool("apply", false, "print the corrected text instead of the report")
	checkCmd.Flags().String("patch", "", "write the corrections as a unified patch to file")
	checkCmd.Flags().String("name", "draft.txt", "document name used in the patch header")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	report, err := a.client.DetectErrors(cmd.Context(), a.payload(text))
	if err != nil {
		return err
	}

	rev := suggest.ApplyCorrections(text, report.Errors)
	out := cmd.OutOrStdout()

	patchPath, _ := cmd.Flags().GetString("patch")
	if patchPath != "" {
		if err := writeRevisionPatch(cmd, patchPath, rev); err != nil {
			return err
		}
	}

	apply, _ := cmd.Flags().GetBool("apply")
	format, _ := cmd.Flags().GetString("format")
	switch {
	case apply:
		fmt.Fprintln(out, rev.After)
	case format == "json":
		if err := outputJSON(out, report, rev); err != nil {
			return err
		}
	case format == "markdown":
		fmt.Fprint(out, tui.ReportMarkdown(report))
	default:
		outputText(out, report, rev)
	}

	if len(report.Errors) > 0 {
		return errFindings
	}
	return nil
}

func writeRevisionPatch(cmd *cobra.Command, path string, rev suggest.Revision) error {
	if !rev.Changed() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No corrections applied, no patch written.")
		return nil
	}
	name, _ := cmd.Flags().GetString("name")
	patch := diff.FormatPatch(diff.Revise(name, rev.Before, rev.After))
	if err := os.WriteFile(path, []byte(patch), 0o644); err != nil {
		return fmt.Errorf("writing patch: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Patch written to %s\n", path)
	return nil
}

func outputText(w io.Writer, report *backend.ErrorReport, rev suggest.Revision) {
	if report.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", report.Summary)
	}
	if len(report.Errors) == 0 {
		fmt.Fprintln(w, "No errors found.")
		return
	}

	for _, c := range report.Errors {
		kind := c.Type
		if kind == "" {
			kind = "오류"
		}
		fmt.Fprintf(w, "  - [%s] %s -> %s", kind, c.Original, c.Corrected)
		if c.Reason != "" {
			fmt.Fprintf(w, ": %s", c.Reason)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d error(s), %d applicable, %d not found in text\n",
		len(report.Errors), len(rev.Applied), len(rev.Skipped))
}

func outputJSON(w io.Writer, report *backend.ErrorReport, rev suggest.Revision) error {
	type jsonOutput struct {
		Summary   string `json:"summary,omitempty"`
		Total     int    `json:"total"`
		Applied   int    `json:"applied"`
		Skipped   int    `json:"skipped"`
		Errors    any    `json:"errors"`
		Corrected string `json:"corrected"`
	}

	out := jsonOutput{
		Summary:   report.Summary,
		Total:     len(report.Errors),
		Applied:   len(rev.Applied),
		Skipped:   len(rev.Skipped),
		Errors:    report.Errors,
		Corrected: rev.After,
	}
	if report.Errors == nil {
		out.Errors = []any{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
