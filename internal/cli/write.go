package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/tui"
)

var writeCmd = &cobra.Command{
	Use:   "write [file]",
	Short: "Open the interactive writing session",
	Long: `Open a TUI with an editor and live suggestion panes. When a file is
given its contents become the initial draft.

Examples:
  quill write                          # start from an empty draft
  quill write essay.txt -o essay.txt   # edit in place
  quill write essay.txt --patch out.patch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringP("output", "o", "", "write the final draft to file")
	writeCmd.Flags().String("patch", "", "write the session's revision as a unified patch to file")
	writeCmd.Flags().Bool("summary", true, "print a session summary on exit")
}

func runWrite(cmd *cobra.Command, args []string) error {
	var initial, name string
	if len(args) == 1 {
		name = filepath.Base(args[0])
		data, err := os.ReadFile(args[0])
		switch {
		case err == nil:
			initial = string(data)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("reading draft: %w", err)
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	warnUnreachable(cmd.Context(), cmd.ErrOrStderr(), a.client)

	result, err := tui.Run(tui.Options{
		Manager:   a.manager,
		Backend:   a.client,
		Endpoints: a.endpoints(),
		Tone:      model.Tone(a.cfg.Writing.Tone),
		Draft:     initial,
		Name:      name,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(result.Final), 0o644); err != nil {
			return fmt.Errorf("writing draft: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Draft written to %s\n", outPath)
	}

	patchPath, _ := cmd.Flags().GetString("patch")
	if patchPath != "" {
		if patch := result.Patch(); patch != "" {
			if err := os.WriteFile(patchPath, []byte(patch), 0o644); err != nil {
				return fmt.Errorf("writing patch: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Patch written to %s\n", patchPath)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Draft unchanged, no patch written.")
		}
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		fmt.Fprint(cmd.OutOrStdout(), result.Summary())
	}
	return nil
}
