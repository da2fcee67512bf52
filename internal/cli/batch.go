package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/tui"
)

var batchCmd = &cobra.Command{
	Use:   "batch [text|-]",
	Short: "Ask for batch suggestions and spelling corrections at once",
	Long: `Run batch suggest and error detection for the text concurrently and
print both as a rendered markdown report.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Bool("raw", false, "print markdown without terminal rendering")
	batchCmd.Flags().IntP("width", "w", 80, "wrap width for rendered output")
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	p := a.payload(text)
	var (
		res    *backend.BatchResult
		report *backend.ErrorReport
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		res, err = a.client.BatchSuggest(ctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = a.client.DetectErrors(ctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	md := tui.BatchMarkdown(res) + "\n" + tui.ReportMarkdown(report)

	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	width, _ := cmd.Flags().GetInt("width")
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderMarkdown(md, width))
	return nil
}
