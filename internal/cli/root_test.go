package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/quill/internal/api"
	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/model"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"write", "suggest", "batch", "check", "serve", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}

	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quill dev")
}

// resetFlags puts every flag back to its default; the commands are package
// level so values would otherwise leak between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("QUILL_CONFIG_DIR", t.TempDir())
	t.Setenv("QUILL_BASE_URL", "")
	t.Setenv("QUILL_TRANSPORT", "")
	t.Setenv("QUILL_TONE", "")

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func newBackend(t *testing.T, opts ...api.Option) string {
	t.Helper()
	ts := httptest.NewServer(api.New("", opts...).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestReadInput(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("표준 입력\n"))

	got, err := readInput(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "표준 입력", got)

	got, err = readInput(cmd, []string{"오늘은", "비가", "왔다."})
	require.NoError(t, err)
	assert.Equal(t, "오늘은 비가 왔다.", got)
}

func TestSuggestRealtime(t *testing.T) {
	url := newBackend(t, api.WithGenerator(api.Script{
		Realtime: []string{"1.", " 그래서", " 우산을 챙겼다", "\n2.", " 그럼에도", " 즐거웠다"},
	}))

	out, errOut, err := run(t, "", "suggest", "--base-url", url, "오늘은", "비가", "왔다.")
	require.NoError(t, err)
	assert.Equal(t, "1. 그래서 우산을 챙겼다\n2. 그럼에도 즐거웠다\n", out)
	assert.Contains(t, errOut, " 그래서 우산을 챙겼다")
}

func TestSuggestBatchJSONOverWebSocket(t *testing.T) {
	url := newBackend(t, api.WithGenerator(api.Script{
		Batch: []string{"1. 장면을 묘사하세요", "\n설명: 생생해집니다"},
	}))

	out, _, err := run(t, "오늘은 비가 왔다.\n",
		"suggest", "--base-url", url, "--transport", "ws", "--mode", "batch", "--format", "json", "-q", "-")
	require.NoError(t, err)

	var recs []model.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "1. ", recs[0].Ordinal)
	assert.Equal(t, "장면을 묘사하세요", recs[0].Text)
	assert.Equal(t, "생생해집니다", recs[0].Explanation)
}

func TestSuggestDroppedStream(t *testing.T) {
	url := newBackend(t, api.WithDropAfter(2))

	_, _, err := run(t, "", "suggest", "--base-url", url, "-q", "오늘은 비가 왔다.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "errored")
}

func TestSuggestRejectsBadInput(t *testing.T) {
	_, _, err := run(t, "   \n", "suggest", "--base-url", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, backend.ErrEmptyMessage)

	_, _, err = run(t, "", "suggest", "--mode", "sideways", "글")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestCheckFindsErrors(t *testing.T) {
	url := newBackend(t)

	out, _, err := run(t, "", "check", "--base-url", url, "몇일 동안 비가 왔다.")
	assert.True(t, errors.Is(err, errFindings), "expected errFindings, got %v", err)
	assert.Contains(t, out, "[맞춤법] 몇일 -> 며칠")
	assert.Contains(t, out, "1 error(s), 1 applicable, 0 not found in text")
}

func TestCheckClean(t *testing.T) {
	url := newBackend(t)

	out, _, err := run(t, "", "check", "--base-url", url, "오늘은 비가 왔다.")
	require.NoError(t, err)
	assert.Contains(t, out, "No errors found.")
}

func TestCheckApplyAndPatch(t *testing.T) {
	url := newBackend(t)
	patchPath := filepath.Join(t.TempDir(), "fix.patch")

	out, _, err := run(t, "", "check", "--base-url", url, "--apply", "--patch", patchPath, "몇일 동안 비가 왔다.")
	assert.ErrorIs(t, err, errFindings)
	assert.Equal(t, "며칠 동안 비가 왔다.\n", out)

	patch, err := os.ReadFile(patchPath)
	require.NoError(t, err)
	assert.Contains(t, string(patch), "--- a/draft.txt")
	assert.Contains(t, string(patch), "-몇일 동안 비가 왔다.")
	assert.Contains(t, string(patch), "+며칠 동안 비가 왔다.")
}

func TestCheckJSON(t *testing.T) {
	url := newBackend(t)

	out, _, err := run(t, "", "check", "--base-url", url, "--format", "json", "몇일 동안 비가 왔다.")
	assert.ErrorIs(t, err, errFindings)

	var got struct {
		Total     int    `json:"total"`
		Applied   int    `json:"applied"`
		Corrected string `json:"corrected"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 1, got.Applied)
	assert.Equal(t, "며칠 동안 비가 왔다.", got.Corrected)
}

func TestBatchRaw(t *testing.T) {
	url := newBackend(t)

	out, _, err := run(t, "", "batch", "--base-url", url, "--raw", "몇일 동안 비가 왔다.")
	require.NoError(t, err)
	assert.Contains(t, out, "## 제안")
	assert.Contains(t, out, "## 질문")
	assert.Contains(t, out, "## 맞춤법 검사")
	assert.Contains(t, out, "| 몇일 | 며칠 |")
}

func TestBatchBackendDown(t *testing.T) {
	_, _, err := run(t, "", "batch", "--base-url", "http://127.0.0.1:1", "글")
	var reqErr *backend.RequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestWarnUnreachable(t *testing.T) {
	up := backend.New(newBackend(t), time.Second, 0)
	t.Cleanup(up.Close)
	var out bytes.Buffer
	assert.True(t, warnUnreachable(context.Background(), &out, up))
	assert.Empty(t, out.String())

	down := backend.New("http://127.0.0.1:1", time.Second, 0)
	t.Cleanup(down.Close)
	assert.False(t, warnUnreachable(context.Background(), &out, down))
	assert.Contains(t, out.String(), "Warning: backend http://127.0.0.1:1 is not reachable")
}
