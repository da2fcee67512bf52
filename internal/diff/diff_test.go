package diff

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

func numbered(n int, changed map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if s, ok := changed[i]; ok {
			b.WriteString(s + "\n")
			continue
		}
		fmt.Fprintf(&b, "%d번째 문장입니다.\n", i)
	}
	return b.String()
}

func TestReviseUnchanged(t *testing.T) {
	text := numbered(5, nil)
	f := Revise("draft.txt", text, text)

	if f.Changed() {
		t.Error("identical revisions should not be changed")
	}
	if p := FormatPatch(f); p != "" {
		t.Errorf("expected empty patch, got %q", p)
	}
}

func TestReviseSingleChange(t *testing.T) {
	before := numbered(10, nil)
	after := numbered(10, map[int]string{5: "다섯째 문장이 바뀌었다."})

	f := Revise("draft.txt", before, after)
	if len(f.Fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(f.Fragments))
	}
	frag := f.Fragments[0]
	if frag.OldPosition != 2 || frag.OldLines != 7 || frag.NewPosition != 2 || frag.NewLines != 7 {
		t.Errorf("unexpected fragment header: -%d,%d +%d,%d",
			frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
	}
	if frag.LeadingContext != 3 || frag.TrailingContext != 3 {
		t.Errorf("expected 3 lines of context each side, got %d/%d", frag.LeadingContext, frag.TrailingContext)
	}
	added, deleted := f.Stats()
	if added != 1 || deleted != 1 {
		t.Errorf("expected +1/-1, got +%d/-%d", added, deleted)
	}

	patch := FormatPatch(f)
	for _, want := range []string{
		"--- a/draft.txt\n",
		"+++ b/draft.txt\n",
		"@@ -2,7 +2,7 @@\n",
		"-5번째 문장입니다.\n",
		"+다섯째 문장이 바뀌었다.\n",
	} {
		if !strings.Contains(patch, want) {
			t.Errorf("patch missing %q:\n%s", want, patch)
		}
	}
}

func TestReviseSeparateHunks(t *testing.T) {
	before := numbered(20, nil)
	after := numbered(20, map[int]string{1: "처음", 20: "끝"})

	f := Revise("draft.txt", before, after)
	if len(f.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(f.Fragments))
	}
	first, second := f.Fragments[0], f.Fragments[1]
	if first.OldPosition != 1 || first.OldLines != 4 {
		t.Errorf("first fragment: -%d,%d", first.OldPosition, first.OldLines)
	}
	if second.OldPosition != 17 || second.OldLines != 4 || second.NewPosition != 17 {
		t.Errorf("second fragment: -%d,%d +%d", second.OldPosition, second.OldLines, second.NewPosition)
	}
}

func TestReviseNearbyChangesMerge(t *testing.T) {
	before := numbered(12, nil)
	after := numbered(12, map[int]string{3: "셋", 8: "여덟"})

	f := Revise("draft.txt", before, after)
	if len(f.Fragments) != 1 {
		t.Fatalf("changes within twice the context should share a hunk, got %d", len(f.Fragments))
	}
}

func TestReviseFromEmpty(t *testing.T) {
	f := Revise("draft.txt", "", "첫 줄\n둘째 줄\n")
	patch := FormatPatch(f)
	if !strings.Contains(patch, "@@ -0,0 +1,2 @@\n") {
		t.Errorf("unexpected header:\n%s", patch)
	}
	if f.AddedLines != 2 || f.DeletedLines != 0 {
		t.Errorf("expected +2/-0, got +%d/-%d", f.AddedLines, f.DeletedLines)
	}
}

func TestReviseNoTrailingNewline(t *testing.T) {
	f := Revise("draft.txt", "몇일 동안", "며칠 동안")
	patch := FormatPatch(f)

	if strings.Count(patch, "\\ No newline at end of file\n") != 2 {
		t.Errorf("expected a no-newline marker per side:\n%s", patch)
	}
}

func TestPatchApplies(t *testing.T) {
	before := numbered(15, nil)
	after := numbered(15, map[int]string{2: "바뀐 둘째", 9: "바뀐 아홉째", 14: "바뀐 열넷째"})

	patch := FormatPatch(Revise("draft.txt", before, after))

	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		t.Fatalf("parsing generated patch: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(before), files[0]); err != nil {
		t.Fatalf("applying generated patch: %v", err)
	}
	if out.String() != after {
		t.Errorf("applied patch mismatch:\n got %q\nwant %q", out.String(), after)
	}
}

func TestFileName(t *testing.T) {
	f := &File{OldName: "a.txt"}
	if f.Name() != "a.txt" {
		t.Errorf("expected old name fallback, got %q", f.Name())
	}
	f.NewName = "b.txt"
	if f.Name() != "b.txt" {
		t.Errorf("expected new name, got %q", f.Name())
	}
	var nilFile *File
	if nilFile.Changed() {
		t.Error("nil file should not be changed")
	}
}

func TestReviseLargeDraft(t *testing.T) {
	before := numbered(20000, nil)
	after := numbered(20000, map[int]string{10000: "만 번째 문장이 바뀌었다."})

	f := Revise("draft.txt", before, after)
	if len(f.Fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(f.Fragments))
	}
	frag := f.Fragments[0]
	if frag.OldPosition != 9997 || frag.OldLines != 7 {
		t.Errorf("unexpected fragment header: -%d,%d", frag.OldPosition, frag.OldLines)
	}
	if added, deleted := f.Stats(); added != 1 || deleted != 1 {
		t.Errorf("expected +1/-1, got +%d/-%d", added, deleted)
	}
}

func TestReviseBothEmpty(t *testing.T) {
	if f := Revise("draft.txt", "", ""); f.Changed() {
		t.Error("empty revisions should not be changed")
	}
}
