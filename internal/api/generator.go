package api

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/model"
)

// Generator produces the stand-in backend's output.
type Generator interface {
	// Stream returns the fragments pushed for mode, without the sentinel.
	Stream(mode model.Mode, p model.Payload) []string
	Suggest(p model.Payload) backend.BatchResult
	Detect(p model.Payload) backend.ErrorReport
}

// EchoGenerator builds deterministic suggestions around the draft's last
// sentence.
type EchoGenerator struct{}

// Stream tokenizes a canned continuation so fragments carry leading spaces
// and embedded newlines the way a model stream does.
func (EchoGenerator) Stream(mode model.Mode, p model.Payload) []string {
	seed := lastSentence(p.Message)
	var text string
	switch mode {
	case model.ModeBatch:
		text = fmt.Sprintf("1. %s 장면을 하나 더 묘사해 보세요.\n설명: 구체적인 장면이 %s 어조를 살립니다.\n"+
			"2. %s 앞에 이유를 덧붙여 보세요.\n설명: 인과가 드러나면 글이 단단해집니다.",
			seed, toneWord(p.Tone), seed)
	default:
		text = fmt.Sprintf("1. 그래서 %s\n2. 그럼에도 %s\n3. 무엇보다 %s",
			seed, seed, seed)
	}
	return Tokenize(text)
}

// Suggest returns the batch sections for p.
func (g EchoGenerator) Suggest(p model.Payload) backend.BatchResult {
	seed := lastSentence(p.Message)
	return backend.BatchResult{
		Suggestions: strings.Join(g.Stream(model.ModeBatch, p), ""),
		Questions:   fmt.Sprintf("- \"%s\"에서 독자가 가장 궁금해할 점은 무엇인가요?\n- 이 문장 다음에 어떤 감정이 이어지나요?", seed),
		Corrections: "- 문장이 길다면 둘로 나누어 보세요.",
	}
}

// commonMistakes maps frequent Korean misspellings to their corrections.
var commonMistakes = []struct {
	wrong, right, kind, reason string
}{
	{"됬", "됐", "맞춤법", "'되었'의 준말은 '됐'입니다."},
	{"몇일", "며칠", "맞춤법", "'며칠'이 표준어입니다."},
	{"않되", "안 되", "맞춤법", "부정의 '안'은 띄어 씁니다."},
	{"어떻해", "어떡해", "맞춤법", "'어떻게 해'의 준말은 '어떡해'입니다."},
	{"  ", " ", "띄어쓰기", "공백이 두 번 들어갔습니다."},
}

// Detect flags the common mistakes present in p.
func (EchoGenerator) Detect(p model.Payload) backend.ErrorReport {
	report := backend.ErrorReport{Errors: []model.Correction{}}
	for _, m := range commonMistakes {
		if strings.Contains(p.Message, m.wrong) {
			report.Errors = append(report.Errors, model.Correction{
				Original:  m.wrong,
				Corrected: m.right,
				Type:      m.kind,
				Reason:    m.reason,
			})
		}
	}
	if len(report.Errors) == 0 {
		report.Summary = "오류가 없습니다."
	} else {
		report.Summary = fmt.Sprintf("%d개의 오류를 찾았습니다.", len(report.Errors))
	}
	return report
}

// Script pushes fixed fragments and falls back to EchoGenerator for the
// synchronous calls.
type Script struct {
	EchoGenerator
	Realtime []string
	Batch    []string
}

// Stream returns the scripted fragments for mode.
func (s Script) Stream(mode model.Mode, _ model.Payload) []string {
	if mode == model.ModeBatch {
		return s.Batch
	}
	return s.Realtime
}

// Tokenize splits text into word fragments. Whitespace stays attached to
// the start of the following word.
func Tokenize(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) && inWord {
			out = append(out, cur.String())
			cur.Reset()
			inWord = false
		}
		cur.WriteRune(r)
		if !unicode.IsSpace(r) {
			inWord = true
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func lastSentence(msg string) string {
	msg = strings.TrimSpace(msg)
	cut := strings.LastIndexAny(msg[:max(len(msg)-1, 0)], ".!?\n")
	if cut >= 0 {
		msg = strings.TrimSpace(msg[cut+1:])
	}
	msg = strings.TrimRight(msg, ".!?")
	if msg == "" {
		return "이 문장"
	}
	return msg
}

func toneWord(t model.Tone) string {
	if t == "" || t == model.ToneAuto {
		return "글의"
	}
	return string(t)
}
