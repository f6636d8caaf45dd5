package prompts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"news-video-pipeline/types"
)

func TestGenerateEmptyNarrative(t *testing.T) {
	out := Generate(&types.Narrative{}, ThemeNeutral)
	if len(out) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(out))
	}
	labels := []string{"起因", "发展", "影响"}
	for i, p := range out {
		if p == "" {
			t.Errorf("prompt %d is empty", i)
		}
		if !strings.Contains(p, labels[i]) {
			t.Errorf("prompt %d missing section label %q", i, labels[i])
		}
	}
}

func TestGenerateActOrder(t *testing.T) {
	n := &types.Narrative{
		Headline: "测试标题",
		Timeline: types.Timeline{Cause: "起因内容", Development: "发展内容", Impact: "影响内容"},
	}
	out := Generate(n, ThemeNeutral)
	texts := []string{"起因内容", "发展内容", "影响内容"}
	for i, want := range texts {
		if !strings.Contains(out[i], want) {
			t.Errorf("prompt %d should embed %q", i, want)
		}
		if !strings.Contains(out[i], "测试标题") {
			t.Errorf("prompt %d missing headline", i)
		}
	}
}

func TestGenerateNewYearTheme(t *testing.T) {
	n := &types.Narrative{Headline: "标题"}
	out := Generate(n, ThemeNewYear)
	for i, p := range out {
		if !strings.Contains(p, "safe from the edges") {
			t.Errorf("newyear prompt %d missing margin-safety instruction", i)
		}
	}
	if !strings.Contains(out[0], "开年大事") {
		t.Error("newyear theme should use its own section labels")
	}
}

func TestGenerateUnknownThemeFallsBackToNeutral(t *testing.T) {
	n := &types.Narrative{Headline: "标题"}
	got := Generate(n, "nonexistent")
	want := Generate(n, ThemeNeutral)
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("unknown theme should render the neutral prompts")
		}
	}
}

func TestTruncateShortInputUntouched(t *testing.T) {
	s := "短文本。"
	if got := Truncate(s, 80); got != s {
		t.Errorf("short input should pass through, got %q", got)
	}
}

func TestTruncateCutsAtSentencePunctuation(t *testing.T) {
	// Sentence mark at rune 69 (inside the last 40% of an 80-rune window).
	s := strings.Repeat("字", 69) + "。" + strings.Repeat("尾", 30)
	got := Truncate(s, 80)
	if want := strings.Repeat("字", 69) + "。"; got != want {
		t.Errorf("cut should land exactly on the sentence mark, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestTruncatePrefersSentenceOverClause(t *testing.T) {
	s := strings.Repeat("字", 59) + "。" + strings.Repeat("字", 15) + "，" + strings.Repeat("尾", 30)
	got := Truncate(s, 80)
	if !strings.HasSuffix(got, "。") {
		t.Errorf("sentence punctuation should win over a later clause mark, got %q suffix", got[len(got)-3:])
	}
}

func TestTruncateClausePunctuationFallback(t *testing.T) {
	s := strings.Repeat("字", 69) + "，" + strings.Repeat("尾", 30)
	got := Truncate(s, 80)
	if want := strings.Repeat("字", 69) + "，"; got != want {
		t.Errorf("expected clause cut, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestTruncateRejectsEarlyCutPoints(t *testing.T) {
	// Only cut candidate sits at rune 10, far below the 60% floor: the
	// window gets a hard cut with an ellipsis instead.
	s := strings.Repeat("字", 10) + "。" + strings.Repeat("尾", 100)
	got := Truncate(s, 80)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("early punctuation must not qualify, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n > 81 {
		t.Errorf("truncated output too long: %d runes", n)
	}
}

func TestTruncateLengthBound(t *testing.T) {
	inputs := []string{
		strings.Repeat("长", 200),
		strings.Repeat("a", 300),
		strings.Repeat("字", 40) + "。" + strings.Repeat("字", 200),
	}
	for _, s := range inputs {
		got := Truncate(s, 80)
		if n := utf8.RuneCountInString(got); n > 81 { // limit + ellipsis allowance
			t.Errorf("output exceeds bound: %d runes for input %q...", n, s[:12])
		}
	}
}

func TestTruncateWhitespaceFallback(t *testing.T) {
	s := strings.Repeat("a", 70) + " " + strings.Repeat("b", 40)
	got := Truncate(s, 80)
	if want := strings.Repeat("a", 70); got != want {
		t.Errorf("expected whitespace cut at rune 70, got %d runes", utf8.RuneCountInString(got))
	}
}
