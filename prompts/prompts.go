package prompts

import (
	"fmt"
	"strings"
	"unicode"

	"news-video-pipeline/types"
)

// Theme names accepted by Generate. The hand-drawn base style is shared;
// themes only change section labels, palettes and extra safety lines.
const (
	ThemeNeutral = "neutral"
	ThemeNewYear = "newyear"
)

const baseStyle = `(masterpiece, best quality), (vertical:1.4), (aspect ratio: 9:16), (sketch style), (hand drawn), (journalistic infographic)
Create a TALL VERTICAL PORTRAIT IMAGE (Aspect Ratio 9:16) HAND-DRAWN SKETCH style infographic poster.

**CRITICAL: HAND-DRAWN AESTHETIC (Editorial Illustration Style)**
- Use ONLY pencil sketch lines, charcoal shading, ink pen strokes.
- Visible paper grain texture throughout (sketch paper grain).
- Line wobbles and imperfections (authentic hand-drawn feel).
- NO digital smoothness, NO vector graphics.
- Shading: crosshatching, stippling, charcoal smudges only.
- Background: Hand-drawn vintage paper texture (Beige/Parchment).
`

type actTemplate struct {
	label   string
	scene   string
	palette string
	extra   string
}

var themes = map[string][3]actTemplate{
	ThemeNeutral: {
		{
			label:   "起因",
			scene:   "A detailed sketch symbolizing the event's origin or trigger point. Scene suggestion: document, meeting room, announcement scene, or symbolic representation of the cause.",
			palette: "Warm Sepia, Charcoal Grey, Pencil Lead Black",
			extra:   "Add subtle icons or symbols related to the news topic (hand-drawn style).",
		},
		{
			label:   "发展",
			scene:   "A detailed sketch showing the progression or key turning point. Scene suggestion: timeline visualization, multiple actors interacting, or process illustration.",
			palette: "Cool Blue, Navy, Pencil Lead Black",
			extra:   "Add arrows or flow indicators showing progression (hand-drawn style).",
		},
		{
			label:   "影响",
			scene:   "A detailed sketch illustrating the impact or consequences. Scene suggestion: ripple effect, affected parties, outcome visualization, or future implications.",
			palette: "Emerald Green, Gold highlights, Pencil Lead Black",
			extra:   "Add impact indicators or result symbols (hand-drawn style).",
		},
	},
	ThemeNewYear: {
		{
			label:   "开年大事",
			scene:   "A detailed sketch symbolizing the event's origin, framed with hand-drawn Chinese New Year motifs: lanterns, knots, horse silhouettes in the margins.",
			palette: "Festive Red, Gold, Pencil Lead Black",
			extra:   "Leave generous margin around all text; keep every element safe from the edges (center composition).",
		},
		{
			label:   "红火进展",
			scene:   "A detailed sketch showing the progression or key turning point, decorated with festive hand-drawn borders and firecracker accents.",
			palette: "Festive Red, Warm Gold, Pencil Lead Black",
			extra:   "Leave generous margin around all text; keep every element safe from the edges (center composition).",
		},
		{
			label:   "马年展望",
			scene:   "A detailed sketch illustrating the impact and outlook, with a hand-drawn galloping horse motif and auspicious cloud patterns.",
			palette: "Festive Red, Gold highlights, Pencil Lead Black",
			extra:   "Leave generous margin around all text; keep every element safe from the edges (center composition).",
		},
	},
}

// Generate renders three illustration prompts in cause → development →
// impact order. Unknown themes fall back to the neutral one.
func Generate(n *types.Narrative, theme string) []string {
	acts, ok := themes[theme]
	if !ok {
		acts = themes[ThemeNeutral]
	}

	texts := [3]string{
		Truncate(n.Timeline.Cause, 80),
		Truncate(n.Timeline.Development, 80),
		Truncate(n.Timeline.Impact, 80),
	}

	out := make([]string, 0, 3)
	for i, act := range acts {
		var sb strings.Builder
		sb.WriteString(baseStyle)
		sb.WriteString("\n**CONTENT TO RENDER (Text must be legible hand-written style):**\n")
		fmt.Fprintf(&sb, "1. Top Title: \"📰 %s\"\n", n.Headline)
		fmt.Fprintf(&sb, "2. Section Label: \"%s\" (Bold hand-lettering)\n", act.label)
		fmt.Fprintf(&sb, "3. Brief Text (Write this on the paper): \"%s\"\n\n", texts[i])
		sb.WriteString("**VISUAL COMPOSITION:**\n")
		fmt.Fprintf(&sb, "- Center: %s\n", act.scene)
		sb.WriteString("- Layout: Infographic style with text sections separated by hand-drawn dividers.\n")
		fmt.Fprintf(&sb, "- Color Palette: %s.\n", act.palette)
		fmt.Fprintf(&sb, "- %s\n", act.extra)
		out = append(out, sb.String())
	}
	return out
}

var (
	sentencePunct = []rune{'。', '！', '？', '!', '?', '.'}
	clausePunct   = []rune{'，', '、', '；', '：', ',', ';', ':'}
)

// Truncate cuts s to at most limit runes, preferring sentence-ending
// punctuation, then clause punctuation, then whitespace, then a hard cut
// with an ellipsis. A candidate cut is only taken when it keeps at least
// 60% of the window.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	window := runes[:limit]
	minKeep := limit * 6 / 10

	if cut := lastIndexIn(window, sentencePunct); cut+1 >= minKeep {
		return string(window[:cut+1])
	}
	if cut := lastIndexIn(window, clausePunct); cut+1 >= minKeep {
		return string(window[:cut+1])
	}
	if cut := lastSpace(window); cut >= minKeep {
		return strings.TrimSpace(string(window[:cut]))
	}
	return string(window) + "…"
}

func lastIndexIn(window, set []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		for _, p := range set {
			if window[i] == p {
				return i
			}
		}
	}
	return -1
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return -1
}
