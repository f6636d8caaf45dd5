package video

import (
	"fmt"
	"os"
	"strings"

	"news-video-pipeline/types"
)

// ExtractCues walks the four named segments in fixed order, splits each
// segment's text on sentence-ending punctuation and distributes the
// segment's duration evenly across its sentences. Start times are
// monotonically non-decreasing by construction.
func ExtractCues(script *types.FourActScript) []types.SubtitleCue {
	var cues []types.SubtitleCue
	var elapsed float64

	for _, seg := range script.Segments() {
		if seg.Text == "" || seg.Duration <= 0 {
			continue
		}

		sentences := splitSentences(seg.Text)
		if len(sentences) == 0 {
			cues = append(cues, types.SubtitleCue{Start: elapsed, End: elapsed + seg.Duration, Text: seg.Text})
			elapsed += seg.Duration
			continue
		}

		perSentence := seg.Duration / float64(len(sentences))
		for _, s := range sentences {
			cues = append(cues, types.SubtitleCue{Start: elapsed, End: elapsed + perSentence, Text: s})
			elapsed += perSentence
		}
	}
	return cues
}

// splitSentences breaks text on Chinese or Latin sentence-ending
// punctuation, dropping empty fragments.
func splitSentences(text string) []string {
	normalized := strings.NewReplacer("？", "?", "！", "!", "。", ".").Replace(text)
	parts := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == '.' || r == '?' || r == '!'
	})

	var sentences []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// WriteSRT writes the cues as a standard SubRip file.
func WriteSRT(cues []types.SubtitleCue, path string) error {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(seconds*1000 + 0.5)
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
