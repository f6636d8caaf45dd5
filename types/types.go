package types

// Timeline is the three-act structure every narrative follows.
type Timeline struct {
	Cause       string `json:"cause"`
	Development string `json:"development"`
	Impact      string `json:"impact"`
}

// Narrative is the structured three-act story produced once per topic
// and consumed by every downstream templating stage.
type Narrative struct {
	Topic         string   `json:"topic"`
	Date          string   `json:"date"`
	Headline      string   `json:"headline"`
	Timeline      Timeline `json:"timeline"`
	KeyActors     []string `json:"key_actors"`
	Sentiment     string   `json:"sentiment"` // positive | negative | neutral
	Sources       []string `json:"sources"`
	CasualSummary string   `json:"casual_summary"`
}

// SearchResult is one normalized web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"` // serper | tavily
}

// ResearchBundle is the compressed output of the web research stage.
// An all-empty bundle means "no search grounding available".
type ResearchBundle struct {
	KeyFacts   []string       `json:"key_facts"`
	Timeline   Timeline       `json:"timeline"`
	KeyActors  []string       `json:"key_actors"`
	Sentiment  string         `json:"sentiment"`
	Summary    string         `json:"summary"`
	Sources    []string       `json:"sources"`
	RawResults []SearchResult `json:"raw_results"`
}

// Empty reports whether the bundle carries no usable research at all.
func (b *ResearchBundle) Empty() bool {
	return b == nil || (len(b.KeyFacts) == 0 && b.Summary == "" && len(b.RawResults) == 0)
}

// FourActSegment is one segment of the four-act composer variant.
type FourActSegment struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

// FourActScript is the hook/reason/emotion/cta script consumed by the
// four-segment video composer.
type FourActScript struct {
	Hook    FourActSegment `json:"hook"`
	Reason  FourActSegment `json:"reason"`
	Emotion FourActSegment `json:"emotion"`
	Cta     FourActSegment `json:"cta"`
}

// Segments returns the four segments in fixed playback order.
func (s *FourActScript) Segments() []FourActSegment {
	return []FourActSegment{s.Hook, s.Reason, s.Emotion, s.Cta}
}

// SubtitleCue is one timed subtitle entry.
type SubtitleCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// PipelineState tracks the full state of one pipeline run.
type PipelineState struct {
	RunID       string          `json:"run_id"`
	Topic       string          `json:"topic"`
	Slug        string          `json:"slug"`
	StartedAt   string          `json:"started_at"`
	CompletedAt string          `json:"completed_at"`
	Research    *ResearchBundle `json:"research,omitempty"`
	Narrative   *Narrative      `json:"narrative,omitempty"`
	CopyFile    string          `json:"copy_file,omitempty"`
	ImageFiles  []string        `json:"image_files,omitempty"`
	AudioFiles  []string        `json:"audio_files,omitempty"`
	VideoFile   string          `json:"video_file,omitempty"`
	Error       string          `json:"error,omitempty"`
}
