package script

import (
	"strings"
	"testing"

	"news-video-pipeline/types"
)

func TestGenerateThreeTracksInOrder(t *testing.T) {
	n := &types.Narrative{
		Topic:         "测试话题",
		Headline:      "测试标题",
		CasualSummary: "轻松总结内容",
		Timeline:      types.Timeline{Cause: "起因A", Development: "发展B", Impact: "影响C"},
	}
	tracks := Generate(n)
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if !strings.Contains(tracks[0], "测试话题") || !strings.Contains(tracks[0], "起因A") {
		t.Error("track 1 should open the show and carry the cause act")
	}
	if !strings.Contains(tracks[0], "轻松总结内容") {
		t.Error("track 1 should use the casual summary as the intro")
	}
	if tracks[1] != "发展B" {
		t.Errorf("track 2 should be the development act alone, got %q", tracks[1])
	}
	if !strings.Contains(tracks[2], "影响C") || !strings.Contains(tracks[2], "测试标题") {
		t.Error("track 3 should carry the impact act and recap the headline")
	}
	if !strings.Contains(tracks[2], "下次见") {
		t.Error("track 3 should close the show")
	}
}

func TestGenerateHeadlineFallsBackWhenSummaryMissing(t *testing.T) {
	n := &types.Narrative{Topic: "话题", Headline: "只有标题"}
	tracks := Generate(n)
	if !strings.Contains(tracks[0], "只有标题") {
		t.Error("track 1 should fall back to the headline when summary is empty")
	}
}

func TestGenerateEmptyNarrative(t *testing.T) {
	tracks := Generate(&types.Narrative{})
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if !strings.Contains(tracks[0], "这个热点") {
		t.Error("empty topic should use the sentinel default")
	}
	for i, tr := range tracks {
		if strings.TrimSpace(tr) != tr {
			t.Errorf("track %d not trimmed", i)
		}
	}
}
