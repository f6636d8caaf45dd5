package script

import (
	"fmt"
	"strings"

	"news-video-pipeline/types"
)

// Generate renders the narrative into three narration tracks matching the
// three cover images, in fixed cause → development → impact order.
// Track 1 opens the show, track 3 closes it.
func Generate(n *types.Narrative) []string {
	topic := n.Topic
	if topic == "" {
		topic = "这个热点"
	}

	intro := n.CasualSummary
	if intro == "" {
		intro = n.Headline
	}

	tracks := []string{
		fmt.Sprintf(`大家好,今天咱们聊聊%s。

%s

事情是这样的:
%s`, topic, intro, n.Timeline.Cause),

		n.Timeline.Development,

		fmt.Sprintf(`%s

总结一下,这件事的核心就是: %s。

以上就是今天的新闻解读,我们下次见!`, n.Timeline.Impact, n.Headline),
	}

	for i := range tracks {
		tracks[i] = strings.TrimSpace(tracks[i])
	}
	return tracks
}
