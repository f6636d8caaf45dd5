package copywriter

import (
	"fmt"
	"strings"

	"news-video-pipeline/types"
)

var sentimentEmoji = map[string]string{
	"positive": "🎉",
	"negative": "⚠️",
	"neutral":  "📰",
}

// Generate renders the narrative into a xiaohongshu-style post. Pure
// templating: missing fields fall back to sentinels, never an error.
func Generate(n *types.Narrative) string {
	topic := n.Topic
	if topic == "" {
		topic = "热点新闻"
	}
	sentiment := n.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}
	emoji, ok := sentimentEmoji[sentiment]
	if !ok {
		emoji = "📰"
	}

	dateStr := "最新"
	if len(n.Date) == 8 {
		dateStr = fmt.Sprintf("%s月%s日", n.Date[4:6], n.Date[6:8])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📰 %s - %s深度解读来啦！%s\n\n", topic, dateStr, emoji)
	sb.WriteString("👋 小伙伴们集合！最近是不是被这个热点刷屏了？别急，咱们一起来捋一捋到底发生了啥！\n\n")
	fmt.Fprintf(&sb, "🔍 **核心标题**\n%s\n\n", n.Headline)
	sb.WriteString("📖 **事件回顾**\n\n")
	fmt.Fprintf(&sb, "【起因】%s\n\n", n.Timeline.Cause)
	fmt.Fprintf(&sb, "【发展】%s\n\n", n.Timeline.Development)
	fmt.Fprintf(&sb, "【影响】%s\n\n", n.Timeline.Impact)
	fmt.Fprintf(&sb, "💡 **轻松解读**\n%s\n\n", n.CasualSummary)
	sb.WriteString("---\n")
	sb.WriteString("🌟 **我的看法**\n这件事告诉我们：信息爆炸的时代，保持独立思考很重要！大家怎么看？欢迎评论区讨论~\n\n")
	sb.WriteString("👇 觉得有用的话，记得点赞收藏哦！不然划走就找不到啦~ 💖\n\n")
	fmt.Fprintf(&sb, "#热点新闻 #%s #新闻解读 #深度分析 #热点追踪 #信息分享", topic)

	return strings.TrimSpace(sb.String())
}
