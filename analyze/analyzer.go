package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
	"news-video-pipeline/types"
)

// Placeholder strings used by the fallback narrative so a degraded video
// can still be produced instead of crashing the pipeline.
const (
	FallbackTimelineText = "AI 生成出错,请检查 API 连接。"
	FallbackSummaryText  = "AI 生成出错,请检查网络配置。"
)

const analyzeSystemPrompt = `你是一位专业的新闻分析师,擅长用通俗易懂、现代感强的方式解读热点事件。

【核心要求】
1. **风格**: 现代、幽默、有见地。**绝对禁止**使用"哥们儿姐们儿"、"亲爱的朋友们"、"家人们"等过时或油腻的开场白。直入主题，不要废话。
2. **结构**: 三幕式叙事
   - 起因 (60-80字): 事件背景和触发原因
   - 发展 (60-80字): 事件进展和关键转折
   - 影响 (60-80字): 结果分析和社会影响
3. **情感倾向**: 准确判断 positive/negative/neutral
4. **轻松总结**: 200字左右的通俗易懂总结

【输出格式】
严格的 JSON 格式,不要包含 markdown 代码块标记:
{
  "topic": "新闻主题",
  "date": "YYYYMMDD",
  "headline": "吸引人的标题(10-15字)",
  "timeline": {
    "cause": "起因描述(60-80字,口语化)",
    "development": "发展描述(60-80字,有画面感)",
    "impact": "影响描述(60-80字,贴近生活)"
  },
  "key_actors": ["主体1", "主体2"],
  "sentiment": "positive/negative/neutral",
  "sources": ["url1", "url2"],
  "casual_summary": "轻松总结(200字,观点犀利,不落俗套,直接讲事)"
}`

// Analyzer turns a topic (plus optional research grounding) into a
// three-act Narrative.
type Analyzer struct {
	cfg *config.Config
	llm *openai.Client
}

// New creates an Analyzer.
func New(cfg *config.Config, llmClient *openai.Client) *Analyzer {
	return &Analyzer{cfg: cfg, llm: llmClient}
}

// Run always returns a usable Narrative: LLM failure or malformed JSON
// yields the fixed fallback so downstream stages keep working.
func (a *Analyzer) Run(ctx context.Context, topic, date string, bundle *types.ResearchBundle) *types.Narrative {
	log.Infof("[analyze] analyzing news topic: %s", topic)

	narrative, err := a.generate(ctx, topic, date, bundle)
	if err != nil {
		log.Warnf("[analyze] generation failed: %v — using fallback narrative", err)
		return Fallback(topic, date)
	}

	narrative.Topic = topic
	narrative.Date = date
	if bundle != nil && len(bundle.Sources) > 0 {
		n := len(bundle.Sources)
		if n > 5 {
			n = 5
		}
		narrative.Sources = bundle.Sources[:n]
	}

	log.Infof("[analyze] narrative ready: %q", narrative.Headline)
	return narrative
}

func (a *Analyzer) generate(ctx context.Context, topic, date string, bundle *types.ResearchBundle) (*types.Narrative, error) {
	var grounding strings.Builder
	if bundle != nil && bundle.Summary != "" {
		fmt.Fprintf(&grounding, "\n\n【搜索结果概要】\n%s\n", bundle.Summary)
		if len(bundle.KeyFacts) > 0 {
			grounding.WriteString("\n【关键事实】\n")
			for i, fact := range bundle.KeyFacts {
				if i >= 5 {
					break
				}
				fmt.Fprintf(&grounding, "- %s\n", fact)
			}
		}
	}

	dateLabel := date
	if dateLabel == "" {
		dateLabel = "最近"
	}

	userPrompt := fmt.Sprintf(`请分析以下新闻事件: %s
日期: %s
%s
要求:
1. 标题要简洁有力,吸引眼球
2. 三幕式内容要像讲故事,有画面感
3. 轻松总结要通俗易懂,避免官话套话
`, topic, dateLabel, grounding.String())

	resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.cfg.LLM.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:    float32(a.cfg.LLM.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	content := cleanJSON(resp.Choices[0].Message.Content)
	var narrative types.Narrative
	if err := json.Unmarshal([]byte(content), &narrative); err != nil {
		return nil, fmt.Errorf("parse narrative JSON: %w", err)
	}
	if narrative.Headline == "" {
		return nil, fmt.Errorf("narrative missing headline")
	}
	return &narrative, nil
}

// Fallback is the fixed degraded narrative used when the LLM is
// unreachable or returns garbage.
func Fallback(topic, date string) *types.Narrative {
	return &types.Narrative{
		Topic:    topic,
		Date:     date,
		Headline: topic + "深度解读",
		Timeline: types.Timeline{
			Cause:       FallbackTimelineText,
			Development: FallbackTimelineText,
			Impact:      FallbackTimelineText,
		},
		KeyActors:     []string{},
		Sentiment:     "neutral",
		Sources:       []string{},
		CasualSummary: FallbackSummaryText,
	}
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
