package review

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
)

const reviewSystemPrompt = `你是一个严格的内容审核主编 (Reviewer Agent)。
你的任务是审查并修正"新闻视频文案 (TTS Scripts)"和"AI绘画提示词 (Image Prompts)"中的逻辑错误、事实谬误和常识性问题。

🔍 **核心审查标准 (CRITICAL)**：
1. **时间与生肖逻辑 (Date & Zodiac)**：
   - **当前基准**：2026年 (马年/Horse Year)。
   - **严禁错误**：2026年绝不能说是"龙年"或"蛇年"。
   - **节前vs节后**："红包行情"=节前上涨预期；"开门红"=节后首日上涨。
   - **修正动作**：如果发现"龙年A股"、"蛇年开局"等错误，必须立刻修正为"马年"或删除年份特指。

2. **Prompt 视觉安全 (Visual Safety)**：
   - 检查 Prompt 中是否包含防遮挡指令（如 "Leave margin", "Safe from edges", "Center composition"）。
   - 如果缺失，**必须**强制添加到 Prompt 末尾。

3. **文案一致性**：
   - 确保文案内容不自相矛盾（例如前一句说大涨，后一句说大跌）。

📥 **输入**：包含 topic, scripts, prompts 的 JSON。
📤 **输出**：严格的 JSON 格式，包含修正后的内容。
{
    "scripts": ["修正后的脚本1", "脚本2", "脚本3"],
    "prompts": ["修正后的Prompt1", "Prompt2", "Prompt3"],
    "review_comments": "简要说明发现了什么错误并如何修正了"
}`

// Reviewer is an LLM editor pass over the narration scripts and image
// prompts. It is best-effort: any failure returns the inputs untouched.
type Reviewer struct {
	cfg *config.Config
	llm *openai.Client
}

// New creates a Reviewer.
func New(cfg *config.Config, llmClient *openai.Client) *Reviewer {
	return &Reviewer{cfg: cfg, llm: llmClient}
}

type reviewResult struct {
	Scripts        []string `json:"scripts"`
	Prompts        []string `json:"prompts"`
	ReviewComments string   `json:"review_comments"`
}

// Run reviews scripts and prompts, returning corrected copies. On error or
// on a length mismatch the originals are returned unchanged.
func (r *Reviewer) Run(ctx context.Context, topic string, scripts, prompts []string) ([]string, []string) {
	log.Info("[review] running reviewer agent pass")

	input, err := json.Marshal(map[string]interface{}{
		"topic":   topic,
		"scripts": scripts,
		"prompts": prompts,
	})
	if err != nil {
		return scripts, prompts
	}

	resp, err := r.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.Review.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reviewSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(input)},
		},
		Temperature:    0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		log.Warnf("[review] reviewer unavailable: %v — keeping original content", err)
		return scripts, prompts
	}
	if len(resp.Choices) == 0 {
		return scripts, prompts
	}

	var result reviewResult
	if err := json.Unmarshal([]byte(cleanJSON(resp.Choices[0].Message.Content)), &result); err != nil {
		log.Warnf("[review] could not parse review result: %v — keeping original content", err)
		return scripts, prompts
	}

	if result.ReviewComments != "" {
		log.Infof("[review] report: %s", result.ReviewComments)
	}

	outScripts := scripts
	if len(result.Scripts) == len(scripts) {
		outScripts = result.Scripts
	} else {
		log.Warn("[review] reviewed script count mismatch — keeping original scripts")
	}

	outPrompts := prompts
	if len(result.Prompts) == len(prompts) {
		outPrompts = result.Prompts
	} else {
		log.Warn("[review] reviewed prompt count mismatch — keeping original prompts")
	}

	return outScripts, outPrompts
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
