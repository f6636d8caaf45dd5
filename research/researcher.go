package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
	"news-video-pipeline/types"
)

const (
	serperURL = "https://google.serper.dev/search"
	tavilyURL = "https://api.tavily.com/search"
)

const summarizeSystemPrompt = `你是一个专业的新闻分析师。你的任务是从搜索结果中提取关键信息，并以结构化的JSON格式返回。

要求：
1. 提取事件的关键事实
2. 梳理时间线（起因、发展、影响）
3. 识别关键人物/机构
4. 判断舆情倾向（positive/negative/neutral）
5. 撰写200字综述

返回格式必须是有效的JSON，不要包含任何其他文字。`

// Researcher turns a topic into a ResearchBundle by searching the web and
// compressing the hits with an LLM. It never fails from the caller's
// perspective: every error path degrades to a deterministic bundle.
type Researcher struct {
	cfg       *config.Config
	llm       *openai.Client
	http      *http.Client
	serperURL string
	tavilyURL string
}

// New creates a Researcher. The LLM client is passed in so tests can point
// it at a fake endpoint.
func New(cfg *config.Config, llmClient *openai.Client) *Researcher {
	return &Researcher{
		cfg:       cfg,
		llm:       llmClient,
		http:      &http.Client{},
		serperURL: serperURL,
		tavilyURL: tavilyURL,
	}
}

// Run searches for the topic and returns a bundle. With no provider key
// configured (or no hits) the bundle is explicitly empty so the analyzer
// can run LLM-only.
func (r *Researcher) Run(ctx context.Context, topic, date string) *types.ResearchBundle {
	log.Infof("[research] researching topic: %s", topic)

	query := topic + " 新闻"
	if date != "" {
		query = fmt.Sprintf("%s %s 新闻", topic, date)
	}

	// Provider priority is fixed: Serper when its key is configured,
	// Tavily only when Serper has no key at all.
	var results []types.SearchResult
	switch {
	case r.cfg.SerperAPIKey() != "":
		log.Info("[research] searching via Serper.dev")
		results = r.searchSerper(ctx, query)
	case r.cfg.TavilyAPIKey() != "":
		log.Info("[research] searching via Tavily")
		results = r.searchTavily(ctx, query)
	default:
		log.Warn("[research] no search provider key configured")
	}

	if len(results) == 0 {
		log.Warn("[research] no search results — analyzer will run LLM-only")
		return emptyBundle()
	}

	log.Infof("[research] got %d search results", len(results))

	bundle, err := r.summarize(ctx, topic, results)
	if err != nil {
		log.Warnf("[research] LLM summarize failed: %v — using raw snippets", err)
		return fallbackBundle(results)
	}
	bundle.RawResults = results
	log.Info("[research] research complete")
	return bundle
}

func (r *Researcher) searchSerper(ctx context.Context, query string) []types.SearchResult {
	payload := map[string]interface{}{
		"q":   query,
		"num": r.cfg.Research.MaxResults,
		"gl":  "cn",
		"hl":  "zh-cn",
	}
	body, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Research.SerperTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", r.serperURL, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("X-API-KEY", r.cfg.SerperAPIKey())
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		log.Warnf("[research] Serper request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("[research] Serper returned HTTP %d", resp.StatusCode)
		return nil
	}

	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Warnf("[research] Serper response parse failed: %v", err)
		return nil
	}

	var results []types.SearchResult
	for i, item := range parsed.Organic {
		if i >= r.cfg.Research.MaxResults {
			break
		}
		results = append(results, types.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
			Source:  "serper",
		})
	}
	return results
}

func (r *Researcher) searchTavily(ctx context.Context, query string) []types.SearchResult {
	payload := map[string]interface{}{
		"api_key":             r.cfg.TavilyAPIKey(),
		"query":               query,
		"max_results":         r.cfg.Research.MaxResults,
		"search_depth":        "advanced",
		"include_answer":      true,
		"include_raw_content": false,
	}
	body, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Research.TavilyTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", r.tavilyURL, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		log.Warnf("[research] Tavily request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("[research] Tavily returned HTTP %d", resp.StatusCode)
		return nil
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			URL     string `json:"url"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Warnf("[research] Tavily response parse failed: %v", err)
		return nil
	}

	var results []types.SearchResult
	for i, item := range parsed.Results {
		if i >= r.cfg.Research.MaxResults {
			break
		}
		results = append(results, types.SearchResult{
			Title:   item.Title,
			Snippet: item.Content,
			URL:     item.URL,
			Source:  "tavily",
		})
	}
	return results
}

// summarize asks the LLM to compress up to ten hits into a bundle.
func (r *Researcher) summarize(ctx context.Context, topic string, results []types.SearchResult) (*types.ResearchBundle, error) {
	var sb strings.Builder
	for i, res := range results {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&sb, "【%d】%s\n%s\n来源: %s\n\n", i+1, res.Title, res.Snippet, res.URL)
	}

	userPrompt := fmt.Sprintf(`请分析以下关于"%s"的搜索结果，并返回JSON格式的分析：

%s
请返回以下JSON结构：
{
  "key_facts": ["事实1", "事实2", "事实3"],
  "timeline": {
    "cause": "事件起因（60-80字）",
    "development": "发展过程（60-80字）",
    "impact": "影响/结果（60-80字）"
  },
  "key_actors": ["主体1", "主体2"],
  "sentiment": "positive/negative/neutral",
  "summary": "200字综述",
  "sources": ["url1", "url2"]
}`, topic, sb.String())

	resp, err := r.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.LLM.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:    0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	content := cleanJSON(resp.Choices[0].Message.Content)
	var bundle types.ResearchBundle
	if err := json.Unmarshal([]byte(content), &bundle); err != nil {
		return nil, fmt.Errorf("parse bundle JSON: %w", err)
	}
	return &bundle, nil
}

func emptyBundle() *types.ResearchBundle {
	return &types.ResearchBundle{
		KeyFacts:   []string{},
		KeyActors:  []string{},
		Sentiment:  "neutral",
		Sources:    []string{},
		RawResults: []types.SearchResult{},
	}
}

// fallbackBundle builds a deterministic bundle straight from the raw
// snippets when the LLM is unavailable. It must never fail.
func fallbackBundle(results []types.SearchResult) *types.ResearchBundle {
	bundle := emptyBundle()
	bundle.RawResults = results
	for i, res := range results {
		if i >= 5 {
			break
		}
		bundle.KeyFacts = append(bundle.KeyFacts, res.Snippet)
		bundle.Sources = append(bundle.Sources, res.URL)
	}
	if len(results) > 0 {
		bundle.Summary = results[0].Snippet
	}
	return bundle
}

// cleanJSON strips markdown fences when the model wraps its payload in
// ```json ... ```.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
