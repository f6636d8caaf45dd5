package llm

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"news-video-pipeline/config"
)

// NewClient builds a chat-completion client against the configured
// OpenAI-compatible endpoint. LLM_BASE_URL may point at a local relay.
func NewClient(cfg *config.Config) *openai.Client {
	c := openai.DefaultConfig(cfg.LLMAPIKey())
	if base := cfg.LLMBaseURL(); base != "" {
		c.BaseURL = base
	}
	c.HTTPClient = &http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second}
	return openai.NewClientWithConfig(c)
}

// NewImageClient builds a client for the image-generation endpoint, which
// uses its own key and base URL.
func NewImageClient(cfg *config.Config) *openai.Client {
	c := openai.DefaultConfig(cfg.ImageAPIKey())
	if base := cfg.ImageBaseURL(); base != "" {
		c.BaseURL = base
	}
	c.HTTPClient = &http.Client{Timeout: time.Duration(cfg.Image.TimeoutSec) * time.Second}
	return openai.NewClientWithConfig(c)
}
