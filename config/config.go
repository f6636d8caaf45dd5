package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Research  ResearchConfig  `yaml:"research"`
	Review    ReviewConfig    `yaml:"review"`
	Image     ImageConfig     `yaml:"image"`
	Audio     AudioConfig     `yaml:"audio"`
	Video     VideoConfig     `yaml:"video"`
	Prompts   PromptsConfig   `yaml:"prompts"`
	Paths     PathsConfig     `yaml:"paths"`
}

type LLMConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

type ResearchConfig struct {
	MaxResults     int `yaml:"max_results"`
	SerperTimeout  int `yaml:"serper_timeout_sec"`
	TavilyTimeout  int `yaml:"tavily_timeout_sec"`
}

type ReviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

type ImageConfig struct {
	Model      string `yaml:"model"`
	Size       string `yaml:"size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type AudioConfig struct {
	Format      string  `yaml:"format"`
	SampleRate  int     `yaml:"sample_rate"`
	SpeedRatio  float64 `yaml:"speed_ratio"`
	VolumeRatio float64 `yaml:"volume_ratio"`
	PitchRatio  float64 `yaml:"pitch_ratio"`
	Emotion     string  `yaml:"emotion"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MinBytes    int64   `yaml:"min_bytes"`
}

type VideoConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	Preset          string  `yaml:"preset"`
	Threads         int     `yaml:"threads"`
	CrossfadeSec    float64 `yaml:"crossfade_sec"`
	Subtitles       bool    `yaml:"subtitles"`
	KenBurns        bool    `yaml:"ken_burns"`
}

type PromptsConfig struct {
	Theme string `yaml:"theme"` // neutral | newyear
}

type PathsConfig struct {
	Results string `yaml:"results"`
}

// Load reads config.yaml and returns a Config struct. A missing file is
// not an error: the built-in defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config.yaml is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			TimeoutSec:  60,
		},
		Research: ResearchConfig{
			MaxResults:    10,
			SerperTimeout: 10,
			TavilyTimeout: 15,
		},
		Review: ReviewConfig{
			Enabled: false,
			Model:   "gpt-3.5-turbo",
		},
		Image: ImageConfig{
			Model:      "NanoBanana Pro",
			Size:       "1024x1792",
			TimeoutSec: 60,
		},
		Audio: AudioConfig{
			Format:      "mp3",
			SampleRate:  24000,
			SpeedRatio:  1.1,
			VolumeRatio: 1.0,
			PitchRatio:  1.0,
			Emotion:     "story",
			TimeoutSec:  60,
			MinBytes:    10000,
		},
		Video: VideoConfig{
			Width:        1080,
			Height:       1920,
			FPS:          24,
			Preset:       "ultrafast",
			Threads:      8,
			CrossfadeSec: 0.5,
			Subtitles:    true,
			KenBurns:     true,
		},
		Prompts: PromptsConfig{Theme: "neutral"},
		Paths:   PathsConfig{Results: "results"},
	}
}

// Credentials are read from the environment only, never from config.yaml.

func (c *Config) LLMAPIKey() string     { return os.Getenv("LLM_API_KEY") }
func (c *Config) LLMBaseURL() string    { return os.Getenv("LLM_BASE_URL") }
func (c *Config) SerperAPIKey() string  { return os.Getenv("SERPER_API_KEY") }
func (c *Config) TavilyAPIKey() string  { return os.Getenv("TAVILY_API_KEY") }
func (c *Config) ImageAPIKey() string   { return os.Getenv("IMAGE_API_KEY") }
func (c *Config) ImageBaseURL() string  { return os.Getenv("IMAGE_API_BASE_URL") }
func (c *Config) DoubaoToken() string   { return os.Getenv("DOUBAO_ACCESS_TOKEN") }
func (c *Config) DoubaoAppID() string   { return os.Getenv("DOUBAO_APP_ID") }

func (c *Config) DoubaoResourceID() string {
	if v := os.Getenv("DOUBAO_RESOURCE_ID"); v != "" {
		return v
	}
	return "seed-tts-2.0"
}

func (c *Config) VoiceType() string {
	if v := os.Getenv("VOICE_TYPE"); v != "" {
		return v
	}
	return "zh_male_m191_uranus_bigtts"
}
