package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
)

const doubaoURL = "https://openspeech.bytedance.com/api/v3/tts/unidirectional"

// Generator synthesizes narration audio through the Doubao v3 streaming
// TTS endpoint. The response is a stream of newline-delimited JSON objects
// each optionally carrying a base64 audio fragment.
type Generator struct {
	cfg      *config.Config
	http     *http.Client
	endpoint string
}

// New creates a Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:      cfg,
		http:     &http.Client{Timeout: time.Duration(cfg.Audio.TimeoutSec) * time.Second},
		endpoint: doubaoURL,
	}
}

// streamLine matches the per-line envelope of the v3 protocol. The audio
// chunk usually lives at data.audio; some responses carry data as a bare
// base64 string instead.
type streamLine struct {
	Data json.RawMessage `json:"data"`
}

type streamAudio struct {
	Audio string `json:"audio"`
}

// Run synthesizes text into outPath. With no access token configured it
// warns and skips; callers must tolerate a missing output file.
func (g *Generator) Run(ctx context.Context, text, outPath string) error {
	if g.cfg.DoubaoToken() == "" {
		log.Warn("[audio] DOUBAO_ACCESS_TOKEN not set — skipping audio generation")
		return nil
	}

	log.Infof("[audio] synthesizing %d chars → %s", len([]rune(text)), outPath)

	additions, _ := json.Marshal(map[string]interface{}{
		"disable_markdown_filter":              false,
		"enable_language_detector":             true,
		"enable_latex_tn":                      true,
		"disable_default_bit_rate":             true,
		"max_length_to_filter_parenthesis":     0,
		"cache_config":                         map[string]interface{}{"text_type": 1, "use_cache": true},
	})

	payload := map[string]interface{}{
		"req_params": map[string]interface{}{
			"text":      text,
			"speaker":   g.cfg.VoiceType(),
			"additions": string(additions),
			"audio_params": map[string]interface{}{
				"format":       g.cfg.Audio.Format,
				"sample_rate":  g.cfg.Audio.SampleRate,
				"speed_ratio":  g.cfg.Audio.SpeedRatio,
				"volume_ratio": g.cfg.Audio.VolumeRatio,
				"pitch_ratio":  g.cfg.Audio.PitchRatio,
				"emotion":      g.cfg.Audio.Emotion,
			},
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", g.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Access-Key", g.cfg.DoubaoToken())
	req.Header.Set("X-Api-Resource-Id", g.cfg.DoubaoResourceID())
	req.Header.Set("X-Api-App-Key", g.cfg.DoubaoAppID())
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts returned HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer out.Close()

	if err := g.drainStream(resp.Body, out); err != nil {
		return err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return err
	}
	if info.Size() >= g.cfg.Audio.MinBytes {
		log.Infof("[audio] audio ready: %s (%.1f KB)", outPath, float64(info.Size())/1024)
	} else {
		log.Warnf("[audio] audio may be incomplete: %s (%d bytes)", outPath, info.Size())
	}
	return nil
}

// drainStream decodes base64 audio chunks line by line and appends them in
// arrival order. Malformed lines are skipped, never fatal.
func (g *Generator) drainStream(body io.Reader, out *os.File) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var envelope streamLine
		if err := json.Unmarshal(line, &envelope); err != nil {
			continue
		}
		if len(envelope.Data) == 0 {
			continue
		}

		chunk := extractChunk(envelope.Data)
		if chunk == "" {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			log.Warnf("[audio] bad audio chunk: %v", err)
			continue
		}
		if _, err := out.Write(raw); err != nil {
			return fmt.Errorf("write audio chunk: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read tts stream: %w", err)
	}
	return nil
}

// extractChunk handles both data shapes: {"data":{"audio":"..."}} and the
// rarer {"data":"<base64>"}.
func extractChunk(data json.RawMessage) string {
	var obj streamAudio
	if err := json.Unmarshal(data, &obj); err == nil && obj.Audio != "" {
		return obj.Audio
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && len(s) > 100 {
		return s
	}
	return ""
}
