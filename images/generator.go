package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
)

// actLabels name the three cover images on disk, index-aligned with the
// prompt order.
var actLabels = []string{"起因", "发展", "影响"}

// Generator calls the image API once per prompt and persists PNGs.
type Generator struct {
	cfg    *config.Config
	client *openai.Client
	http   *http.Client
}

// New creates a Generator. The image client is passed in so tests can
// point it at a fake endpoint.
func New(cfg *config.Config, imageClient *openai.Client) *Generator {
	return &Generator{
		cfg:    cfg,
		client: imageClient,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Run generates one image per prompt into outputDir. Already-existing
// files are skipped without an API call; per-image failures are logged and
// excluded. The returned paths are sorted; callers must check the count
// before composing video.
func (g *Generator) Run(ctx context.Context, prompts []string, outputDir string) []string {
	var paths []string

	for i, prompt := range prompts {
		label := fmt.Sprintf("act%d", i+1)
		if i < len(actLabels) {
			label = fmt.Sprintf("act%d_%s", i+1, actLabels[i])
		}
		outPath := filepath.Join(outputDir, label+".png")

		if _, err := os.Stat(outPath); err == nil {
			log.Infof("[images] image %d/%d already exists, skipping: %s", i+1, len(prompts), filepath.Base(outPath))
			paths = append(paths, outPath)
			continue
		}

		log.Infof("[images] generating image %d/%d", i+1, len(prompts))
		if err := g.generateOne(ctx, prompt, outPath); err != nil {
			log.Warnf("[images] image %d failed: %v", i+1, err)
			continue
		}
		log.Infof("[images] saved: %s", filepath.Base(outPath))
		paths = append(paths, outPath)
	}

	sort.Strings(paths)
	return paths
}

func (g *Generator) generateOne(ctx context.Context, prompt, outPath string) error {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          g.cfg.Image.Model,
		Prompt:         prompt,
		N:              1,
		Size:           g.cfg.Image.Size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return fmt.Errorf("image request: %w", err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("image API returned no data")
	}

	item := resp.Data[0]
	switch {
	case item.B64JSON != "":
		raw, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return fmt.Errorf("decode image payload: %w", err)
		}
		return os.WriteFile(outPath, raw, 0644)
	case item.URL != "":
		return g.download(ctx, item.URL, outPath)
	default:
		return fmt.Errorf("image API returned neither payload nor URL")
	}
}

func (g *Generator) download(ctx context.Context, imageURL, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}
