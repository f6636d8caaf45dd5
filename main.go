package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"news-video-pipeline/analyze"
	"news-video-pipeline/audio"
	"news-video-pipeline/config"
	"news-video-pipeline/copywriter"
	"news-video-pipeline/images"
	"news-video-pipeline/llm"
	"news-video-pipeline/prompts"
	"news-video-pipeline/research"
	"news-video-pipeline/review"
	"news-video-pipeline/script"
	"news-video-pipeline/types"
	"news-video-pipeline/video"
)

// topicDirs is the fixed per-topic output layout.
type topicDirs struct {
	root   string
	images string
	audio  string
	copy   string
}

func main() {
	// Load .env (local dev only — CI uses secrets)
	_ = godotenv.Load()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	var (
		topic         string
		date          string
		skipResearch  bool
		configPath    string
		fourActScript string
	)
	flag.StringVar(&topic, "topic", "", "新闻主题 (例如: 'DeepSeek发布R1模型')")
	flag.StringVar(&topic, "t", "", "shorthand for -topic")
	flag.StringVar(&date, "date", "", "日期 (格式: YYYYMMDD)")
	flag.StringVar(&date, "d", "", "shorthand for -date")
	flag.BoolVar(&skipResearch, "skip-research", false, "跳过网络搜索，直接使用 LLM 生成")
	flag.StringVar(&configPath, "config", "config.yaml", "config file path")
	flag.StringVar(&fourActScript, "four-act-script", "", "compose-only mode: path to a four-act script JSON")
	flag.Parse()

	if topic == "" {
		log.Fatal("a topic is required: -t '新闻主题'")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slug := Slugify(topic)
	dirs, err := ensureDirs(cfg, slug)
	if err != nil {
		log.Fatalf("failed to create output dirs: %v", err)
	}

	log.Infof("🚀 新闻视频生成器启动 — topic: %s, slug: %s", topic, slug)
	log.Infof("📁 output dir: %s", dirs.root)

	ctx := context.Background()

	if fourActScript != "" {
		if err := composeFourAct(ctx, cfg, dirs, slug, fourActScript); err != nil {
			log.Fatalf("four-act composition failed: %v", err)
		}
		return
	}

	state := &types.PipelineState{
		RunID:     uuid.NewString()[:8],
		Topic:     topic,
		Slug:      slug,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(dirs.root, "pipeline_state.json"), state)
	}()

	llmClient := llm.NewClient(cfg)

	// Stage 1: web research (cached in research_raw.json).
	var bundle *types.ResearchBundle
	researchFile := filepath.Join(dirs.root, "research_raw.json")
	if skipResearch {
		log.Info("⏭️  research skipped by flag")
	} else if loadJSON(researchFile, &bundle) {
		log.Info("🔍 found cached research data")
	} else {
		bundle = research.New(cfg, llmClient).Run(ctx, topic, date)
		saveJSON(researchFile, bundle)
	}
	state.Research = bundle

	// Stage 2: news analysis (cached in news_data.json).
	var narrative *types.Narrative
	newsFile := filepath.Join(dirs.root, "news_data.json")
	if loadJSON(newsFile, &narrative) {
		log.Info("📰 found cached news data")
	} else {
		narrative = analyze.New(cfg, llmClient).Run(ctx, topic, date, bundle)
		saveJSON(newsFile, narrative)
	}
	state.Narrative = narrative

	// Stage 3: social copy.
	copyPath := filepath.Join(dirs.copy, "xiaohongshu.txt")
	if _, err := os.Stat(copyPath); err == nil {
		log.Info("📝 copy already exists, skipping")
	} else {
		if err := os.WriteFile(copyPath, []byte(copywriter.Generate(narrative)), 0644); err != nil {
			log.Warnf("📝 copy write failed: %v", err)
		} else {
			log.Info("📝 copy saved")
		}
	}
	state.CopyFile = copyPath

	// Stage 4: image prompts + narration scripts, with optional review pass.
	imagePrompts := prompts.Generate(narrative, cfg.Prompts.Theme)
	scriptTracks := script.Generate(narrative)
	if cfg.Review.Enabled {
		scriptTracks, imagePrompts = review.New(cfg, llmClient).Run(ctx, topic, scriptTracks, imagePrompts)
	}
	for i, p := range imagePrompts {
		promptPath := filepath.Join(dirs.images, fmt.Sprintf("prompt_act%d.txt", i+1))
		if err := os.WriteFile(promptPath, []byte(p), 0644); err != nil {
			log.Warnf("🎨 prompt %d write failed: %v", i+1, err)
		}
	}
	log.Info("🎨 image prompts saved")

	// Stage 5: cover images.
	imagePaths := images.New(cfg, llm.NewImageClient(cfg)).Run(ctx, imagePrompts, dirs.images)
	state.ImageFiles = imagePaths
	if len(imagePaths) < 3 {
		log.Warnf("🖼️  image set incomplete (%d/3) — video composition may be skipped", len(imagePaths))
	}

	// Stage 6: narration audio.
	tts := audio.New(cfg)
	var audioPaths []string
	for i, track := range scriptTracks {
		scriptPath := filepath.Join(dirs.audio, fmt.Sprintf("script_act%d.txt", i+1))
		audioPath := filepath.Join(dirs.audio, fmt.Sprintf("act%d.mp3", i+1))

		if err := os.WriteFile(scriptPath, []byte(track), 0644); err != nil {
			log.Warnf("🎙️  script %d write failed: %v", i+1, err)
		}

		if info, err := os.Stat(audioPath); err == nil && info.Size() >= 1000 {
			log.Infof("🎙️  audio act %d already exists", i+1)
		} else if err := tts.Run(ctx, track, audioPath); err != nil {
			log.Warnf("🎙️  audio act %d failed: %v", i+1, err)
		}

		if info, err := os.Stat(audioPath); err == nil && info.Size() >= 1000 {
			audioPaths = append(audioPaths, audioPath)
		}
	}
	sort.Strings(audioPaths)
	state.AudioFiles = audioPaths

	// Stage 7: video composition. Asset-count preconditions are checked
	// here; composition errors are reported without failing the run.
	videoPath := filepath.Join(dirs.root, slug+"_新闻视频.mp4")
	switch {
	case len(imagePaths) != 3 || len(audioPaths) != 3:
		log.Warnf("⚠️  not enough assets for video (images: %d/3, audio: %d/3) — skipping composition", len(imagePaths), len(audioPaths))
	default:
		if _, err := os.Stat(videoPath); err == nil {
			log.Infof("🎬 video already exists: %s", videoPath)
			state.VideoFile = videoPath
			break
		}
		if err := video.New(cfg).ComposeThreeAct(ctx, imagePaths, audioPaths, videoPath); err != nil {
			state.Error = fmt.Sprintf("video composition: %v", err)
			log.Errorf("❌ video composition failed: %v", err)
			break
		}
		state.VideoFile = videoPath
	}

	log.Info("✅ all stages complete")
	log.Infof("   output dir: %s", dirs.root)
	if state.VideoFile != "" {
		log.Infof("   video file: %s", state.VideoFile)
	}
}

// composeFourAct is the compose-only mode: it expects the topic directory
// to already hold four cover images and a mixed audio track, plus the
// four-act script JSON supplied on the command line.
func composeFourAct(ctx context.Context, cfg *config.Config, dirs topicDirs, slug, scriptPath string) error {
	var fourAct types.FourActScript
	if !loadJSON(scriptPath, &fourAct) {
		return fmt.Errorf("could not read four-act script: %s", scriptPath)
	}

	imagePaths, err := filepath.Glob(filepath.Join(dirs.images, "act*.png"))
	if err != nil {
		return err
	}
	sort.Strings(imagePaths)

	audioPath := filepath.Join(dirs.audio, "audio_final.mp3")
	outPath := filepath.Join(dirs.root, slug+"_新闻视频.mp4")

	return video.New(cfg).Compose(ctx, imagePaths, audioPath, &fourAct, outPath)
}

var (
	slugStrip    = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	slugCollapse = regexp.MustCompile(`[\s_]+`)
)

// Slugify turns a (possibly Chinese) topic into a filesystem-safe
// identifier used to namespace all output paths.
func Slugify(topic string) string {
	s := slugStrip.ReplaceAllString(topic, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	runes := []rune(s)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

func ensureDirs(cfg *config.Config, slug string) (topicDirs, error) {
	root := filepath.Join(cfg.Paths.Results, slug)
	dirs := topicDirs{
		root:   root,
		images: filepath.Join(root, "封面图"),
		audio:  filepath.Join(root, "播客mp3"),
		copy:   filepath.Join(root, "小红书文案"),
	}
	for _, d := range []string{dirs.root, dirs.images, dirs.audio, dirs.copy} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return dirs, err
		}
	}
	return dirs, nil
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warnf("could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warnf("could not save %s: %v", path, err)
	}
}

// loadJSON reports whether path existed and decoded cleanly into v.
func loadJSON(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warnf("could not parse %s (%v) — regenerating", path, err)
		return false
	}
	return true
}
