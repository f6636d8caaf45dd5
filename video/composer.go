package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"news-video-pipeline/config"
	"news-video-pipeline/types"
)

// segmentRoles is the fixed playback order of the four-act variant.
var segmentRoles = []string{"hook", "reason", "emotion", "cta"}

// Composer assembles still images and narration audio into the final MP4.
// It supports two variants: the four-act composition driven by a
// FourActScript with one mixed audio track, and the simpler three-act
// composition where each image is paired with its own audio clip.
type Composer struct {
	cfg *config.Config
}

// New creates a Composer.
func New(cfg *config.Config) *Composer {
	return &Composer{cfg: cfg}
}

// Compose renders the four-act variant: exactly 4 images, one externally
// mixed audio track, durations from the script (or an even split of the
// audio duration when the script carries none). A crossfade is applied at
// each internal join; the concatenated track's audio is replaced wholesale
// by the mixed track. Optionally writes an SRT cue file next to outPath.
func (c *Composer) Compose(ctx context.Context, imagePaths []string, audioPath string, script *types.FourActScript, outPath string) error {
	if len(imagePaths) != len(segmentRoles) {
		return fmt.Errorf("four-act composition needs exactly %d images, got %d", len(segmentRoles), len(imagePaths))
	}
	if err := statAll(append([]string{audioPath}, imagePaths...)); err != nil {
		return err
	}

	totalAudio, err := probeDuration(ctx, audioPath)
	if err != nil {
		return err
	}
	durations := segmentDurations(script, totalAudio)

	log.Infof("[video] composing four-act video (%.1fs total)", totalAudio)

	segDir, err := os.MkdirTemp(filepath.Dir(outPath), "segments_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(segDir)

	segPaths := make([]string, len(imagePaths))
	for i, img := range imagePaths {
		profile := ProfileFor(segmentRoles[i])
		seg := filepath.Join(segDir, fmt.Sprintf("seg_%02d.mp4", i))
		if err := c.renderSegment(ctx, img, durations[i], profile, seg); err != nil {
			return fmt.Errorf("segment %d (%s): %w", i, segmentRoles[i], err)
		}
		segPaths[i] = seg
	}

	if err := c.concatCrossfade(ctx, segPaths, durations, audioPath, outPath); err != nil {
		return err
	}

	if c.cfg.Video.Subtitles {
		srtPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".srt"
		cues := ExtractCues(script)
		if err := WriteSRT(cues, srtPath); err != nil {
			log.Warnf("[video] subtitle file failed: %v — continuing without subtitles", err)
		} else {
			log.Infof("[video] subtitle cues written: %s", srtPath)
		}
	}

	log.Infof("[video] final video ready: %s", outPath)
	return nil
}

// ComposeThreeAct renders the three-act variant: each image's duration is
// its paired audio clip's measured duration, and the per-segment audio is
// attached per clip before concatenation.
func (c *Composer) ComposeThreeAct(ctx context.Context, imagePaths, audioPaths []string, outPath string) error {
	if len(imagePaths) != len(audioPaths) {
		return fmt.Errorf("image/audio count mismatch: %d images vs %d audio tracks", len(imagePaths), len(audioPaths))
	}
	if len(imagePaths) != 3 {
		return fmt.Errorf("three-act composition needs exactly 3 image/audio pairs, got %d", len(imagePaths))
	}
	if err := statAll(append(append([]string{}, imagePaths...), audioPaths...)); err != nil {
		return err
	}

	log.Info("[video] composing three-act video")

	segDir, err := os.MkdirTemp(filepath.Dir(outPath), "segments_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(segDir)

	var segPaths []string
	for i := range imagePaths {
		dur, err := probeDuration(ctx, audioPaths[i])
		if err != nil {
			return fmt.Errorf("segment %d audio: %w", i, err)
		}

		// Fade in every segment after the first so the joins read as
		// transitions, not hard cuts.
		fadeIn := 0.0
		if i > 0 {
			fadeIn = c.cfg.Video.CrossfadeSec
		}

		seg := filepath.Join(segDir, fmt.Sprintf("seg_%02d.mp4", i))
		if err := c.renderSegmentWithAudio(ctx, imagePaths[i], audioPaths[i], dur, fadeIn, SlowZoom, seg); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		segPaths = append(segPaths, seg)
		log.Infof("[video] segment %d ready (%.1fs)", i+1, dur)
	}

	if err := c.concatSegments(ctx, segPaths, segDir, outPath); err != nil {
		return err
	}

	log.Infof("[video] final video ready: %s", outPath)
	return nil
}

// segmentDurations takes the per-segment durations from the script when
// their aggregate is non-zero, otherwise divides the total audio duration
// evenly across the segments.
func segmentDurations(script *types.FourActScript, totalAudio float64) []float64 {
	segs := script.Segments()
	durations := make([]float64, len(segs))
	var sum float64
	for i, seg := range segs {
		durations[i] = seg.Duration
		sum += seg.Duration
	}
	if sum > 0 {
		return durations
	}
	even := totalAudio / float64(len(segs))
	for i := range durations {
		durations[i] = even
	}
	return durations
}

// renderSegment turns one still image into a video-only clip with the
// cover-crop framing and the profile's zoompan effect.
func (c *Composer) renderSegment(ctx context.Context, imgPath string, duration float64, profile KenBurnsProfile, outPath string) error {
	return runFFmpeg(ctx,
		"-loop", "1",
		"-i", imgPath,
		"-vf", c.segmentFilter(profile, duration),
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", fmt.Sprintf("%d", c.cfg.Video.FPS),
		"-c:v", "libx264",
		"-preset", c.cfg.Video.Preset,
		"-pix_fmt", "yuv420p",
		"-an",
		outPath,
	)
}

// renderSegmentWithAudio is the three-act per-clip renderer: the paired
// narration is muxed into the segment directly, with an optional fade-in
// covering the join to the previous segment.
func (c *Composer) renderSegmentWithAudio(ctx context.Context, imgPath, audioPath string, duration, fadeIn float64, profile KenBurnsProfile, outPath string) error {
	return runFFmpeg(ctx,
		"-loop", "1",
		"-i", imgPath,
		"-i", audioPath,
		"-vf", c.threeActSegmentFilter(profile, duration, fadeIn),
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", fmt.Sprintf("%d", c.cfg.Video.FPS),
		"-c:v", "libx264",
		"-preset", c.cfg.Video.Preset,
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", c.cfg.Video.Threads),
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outPath,
	)
}

// threeActSegmentFilter appends the join fade-in to the base filter chain.
func (c *Composer) threeActSegmentFilter(profile KenBurnsProfile, duration, fadeIn float64) string {
	vf := c.segmentFilter(profile, duration)
	if fadeIn > 0 {
		vf += fmt.Sprintf(",fade=t=in:st=0:d=%.3f", fadeIn)
	}
	return vf
}

// segmentFilter builds the cover-crop + zoompan filter chain. The image is
// upscaled 2x before zoompan to keep the pan smooth (sub-pixel steps
// otherwise jitter at small zoom factors).
func (c *Composer) segmentFilter(profile KenBurnsProfile, duration float64) string {
	w, h := c.cfg.Video.Width, c.cfg.Video.Height
	cover := coverCropFilter(w*2, h*2)

	if !c.cfg.Video.KenBurns || profile.StartScale == profile.EndScale {
		return fmt.Sprintf("%s,scale=%d:%d", cover, w, h)
	}

	frames := int(duration * float64(c.cfg.Video.FPS))
	if frames < 1 {
		frames = 1
	}
	step := (profile.EndScale - profile.StartScale) / float64(frames)

	var zoomExpr string
	if step >= 0 {
		zoomExpr = fmt.Sprintf("min(%.6f+%.6f*on,%.6f)", profile.StartScale, step, profile.EndScale)
	} else {
		zoomExpr = fmt.Sprintf("max(%.6f%.6f*on,%.6f)", profile.StartScale, step, profile.EndScale)
	}

	return fmt.Sprintf(
		"%s,zoompan=z='%s':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:fps=%d:s=%dx%d",
		cover, zoomExpr, frames, c.cfg.Video.FPS, w, h,
	)
}

// concatCrossfade joins the segments with an xfade at each internal join
// and maps the mixed audio track over the whole timeline.
func (c *Composer) concatCrossfade(ctx context.Context, segPaths []string, durations []float64, audioPath, outPath string) error {
	var args []string
	for _, seg := range segPaths {
		args = append(args, "-i", seg)
	}
	args = append(args, "-i", audioPath)
	audioIdx := len(segPaths)

	fade := c.cfg.Video.CrossfadeSec
	var filter strings.Builder
	prev := "[0:v]"
	offset := 0.0
	for i := 1; i < len(segPaths); i++ {
		offset += durations[i-1] - fade
		out := fmt.Sprintf("[v%d]", i)
		fmt.Fprintf(&filter, "%s[%d:v]xfade=transition=fade:duration=%.3f:offset=%.3f%s;", prev, i, fade, offset, out)
		prev = out
	}
	filterComplex := strings.TrimSuffix(filter.String(), ";")

	args = append(args,
		"-filter_complex", filterComplex,
		"-map", prev,
		"-map", fmt.Sprintf("%d:a", audioIdx),
		"-r", fmt.Sprintf("%d", c.cfg.Video.FPS),
		"-c:v", "libx264",
		"-preset", c.cfg.Video.Preset,
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", c.cfg.Video.Threads),
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	)
	return runFFmpeg(ctx, args...)
}

// concatSegments joins pre-muxed segments in order via the concat demuxer.
func (c *Composer) concatSegments(ctx context.Context, segPaths []string, workDir, outPath string) error {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, seg := range segPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", seg))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	return runFFmpeg(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	)
}

// statAll verifies every asset exists before any output is written.
func statAll(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("asset missing: %s: %w", p, err)
		}
	}
	return nil
}
