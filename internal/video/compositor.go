package video

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/QHanh/AutoVideo/internal/material"
)

// encode settings shared by every intermediate and final render.
const (
	outputFPS    = 30
	encodePreset = "ultrafast"
	encodeCRF    = "20"
)

// CombineParams describes one composition job.
type CombineParams struct {
	AudioFile      string
	Materials      []material.Info
	OutFile        string
	Aspect         Aspect
	ConcatMode     ConcatMode
	TransitionMode TransitionMode
	ClipDuration   float64
	Threads        int
}

// Compositor renders source clips into a silent-visuals-plus-narration video.
type Compositor struct {
	probe probeFunc
	run   runFunc
	rng   *rand.Rand
}

type probeFunc func(path string) (float64, error)
type runFunc func(ctx context.Context, args ...string) error

func NewCompositor() *Compositor {
	return &Compositor{
		probe: probeDuration,
		run:   runFFmpeg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CombineVideos plans the clip timeline against the narration duration, then
// renders each window to the target resolution and joins them. The result is
// hard-trimmed to the audio duration and carries only the narration track.
func (c *Compositor) CombineVideos(ctx context.Context, p CombineParams) error {
	audioDur, err := c.probe(p.AudioFile)
	if err != nil {
		return fmt.Errorf("probe narration: %w", err)
	}
	log.Printf("[video] narration duration %.2fs, combining %d materials", audioDur, len(p.Materials))

	var pool []SubClip
	for _, m := range p.Materials {
		dur := m.Duration
		if dur <= 0 {
			if dur, err = c.probe(m.URL); err != nil {
				log.Printf("[video] probe failed for %s: %v", m.URL, err)
				continue
			}
		}
		pool = append(pool, SplitWindows(m.URL, dur, p.ClipDuration, p.ConcatMode)...)
	}

	timeline, err := PlanTimeline(pool, audioDur, p.ConcatMode, c.rng)
	if err != nil {
		return err
	}
	log.Printf("[video] timeline has %d clips", len(timeline))

	workDir := filepath.Join(filepath.Dir(p.OutFile), "clips")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	width, height := p.Aspect.Resolution()
	var rendered []string
	for i, clip := range timeline {
		out := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))
		effect := p.TransitionMode.Resolve(c.rng)
		if err := c.renderClip(ctx, clip, out, width, height, effect, p.Threads); err != nil {
			return fmt.Errorf("render clip %d: %w", i, err)
		}
		rendered = append(rendered, out)
	}

	return c.concatWithAudio(ctx, rendered, p.AudioFile, p.OutFile, audioDur, p.Threads)
}

// renderClip extracts one window, scales it into a letterboxed canvas and
// applies the boundary effect. The clip's own audio is discarded.
func (c *Compositor) renderClip(ctx context.Context, clip SubClip, outFile string, width, height int, effect TransitionMode, threads int) error {
	dur := clip.Duration()
	letterbox := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)

	args := []string{
		"-ss", fmt.Sprintf("%.3f", clip.Start),
		"-to", fmt.Sprintf("%.3f", clip.End),
		"-i", clip.Path,
	}

	args = append(args, c.effectArgs(letterbox, effect, width, height, dur)...)

	args = append(args,
		"-r", fmt.Sprintf("%d", outputFPS),
		"-c:v", "libx264",
		"-preset", encodePreset,
		"-crf", encodeCRF,
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", threads),
		"-an",
		outFile,
	)
	return c.run(ctx, args...)
}

// effectArgs builds the filter arguments for one clip's boundary effect on
// top of the letterbox scaling.
func (c *Compositor) effectArgs(letterbox string, effect TransitionMode, width, height int, dur float64) []string {
	switch effect {
	case TransitionSlideIn, TransitionSlideOut:
		side := slideSides[c.rng.Intn(len(slideSides))]
		return []string{"-filter_complex", slideFilter(letterbox, effect, side, width, height, dur)}
	case TransitionFadeIn:
		return []string{"-vf", letterbox + ",fade=t=in:st=0:d=1"}
	case TransitionFadeOut:
		st := dur - 1
		if st < 0 {
			st = 0
		}
		return []string{"-vf", fmt.Sprintf("%s,fade=t=out:st=%.3f:d=1", letterbox, st)}
	default:
		return []string{"-vf", letterbox}
	}
}

// slideSides are the entry/exit edges a sliding clip may use; one is picked
// at random per clip.
var slideSides = []string{"left", "right", "top", "bottom"}

// slideFilter composes the letterboxed clip over a black canvas with a
// one-second slide at the start or end, entering or leaving on the given
// side.
func slideFilter(letterbox string, effect TransitionMode, side string, width, height int, dur float64) string {
	x, y := "0", "0"
	if effect == TransitionSlideIn {
		switch side {
		case "left":
			x = fmt.Sprintf("min(0,-%d+%d*t)", width, width)
		case "right":
			x = fmt.Sprintf("max(0,%d-%d*t)", width, width)
		case "top":
			y = fmt.Sprintf("min(0,-%d+%d*t)", height, height)
		default: // bottom
			y = fmt.Sprintf("max(0,%d-%d*t)", height, height)
		}
	} else {
		st := dur - 1
		if st < 0 {
			st = 0
		}
		switch side {
		case "left":
			x = fmt.Sprintf("if(lt(t,%.3f),0,-%d*(t-%.3f))", st, width, st)
		case "right":
			x = fmt.Sprintf("if(lt(t,%.3f),0,%d*(t-%.3f))", st, width, st)
		case "top":
			y = fmt.Sprintf("if(lt(t,%.3f),0,-%d*(t-%.3f))", st, height, st)
		default: // bottom
			y = fmt.Sprintf("if(lt(t,%.3f),0,%d*(t-%.3f))", st, height, st)
		}
	}
	return fmt.Sprintf(
		"color=c=black:s=%dx%d:d=%.3f[bg];[0:v]%s[fg];[bg][fg]overlay=x='%s':y='%s':shortest=1",
		width, height, dur, letterbox, x, y,
	)
}

// concatWithAudio joins the rendered clips with the concat demuxer, muxes in
// the narration and trims the output to exactly the narration duration.
func (c *Compositor) concatWithAudio(ctx context.Context, clips []string, audioFile, outFile string, audioDur float64, threads int) error {
	listFile := filepath.Join(filepath.Dir(outFile), "concat.txt")
	var lines []string
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", escapeConcatPath(clip)))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return err
	}
	defer os.Remove(listFile)

	return c.run(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-i", audioFile,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-t", fmt.Sprintf("%.3f", audioDur),
		"-c:v", "libx264",
		"-preset", encodePreset,
		"-crf", encodeCRF,
		"-r", fmt.Sprintf("%d", outputFPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-threads", fmt.Sprintf("%d", threads),
		outFile,
	)
}
