package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// CombineImages renders a slideshow from still images: each image becomes a
// fixed-duration segment with its own boundary effect, the sequence order
// follows the concat mode, and the whole sequence loops until it covers the
// narration. The output is hard-trimmed to the narration duration.
func (c *Compositor) CombineImages(ctx context.Context, p CombineParams) error {
	audioDur, err := c.probe(p.AudioFile)
	if err != nil {
		return fmt.Errorf("probe narration: %w", err)
	}
	if len(p.Materials) == 0 {
		return fmt.Errorf("no images to combine")
	}
	segDur := p.ClipDuration
	if segDur <= 0 {
		segDur = 5
	}
	log.Printf("[video] slideshow from %d images, %.1fs each, narration %.2fs",
		len(p.Materials), segDur, audioDur)

	workDir := filepath.Join(filepath.Dir(p.OutFile), "stills")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	width, height := p.Aspect.Resolution()
	letterbox := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height,
	)

	var rendered []string
	for i, m := range p.Materials {
		out := filepath.Join(workDir, fmt.Sprintf("still_%03d.mp4", i))
		effect := p.TransitionMode.Resolve(c.rng)
		args := []string{
			"-loop", "1",
			"-i", m.URL,
			"-t", fmt.Sprintf("%.3f", segDur),
		}
		args = append(args, c.effectArgs(letterbox, effect, width, height, segDur)...)
		args = append(args,
			"-r", fmt.Sprintf("%d", outputFPS),
			"-c:v", "libx264",
			"-preset", encodePreset,
			"-crf", encodeCRF,
			"-pix_fmt", "yuv420p",
			"-an",
			out,
		)
		if err := c.run(ctx, args...); err != nil {
			return fmt.Errorf("render still %d: %w", i, err)
		}
		rendered = append(rendered, out)
	}

	// Anything but explicit sequential order is randomized.
	if p.ConcatMode != ConcatSequential {
		c.rng.Shuffle(len(rendered), func(i, j int) {
			rendered[i], rendered[j] = rendered[j], rendered[i]
		})
	}

	// Repeat the full sequence until it outlasts the narration.
	repeats := int(audioDur/(segDur*float64(len(rendered)))) + 1
	var sequence []string
	for r := 0; r < repeats; r++ {
		sequence = append(sequence, rendered...)
	}

	return c.concatWithAudio(ctx, sequence, p.AudioFile, p.OutFile, audioDur, p.Threads)
}
