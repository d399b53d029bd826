// Package material validates and prepares downloaded source clips and
// images before composition.
package material

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MinDimension is the smallest acceptable width/height for a source.
const MinDimension = 480

// Info describes one source material for a task.
type Info struct {
	Provider string  `json:"provider"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".avi": true, ".webm": true,
}
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true,
}

// probeSizeFunc returns the (width, height) of a media file. Injectable so
// preprocessing logic is testable without ffprobe on PATH.
type probeSizeFunc func(path string) (int, int, error)

// convertImageFunc renders a still image into a short video clip, returning
// the clip path.
type convertImageFunc func(ctx context.Context, imagePath string, clipDuration float64) (string, error)

// Preprocessor validates resolution and converts still images into motion
// clips so the compositor only ever sees video inputs.
type Preprocessor struct {
	probeSize    probeSizeFunc
	convertImage convertImageFunc
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		probeSize:    ffprobeSize,
		convertImage: imageToZoomClip,
	}
}

// Preprocess filters the downloaded materials in place: undersized sources
// are dropped, images are replaced by generated zoom clips. URLs here are
// local file paths after download.
func (p *Preprocessor) Preprocess(ctx context.Context, materials []Info, clipDuration float64) ([]Info, error) {
	var kept []Info
	for _, m := range materials {
		ext := strings.ToLower(filepath.Ext(m.URL))
		if !videoExts[ext] && !imageExts[ext] {
			log.Printf("[material] skipping unsupported file %s", m.URL)
			continue
		}

		w, h, err := p.probeSize(m.URL)
		if err != nil {
			log.Printf("[material] probe failed for %s: %v", m.URL, err)
			continue
		}
		if w < MinDimension || h < MinDimension {
			log.Printf("[material] %s is %dx%d, below %dx%d minimum, dropped",
				m.URL, w, h, MinDimension, MinDimension)
			continue
		}

		if imageExts[ext] {
			clip, err := p.convertImage(ctx, m.URL, clipDuration)
			if err != nil {
				log.Printf("[material] image conversion failed for %s: %v", m.URL, err)
				continue
			}
			m.URL = clip
			m.Duration = clipDuration
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no usable materials after preprocessing")
	}
	return kept, nil
}

// ffprobeSize reads width and height of the first video stream.
func ffprobeSize(path string) (int, int, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	).Output()
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(strings.TrimSpace(string(out)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe output %q", string(out))
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// imageToZoomClip renders a still into a slow-zoom video clip next to the
// source file.
func imageToZoomClip(ctx context.Context, imagePath string, clipDuration float64) (string, error) {
	outFile := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + "_zoom.mp4"
	frames := int(clipDuration * 30)
	filter := fmt.Sprintf(
		"scale=iw*2:ih*2,zoompan=z='min(zoom+0.0015,1.2)':d=%d:s=hd1080:fps=30",
		frames,
	)
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-loop", "1",
		"-i", imagePath,
		"-vf", filter,
		"-t", fmt.Sprintf("%.2f", clipDuration),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg zoompan: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return outFile, nil
}
