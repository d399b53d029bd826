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

	"github.com/QHanh/AutoVideo/internal/subtitle"
)

const bgmFadeSeconds = 3.0

// FinalizeParams describes the last render pass: volume balancing,
// background music and burned-in captions.
type FinalizeParams struct {
	VideoFile    string
	OutFile      string
	SubtitleFile string // SRT path, empty disables captions
	Captions     CaptionOptions
	VoiceVolume  float64
	BGMType      string // "" | "random" | "file"
	BGMFile      string
	BGMVolume    float64
	SongsDir     string
	Threads      int
}

// Generate produces the final deliverable: narration volume is scaled,
// background music is looped under it with a fade-out, and captions are
// burned in from the subtitle file.
func Generate(ctx context.Context, p FinalizeParams) error {
	videoDur, err := probeDuration(p.VideoFile)
	if err != nil {
		return fmt.Errorf("probe video: %w", err)
	}
	if p.VoiceVolume <= 0 {
		p.VoiceVolume = 1.0
	}

	bgmFile := resolveBGM(p.BGMType, p.BGMFile, p.SongsDir)

	var filters []string
	if p.SubtitleFile != "" {
		lines, err := subtitle.ReadSRT(p.SubtitleFile)
		if err != nil {
			return fmt.Errorf("read subtitles: %w", err)
		}
		filters = BuildCaptionFilters(lines, p.Captions)
	}

	args := []string{"-i", p.VideoFile}
	if bgmFile != "" {
		// Loop the music under the whole video, then fade it out at the end.
		args = append(args, "-stream_loop", "-1", "-i", bgmFile)
	}

	var audioFilter string
	if bgmFile != "" {
		fadeStart := videoDur - bgmFadeSeconds
		if fadeStart < 0 {
			fadeStart = 0
		}
		bgmVol := p.BGMVolume
		if bgmVol <= 0 {
			bgmVol = 0.2
		}
		audioFilter = fmt.Sprintf(
			"[0:a]volume=%.2f[voice];[1:a]volume=%.2f,afade=t=out:st=%.3f:d=%.3f[bgm];[voice][bgm]amix=inputs=2:duration=first:dropout_transition=0[aout]",
			p.VoiceVolume, bgmVol, fadeStart, bgmFadeSeconds,
		)
	} else {
		audioFilter = fmt.Sprintf("[0:a]volume=%.2f[aout]", p.VoiceVolume)
	}

	var filterComplex string
	if len(filters) > 0 {
		filterComplex = fmt.Sprintf("[0:v]%s[vout];%s", strings.Join(filters, ","), audioFilter)
		args = append(args, "-filter_complex", filterComplex,
			"-map", "[vout]", "-map", "[aout]")
	} else {
		args = append(args, "-filter_complex", audioFilter,
			"-map", "0:v:0", "-map", "[aout]")
	}

	args = append(args,
		"-t", fmt.Sprintf("%.3f", videoDur),
		"-c:v", "libx264",
		"-preset", encodePreset,
		"-crf", encodeCRF,
		"-r", fmt.Sprintf("%d", outputFPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-threads", fmt.Sprintf("%d", p.Threads),
		p.OutFile,
	)
	log.Printf("[video] finalizing %s (bgm=%q, captions=%v)", p.OutFile, bgmFile, p.SubtitleFile != "")
	return runFFmpeg(ctx, args...)
}

// resolveBGM picks the background track: an explicit file if it exists, a
// random .mp3 from the songs directory for "random", otherwise none.
func resolveBGM(bgmType, bgmFile, songsDir string) string {
	switch bgmType {
	case "file":
		if _, err := os.Stat(bgmFile); err == nil {
			return bgmFile
		}
		log.Printf("[video] bgm file %q not found, continuing without music", bgmFile)
		return ""
	case "random":
		entries, err := os.ReadDir(songsDir)
		if err != nil {
			log.Printf("[video] songs dir %q unreadable: %v", songsDir, err)
			return ""
		}
		var songs []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
				songs = append(songs, filepath.Join(songsDir, e.Name()))
			}
		}
		if len(songs) == 0 {
			return ""
		}
		return songs[rand.New(rand.NewSource(time.Now().UnixNano())).Intn(len(songs))]
	default:
		return ""
	}
}
