// Package voice wraps the speech synthesis collaborators. A backend either
// streams audio chunks with exact word-boundary timing, or returns a
// finished audio blob whose timing source is synthesized proportionally.
package voice

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/QHanh/AutoVideo/internal/config"
	"github.com/QHanh/AutoVideo/internal/subtitle"
)

// ParseVoiceName strips the gender display suffix from a voice name.
func ParseVoiceName(name string) string {
	name = strings.ReplaceAll(name, "-Female", "")
	name = strings.ReplaceAll(name, "-Male", "")
	return strings.TrimSpace(name)
}

// RateToPercent converts a rate multiplier to the signed percent string the
// streaming backend expects ("+0%", "+20%", "-10%"). The product is rounded,
// not truncated, so multipliers like 1.2 don't land one percent short.
func RateToPercent(rate float64) string {
	percent := int(math.Round((rate - 1.0) * 100))
	if percent >= 0 {
		return fmt.Sprintf("+%d%%", percent)
	}
	return fmt.Sprintf("%d%%", percent)
}

// Speech dispatches to the configured synthesis backend.
type Speech struct {
	cfg    config.TTSConfig
	stream *StreamClient
	blob   *BlobClient
}

// NewSpeech selects the backend from configuration.
func NewSpeech(cfg config.TTSConfig) *Speech {
	return &Speech{
		cfg:    cfg,
		stream: NewStreamClient(cfg.StreamURL),
		blob:   NewBlobClient(cfg),
	}
}

// Synthesize produces narration audio for a script and returns its timing
// source. The streaming backend yields exact word boundaries; the blob
// backend yields proportional timing.
func (s *Speech) Synthesize(ctx context.Context, text, voiceName string, rate float64, outFile string) (*subtitle.SubMaker, error) {
	voiceName = ParseVoiceName(voiceName)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty script text")
	}

	switch s.cfg.Server {
	case "webhook":
		return s.blob.Synthesize(ctx, text, voiceName, outFile)
	default:
		return s.stream.Synthesize(ctx, text, voiceName, RateToPercent(rate), outFile)
	}
}

// SynthesizePodcast produces two-host dialogue audio. The TTS stream carries
// speaker tags; the plain caption stream drives the proportional timing.
func (s *Speech) SynthesizePodcast(ctx context.Context, dialogueTTS, dialogueCaptions, host1, host2, voice1, voice2, outFile string) (*subtitle.SubMaker, error) {
	return s.blob.SynthesizePodcast(ctx, dialogueTTS, dialogueCaptions, host1, host2,
		ParseVoiceName(voice1), ParseVoiceName(voice2), outFile)
}

// convertRawToMP3 converts raw PCM (s16le) to mp3 with ffmpeg.
func convertRawToMP3(ctx context.Context, rawFile, mp3File string, sampleRate, channels int) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-i", rawFile,
		"-acodec", "libmp3lame",
		mp3File,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg raw to mp3: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// probeAudioDuration reads the audio duration in seconds with ffprobe.
func probeAudioDuration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}
