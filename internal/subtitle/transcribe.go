package subtitle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Word is one word-level timestamp from the transcription collaborator.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is one recognized segment with its words.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type transcriptJSON struct {
	Segments []TranscriptSegment `json:"segments"`
}

// Transcriber produces caption lines from audio by running the whisper CLI
// with word-level timestamps.
type Transcriber struct {
	Binary   string
	Model    string
	Language string
}

// NewTranscriber creates a whisper-backed transcriber.
func NewTranscriber(binary, model, language string) *Transcriber {
	if binary == "" {
		binary = "whisper"
	}
	return &Transcriber{Binary: binary, Model: model, Language: language}
}

// Transcribe runs whisper on the audio file and merges word timestamps into
// punctuation-bounded caption lines.
func (t *Transcriber) Transcribe(ctx context.Context, audioFile string) ([]Line, error) {
	outDir, err := os.MkdirTemp(filepath.Dir(audioFile), "whisper-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioFile,
		"--model", t.Model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--word_timestamps", "True",
	}
	if t.Language != "" {
		args = append(args, "--language", t.Language)
	}

	log.Printf("[subtitle] Running whisper transcription: %s", audioFile)
	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var transcript transcriptJSON
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	lines := LinesFromSegments(transcript.Segments)
	if len(lines) == 0 {
		return nil, fmt.Errorf("transcription produced no caption lines")
	}
	return lines, nil
}

// LinesFromSegments merges consecutive words into a running segment until a
// punctuation-bearing word boundary; the trailing punctuation character is
// trimmed and empty segments are dropped.
func LinesFromSegments(segments []TranscriptSegment) []Line {
	var lines []Line

	for _, segment := range segments {
		var segStart, segEnd float64
		segText := ""
		started := false

		for _, word := range segment.Words {
			if !started {
				segStart = word.Start
				started = true
			}
			segEnd = word.End
			segText += word.Word

			if ContainsPunctuation(word.Word) {
				text := strings.TrimSpace(trimTrailingPunctuation(segText))
				if text != "" {
					lines = append(lines, Line{Start: segStart, End: segEnd, Text: text})
				}
				segText = ""
				started = false
			}
		}

		if text := strings.TrimSpace(segText); text != "" {
			lines = append(lines, Line{Start: segStart, End: segEnd, Text: text})
		}
	}
	return lines
}

func trimTrailingPunctuation(s string) string {
	runes := []rune(s)
	if len(runes) > 0 && isPunctuation(runes[len(runes)-1]) {
		return string(runes[:len(runes)-1])
	}
	return s
}
