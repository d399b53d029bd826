package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// Line is one timed caption: a contiguous window and its text. Windows
// produced by Align and Transcribe are non-overlapping and monotonically
// increasing in start time.
type Line struct {
	Start float64
	End   float64
	Text  string
}

var (
	nonWordSpaceRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	nonWordRe      = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

// Align maps a flat narration script to timed caption lines using a timing
// source. Fragments are greedily accumulated until the accumulation matches
// the next target line; if the produced line count does not equal the target
// line count the whole alignment fails.
func Align(scriptText string, sm *SubMaker) ([]Line, error) {
	if sm == nil || sm.Len() == 0 {
		return nil, fmt.Errorf("empty timing source")
	}

	scriptLines := SplitByPunctuation(stripBrackets(scriptText))
	scriptLines = SplitByWordLimit(scriptLines, MaxLineWords)
	if len(scriptLines) == 0 {
		return nil, fmt.Errorf("script produced no caption lines")
	}

	var lines []Line
	lineIdx := 0
	acc := ""
	startTick := int64(-1)

	for i := 0; i < sm.Len(); i++ {
		window := sm.Offsets[i]
		if startTick < 0 {
			startTick = window[0]
		}
		acc += sm.Frags[i]

		matched := matchLine(acc, scriptLines, lineIdx)
		if matched == "" {
			continue
		}
		lines = append(lines, Line{
			Start: float64(startTick) / TicksPerSecond,
			End:   float64(window[1]) / TicksPerSecond,
			Text:  matched,
		})
		lineIdx++
		acc = ""
		startTick = -1
	}

	if len(lines) != len(scriptLines) {
		return nil, fmt.Errorf("alignment mismatch: %d lines produced, %d script lines", len(lines), len(scriptLines))
	}
	return lines, nil
}

// matchLine compares the accumulated fragment text against the target script
// line with three fallbacks: exact, stripped of non-word/non-space
// characters, stripped of all non-word characters. An empty return means no
// match yet.
func matchLine(acc string, scriptLines []string, idx int) string {
	if idx >= len(scriptLines) {
		return ""
	}
	line := scriptLines[idx]
	if acc == line {
		return strings.TrimSpace(line)
	}

	accStripped := nonWordSpaceRe.ReplaceAllString(acc, "")
	lineStripped := nonWordSpaceRe.ReplaceAllString(line, "")
	if accStripped == lineStripped {
		return strings.TrimSpace(lineStripped)
	}

	accBare := nonWordRe.ReplaceAllString(acc, "")
	lineBare := nonWordRe.ReplaceAllString(line, "")
	if accBare == lineBare {
		return strings.TrimSpace(line)
	}

	return ""
}

// stripBrackets removes bracket characters the TTS stream never voices, so
// the script side matches what came back from the synthesizer.
func stripBrackets(text string) string {
	r := strings.NewReplacer("[", " ", "]", " ", "(", " ", ")", " ", "{", " ", "}", " ")
	return strings.TrimSpace(r.Replace(text))
}
