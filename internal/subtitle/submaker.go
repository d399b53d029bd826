package subtitle

import "fmt"

// TicksPerSecond is the resolution of timing-source offsets (100 ns ticks).
const TicksPerSecond = 10_000_000

// MaxLineWords is the word limit applied when re-splitting script phrases
// into caption lines.
const MaxLineWords = 6

// SubMaker is an ordered sequence of (offset-window, text-fragment) pairs
// in 100-nanosecond ticks. A live TTS stream fills it with exact word
// boundaries; Approximate synthesizes it when the backend only returns a
// finished audio blob.
type SubMaker struct {
	Offsets [][2]int64
	Frags   []string
}

// Add appends one fragment with its tick window.
func (sm *SubMaker) Add(start, end int64, text string) {
	sm.Offsets = append(sm.Offsets, [2]int64{start, end})
	sm.Frags = append(sm.Frags, text)
}

// Len returns the number of fragments.
func (sm *SubMaker) Len() int {
	return len(sm.Frags)
}

// AudioDuration returns the total audio duration in seconds, taken from the
// end of the last fragment window.
func (sm *SubMaker) AudioDuration() float64 {
	if len(sm.Offsets) == 0 {
		return 0
	}
	return float64(sm.Offsets[len(sm.Offsets)-1][1]) / TicksPerSecond
}

// Approximate builds a proportional timing source for a finished audio blob
// of known total duration: the script is split into caption lines and the
// duration is distributed across them by character count. Its accuracy is
// strictly weaker than exact word-boundary timing.
func Approximate(text string, audioDuration float64) (*SubMaker, error) {
	lines := SplitByPunctuation(text)
	lines = SplitByWordLimit(lines, MaxLineWords)
	if len(lines) == 0 {
		return nil, fmt.Errorf("no caption lines extracted from script")
	}

	totalChars := 0
	for _, line := range lines {
		totalChars += len([]rune(line))
	}
	if totalChars == 0 {
		return nil, fmt.Errorf("script has no characters to distribute timing over")
	}

	totalTicks := int64(audioDuration * TicksPerSecond)
	perChar := float64(totalTicks) / float64(totalChars)

	sm := &SubMaker{}
	var offset int64
	for _, line := range lines {
		d := int64(float64(len([]rune(line))) * perChar)
		sm.Add(offset, offset+d, line)
		offset += d
	}
	return sm, nil
}
