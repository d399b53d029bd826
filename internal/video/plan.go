package video

import (
	"fmt"
	"math/rand"
)

// minWindowSeconds drops trailing slivers when splitting a source clip.
const minWindowSeconds = 1.0

// SubClip is a playable window of a source file.
type SubClip struct {
	Path  string
	Start float64
	End   float64
}

// Duration returns the window length in seconds.
func (c SubClip) Duration() float64 {
	return c.End - c.Start
}

// SplitWindows cuts one source of the given duration into candidate windows
// no longer than maxClip seconds. Windows shorter than one second are
// dropped. Sequential mode keeps only the first window of each source so
// ordering follows the material list.
func SplitWindows(path string, duration, maxClip float64, mode ConcatMode) []SubClip {
	if duration < minWindowSeconds || maxClip <= 0 {
		return nil
	}
	var clips []SubClip
	for start := 0.0; start < duration; start += maxClip {
		end := start + maxClip
		if end > duration {
			end = duration
		}
		if end-start < minWindowSeconds {
			break
		}
		clips = append(clips, SubClip{Path: path, Start: start, End: end})
		if mode == ConcatSequential {
			break
		}
	}
	return clips
}

// PlanTimeline selects the ordered subclips that will cover the narration.
// Clips are appended until the running total exceeds the audio duration; if
// the pool runs out first, the plan loops over it again, appending
// duplicates. Clips are never removed or shortened here — the final render
// hard-trims to the audio duration.
func PlanTimeline(clips []SubClip, audioDuration float64, mode ConcatMode, rng *rand.Rand) ([]SubClip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no subclips available to plan timeline")
	}
	pool := make([]SubClip, len(clips))
	copy(pool, clips)
	if mode == ConcatRandom {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	var timeline []SubClip
	total := 0.0
	for i := 0; total <= audioDuration; i++ {
		clip := pool[i%len(pool)]
		timeline = append(timeline, clip)
		total += clip.Duration()
	}
	return timeline, nil
}
