// Package video composes source clips, still sequences and audio into the
// final rendered output.
package video

import (
	"math/rand"
	"strings"
)

// Aspect is the output orientation of a rendered video.
type Aspect string

const (
	AspectPortrait  Aspect = "portrait"
	AspectLandscape Aspect = "landscape"
	AspectSquare    Aspect = "square"
)

// ParseAspect coerces a raw config string; unknown values fall back to
// portrait.
func ParseAspect(s string) Aspect {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "landscape", "16:9":
		return AspectLandscape
	case "square", "1:1":
		return AspectSquare
	default:
		return AspectPortrait
	}
}

// Resolution returns the output width and height for the aspect.
func (a Aspect) Resolution() (int, int) {
	switch a {
	case AspectLandscape:
		return 1920, 1080
	case AspectSquare:
		return 1080, 1080
	default:
		return 1080, 1920
	}
}

// ConcatMode controls clip ordering during composition.
type ConcatMode string

const (
	ConcatRandom     ConcatMode = "random"
	ConcatSequential ConcatMode = "sequential"
)

// ParseConcatMode coerces a raw string; anything other than "sequential" is
// random.
func ParseConcatMode(s string) ConcatMode {
	if strings.ToLower(strings.TrimSpace(s)) == "sequential" {
		return ConcatSequential
	}
	return ConcatRandom
}

// TransitionMode selects the effect applied at each clip boundary.
type TransitionMode string

const (
	TransitionNone     TransitionMode = "none"
	TransitionShuffle  TransitionMode = "shuffle"
	TransitionFadeIn   TransitionMode = "fade_in"
	TransitionFadeOut  TransitionMode = "fade_out"
	TransitionSlideIn  TransitionMode = "slide_in"
	TransitionSlideOut TransitionMode = "slide_out"
)

// ParseTransitionMode coerces a raw string; unknown values mean none.
func ParseTransitionMode(s string) TransitionMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shuffle":
		return TransitionShuffle
	case "fade_in", "fadein":
		return TransitionFadeIn
	case "fade_out", "fadeout":
		return TransitionFadeOut
	case "slide_in", "slidein":
		return TransitionSlideIn
	case "slide_out", "slideout":
		return TransitionSlideOut
	default:
		return TransitionNone
	}
}

// concreteTransitions are the effects shuffle picks from.
var concreteTransitions = []TransitionMode{
	TransitionFadeIn, TransitionFadeOut, TransitionSlideIn, TransitionSlideOut,
}

// Resolve maps shuffle to one randomly chosen concrete effect. Resolution
// happens exactly once per clip, so a shuffled clip gets a single effect.
func (m TransitionMode) Resolve(rng *rand.Rand) TransitionMode {
	if m != TransitionShuffle {
		return m
	}
	return concreteTransitions[rng.Intn(len(concreteTransitions))]
}
