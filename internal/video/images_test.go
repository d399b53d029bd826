package video

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/QHanh/AutoVideo/internal/material"
)

// fakeRunCompositor records every ffmpeg invocation instead of executing it,
// and captures the concat list before it is cleaned up.
func fakeRunCompositor(seed int64, calls *[][]string, concatOrder *[]string) *Compositor {
	return &Compositor{
		probe: func(string) (float64, error) { return 12, nil },
		run: func(_ context.Context, args ...string) error {
			*calls = append(*calls, args)
			if !isConcatCall(args) {
				return nil
			}
			listFile := argAfter(args, "-i")
			data, err := os.ReadFile(listFile)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
				name := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
				*concatOrder = append(*concatOrder, filepath.Base(name))
			}
			return nil
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func isConcatCall(args []string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-f" && args[i+1] == "concat" {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func imageParams(t *testing.T, n int, concat ConcatMode, transition TransitionMode) CombineParams {
	t.Helper()
	materials := make([]material.Info, n)
	for i := range materials {
		materials[i] = material.Info{URL: filepath.Join("/m", string(rune('a'+i))+".jpg")}
	}
	return CombineParams{
		AudioFile:      "/m/audio.mp3",
		Materials:      materials,
		OutFile:        filepath.Join(t.TempDir(), "out.mp4"),
		Aspect:         AspectPortrait,
		ConcatMode:     concat,
		TransitionMode: transition,
		ClipDuration:   5,
		Threads:        2,
	}
}

func TestCombineImagesSequentialLoopsInOrder(t *testing.T) {
	var calls [][]string
	var order []string
	c := fakeRunCompositor(1, &calls, &order)

	if err := c.CombineImages(context.Background(), imageParams(t, 2, ConcatSequential, TransitionNone)); err != nil {
		t.Fatalf("CombineImages: %v", err)
	}
	// Two still renders plus the final concat.
	if len(calls) != 3 {
		t.Fatalf("ffmpeg calls = %d, want 3", len(calls))
	}
	// 12s narration over 10s of stills loops the whole sequence once more.
	want := []string{"still_000.mp4", "still_001.mp4", "still_000.mp4", "still_001.mp4"}
	if len(order) != len(want) {
		t.Fatalf("concat order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("concat[%d] = %s, want %s", i, order[i], want[i])
		}
	}
	// Output is trimmed to the narration duration.
	final := calls[len(calls)-1]
	if argAfter(final, "-t") != "12.000" {
		t.Errorf("final render not trimmed to narration: %v", final)
	}
}

func TestCombineImagesRandomShufflesSequence(t *testing.T) {
	const n = 8
	changed := false
	for seed := int64(0); seed < 10; seed++ {
		var calls [][]string
		var order []string
		c := fakeRunCompositor(seed, &calls, &order)
		if err := c.CombineImages(context.Background(), imageParams(t, n, ConcatRandom, TransitionNone)); err != nil {
			t.Fatalf("CombineImages: %v", err)
		}
		if len(order) < n {
			t.Fatalf("concat order too short: %v", order)
		}
		// One full pass is always a permutation of every still.
		seen := map[string]bool{}
		for _, name := range order[:n] {
			seen[name] = true
		}
		if len(seen) != n {
			t.Fatalf("first pass is not a permutation: %v", order[:n])
		}
		identity := true
		for i := 0; i < n; i++ {
			if order[i] != fmtStill(i) {
				identity = false
				break
			}
		}
		if !identity {
			changed = true
		}
	}
	if !changed {
		t.Error("random mode never reordered the still sequence")
	}
}

func fmtStill(i int) string {
	return fmt.Sprintf("still_%03d.mp4", i)
}

func TestCombineImagesAppliesTransitions(t *testing.T) {
	var calls [][]string
	var order []string
	c := fakeRunCompositor(1, &calls, &order)

	if err := c.CombineImages(context.Background(), imageParams(t, 2, ConcatSequential, TransitionFadeIn)); err != nil {
		t.Fatalf("CombineImages: %v", err)
	}
	for i := 0; i < 2; i++ {
		vf := argAfter(calls[i], "-vf")
		if !strings.Contains(vf, "fade=t=in") {
			t.Errorf("still %d missing fade-in: %q", i, vf)
		}
	}
}

func TestSlideFilterSides(t *testing.T) {
	tests := []struct {
		effect TransitionMode
		side   string
		want   string
	}{
		{TransitionSlideIn, "left", "x='min(0,-1080+1080*t)'"},
		{TransitionSlideIn, "right", "x='max(0,1080-1080*t)'"},
		{TransitionSlideIn, "top", "y='min(0,-1920+1920*t)'"},
		{TransitionSlideIn, "bottom", "y='max(0,1920-1920*t)'"},
		{TransitionSlideOut, "left", "x='if(lt(t,4.000),0,-1080*(t-4.000))'"},
		{TransitionSlideOut, "top", "y='if(lt(t,4.000),0,-1920*(t-4.000))'"},
	}
	for _, tt := range tests {
		got := slideFilter("scale", tt.effect, tt.side, 1080, 1920, 5)
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s/%s = %q, want %q", tt.effect, tt.side, got, tt.want)
		}
	}
}

func TestSlideDirectionVariesAcrossClips(t *testing.T) {
	c := &Compositor{rng: rand.New(rand.NewSource(3))}
	seen := map[string]bool{}
	for i := 0; i < 60; i++ {
		args := c.effectArgs("scale", TransitionSlideIn, 1080, 1920, 5)
		if args[0] != "-filter_complex" {
			t.Fatalf("slide did not use filter_complex: %v", args)
		}
		for _, side := range slideSides {
			marker := map[string]string{
				"left":   "-1080+1080*t",
				"right":  "1080-1080*t",
				"top":    "-1920+1920*t",
				"bottom": "1920-1920*t",
			}[side]
			if strings.Contains(args[1], marker) {
				seen[side] = true
			}
		}
	}
	if len(seen) < 2 {
		t.Errorf("slide direction never varied: %v", seen)
	}
}

func TestCombineImagesShuffleResolvesPerStill(t *testing.T) {
	var calls [][]string
	var order []string
	c := fakeRunCompositor(7, &calls, &order)

	if err := c.CombineImages(context.Background(), imageParams(t, 4, ConcatSequential, TransitionShuffle)); err != nil {
		t.Fatalf("CombineImages: %v", err)
	}
	for i := 0; i < 4; i++ {
		vf := argAfter(calls[i], "-vf")
		fc := argAfter(calls[i], "-filter_complex")
		hasFade := strings.Contains(vf, "fade=t=")
		hasSlide := strings.Contains(fc, "overlay")
		if !hasFade && !hasSlide {
			t.Errorf("still %d got no concrete effect: vf=%q fc=%q", i, vf, fc)
		}
	}
}
