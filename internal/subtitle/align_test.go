package subtitle

import (
	"regexp"
	"strings"
	"testing"
)

// Exact-timing source emitting one fragment per word, 1 tick each.
func uniformSubMaker(frags []string) *SubMaker {
	sm := &SubMaker{}
	for i, f := range frags {
		sm.Add(int64(i), int64(i+1), f)
	}
	return sm
}

func TestAlign_HelloWorldScenario(t *testing.T) {
	script := "Hello world. This is a test."
	sm := uniformSubMaker([]string{"Hello ", "world. ", "This ", "is ", "a ", "test."})

	lines, err := Align(script, sm)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("line 0 = %q, want %q", lines[0].Text, "Hello world")
	}
	if lines[1].Text != "This is a test" {
		t.Errorf("line 1 = %q, want %q", lines[1].Text, "This is a test")
	}
	// contiguous, non-overlapping windows
	if lines[0].End > lines[1].Start {
		t.Errorf("windows overlap: line0 ends %f, line1 starts %f", lines[0].End, lines[1].Start)
	}
}

func TestAlign_LineCountMatchesPhraseCount(t *testing.T) {
	script := "One two three. Four five. Six seven eight nine."
	sm := uniformSubMaker([]string{
		"One ", "two ", "three. ",
		"Four ", "five. ",
		"Six ", "seven ", "eight ", "nine.",
	})

	lines, err := Align(script, sm)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	// concatenation ignoring non-word characters must equal the normalized script
	strip := regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	var got strings.Builder
	for _, l := range lines {
		got.WriteString(l.Text)
	}
	want := strip.ReplaceAllString(script, "")
	if strip.ReplaceAllString(got.String(), "") != want {
		t.Errorf("concatenated text = %q, want normalized %q", got.String(), want)
	}
}

func TestAlign_WindowsStrictlyOrdered(t *testing.T) {
	script := "Alpha beta. Gamma delta. Epsilon zeta."
	sm := uniformSubMaker([]string{"Alpha ", "beta. ", "Gamma ", "delta. ", "Epsilon ", "zeta."})

	lines, err := Align(script, sm)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	for i := 0; i < len(lines)-1; i++ {
		if lines[i].End > lines[i+1].Start {
			t.Errorf("line %d end %f > line %d start %f", i, lines[i].End, i+1, lines[i+1].Start)
		}
		if lines[i].Start >= lines[i+1].Start {
			t.Errorf("starts not increasing at %d", i)
		}
	}
}

func TestAlign_MismatchFails(t *testing.T) {
	// timing source is missing the last word, so the final line never matches
	script := "Hello world. This is a test."
	sm := uniformSubMaker([]string{"Hello ", "world. ", "This ", "is "})

	if _, err := Align(script, sm); err == nil {
		t.Fatal("expected alignment mismatch error")
	}
}

func TestAlign_PunctuationOnlyDifferenceMatches(t *testing.T) {
	// fragments carry punctuation the script lines lost during splitting
	script := "Wait, what happened?"
	sm := uniformSubMaker([]string{"Wait, ", "what ", "happened?"})

	lines, err := Align(script, sm)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
}

func TestAlign_EmptyTimingSource(t *testing.T) {
	if _, err := Align("Some script.", &SubMaker{}); err == nil {
		t.Fatal("expected error for empty timing source")
	}
	if _, err := Align("Some script.", nil); err == nil {
		t.Fatal("expected error for nil timing source")
	}
}
