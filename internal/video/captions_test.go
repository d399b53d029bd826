package video

import (
	"strings"
	"testing"

	"github.com/QHanh/AutoVideo/internal/subtitle"
)

func baseOpts(style CaptionStyle) CaptionOptions {
	return CaptionOptions{
		Style:       style,
		FontSize:    60,
		TextColor:   "white",
		StrokeColor: "black",
		StrokeWidth: 2,
		Position:    "bottom",
		VideoWidth:  1080,
		VideoHeight: 1920,
	}
}

func TestNormalStyleOneClausePerLine(t *testing.T) {
	lines := []subtitle.Line{
		{Start: 0, End: 2, Text: "Hello world"},
		{Start: 2, End: 4, Text: "Second line"},
	}
	filters := BuildCaptionFilters(lines, baseOpts(StyleNormal))
	if len(filters) != 2 {
		t.Fatalf("filters = %d, want 2", len(filters))
	}
	if !strings.Contains(filters[0], "enable='between(t,0.000,2.000)'") {
		t.Errorf("missing enable window: %s", filters[0])
	}
	if !strings.Contains(filters[0], "x=(w-text_w)/2") {
		t.Errorf("not horizontally centered: %s", filters[0])
	}
	if !strings.Contains(filters[0], "y=0.95*h-text_h") {
		t.Errorf("bottom anchor missing: %s", filters[0])
	}
}

func TestNormalStyleWrapsLongLines(t *testing.T) {
	long := strings.Repeat("word ", 20)
	filters := BuildCaptionFilters(
		[]subtitle.Line{{Start: 0, End: 3, Text: strings.TrimSpace(long)}},
		baseOpts(StyleNormal),
	)
	if len(filters) != 1 {
		t.Fatalf("filters = %d", len(filters))
	}
	if !strings.Contains(filters[0], "\n") {
		t.Error("long text was not wrapped onto multiple lines")
	}
}

func TestTypewriterRevealsPrefixes(t *testing.T) {
	filters := BuildCaptionFilters(
		[]subtitle.Line{{Start: 0, End: 2, Text: "Hi!"}},
		baseOpts(StyleTypewriter),
	)
	if len(filters) != 3 {
		t.Fatalf("filters = %d, want one per revealed prefix", len(filters))
	}
	if !strings.Contains(filters[0], "text='H'") {
		t.Errorf("first prefix wrong: %s", filters[0])
	}
	if !strings.Contains(filters[2], "text='Hi!'") {
		t.Errorf("final prefix wrong: %s", filters[2])
	}
	// Final prefix stays up through the end of the line window.
	if !strings.Contains(filters[2], ",2.000)'") {
		t.Errorf("final prefix does not extend to line end: %s", filters[2])
	}
}

func TestWord2WordOneWordAtATime(t *testing.T) {
	filters := BuildCaptionFilters(
		[]subtitle.Line{{Start: 0, End: 2, Text: "one two four"}},
		baseOpts(StyleWord2Word),
	)
	if len(filters) != 3 {
		t.Fatalf("filters = %d, want 3", len(filters))
	}
	for i, want := range []string{"one", "two", "four"} {
		if !strings.Contains(filters[i], "text='"+want+"'") {
			t.Errorf("filter %d = %s, want word %q", i, filters[i], want)
		}
	}
}

func TestWord2WordMinimumRate(t *testing.T) {
	// 2 words over 10 seconds: the rate floor keeps each word at 1s.
	filters := BuildCaptionFilters(
		[]subtitle.Line{{Start: 0, End: 10, Text: "slow speech"}},
		baseOpts(StyleWord2Word),
	)
	if len(filters) != 2 {
		t.Fatalf("filters = %d", len(filters))
	}
	if !strings.Contains(filters[0], "between(t,0.000,1.000)") {
		t.Errorf("first word window not 1s: %s", filters[0])
	}
	// Last word is held to the end of the line.
	if !strings.Contains(filters[1], "between(t,1.000,10.000)") {
		t.Errorf("last word not held to line end: %s", filters[1])
	}
}

func TestPositionExpressions(t *testing.T) {
	tests := []struct {
		position string
		custom   float64
		want     string
	}{
		{"top", 0, "y=0.05*h"},
		{"center", 0, "y=(h-text_h)/2"},
		{"bottom", 0, "y=0.95*h-text_h"},
		{"custom", 70, "y=min(max(0.7000*h\\,10)\\,h-text_h-10)"},
		{"custom", 250, "y=min(max(1.0000*h\\,10)\\,h-text_h-10)"},
		{"custom", -5, "y=min(max(0.0000*h\\,10)\\,h-text_h-10)"},
	}
	for _, tt := range tests {
		opts := baseOpts(StyleNormal)
		opts.Position = tt.position
		opts.CustomPosition = tt.custom
		filters := BuildCaptionFilters([]subtitle.Line{{Start: 0, End: 1, Text: "x"}}, opts)
		if !strings.Contains(filters[0], tt.want) {
			t.Errorf("position %q/%v: %s missing %q", tt.position, tt.custom, filters[0], tt.want)
		}
	}
}

func TestDrawtextEscapesText(t *testing.T) {
	filters := BuildCaptionFilters(
		[]subtitle.Line{{Start: 0, End: 1, Text: "it's 50% off: now"}},
		baseOpts(StyleNormal),
	)
	if !strings.Contains(filters[0], `it\'s 50\% off\: now`) {
		t.Errorf("text not escaped: %s", filters[0])
	}
}
