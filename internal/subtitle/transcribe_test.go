package subtitle

import "testing"

func TestLinesFromSegments_MergesAtPunctuation(t *testing.T) {
	segments := []TranscriptSegment{
		{
			Start: 0, End: 4,
			Words: []Word{
				{Word: " Hello", Start: 0.0, End: 0.5},
				{Word: " world.", Start: 0.5, End: 1.2},
				{Word: " This", Start: 1.4, End: 1.8},
				{Word: " is", Start: 1.8, End: 2.0},
				{Word: " fine.", Start: 2.0, End: 2.6},
			},
		},
	}

	lines := LinesFromSegments(segments)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("line 0 = %q, want %q", lines[0].Text, "Hello world")
	}
	if lines[0].Start != 0.0 || lines[0].End != 1.2 {
		t.Errorf("line 0 window = [%f, %f], want [0.0, 1.2]", lines[0].Start, lines[0].End)
	}
	if lines[1].Text != "This is fine" {
		t.Errorf("line 1 = %q, want %q", lines[1].Text, "This is fine")
	}
	if lines[1].Start != 1.4 || lines[1].End != 2.6 {
		t.Errorf("line 1 window = [%f, %f], want [1.4, 2.6]", lines[1].Start, lines[1].End)
	}
}

func TestLinesFromSegments_TrailingWordsWithoutPunctuation(t *testing.T) {
	segments := []TranscriptSegment{
		{
			Words: []Word{
				{Word: " no", Start: 0, End: 0.3},
				{Word: " boundary", Start: 0.3, End: 0.9},
			},
		},
	}
	lines := LinesFromSegments(segments)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Text != "no boundary" {
		t.Errorf("text = %q, want %q", lines[0].Text, "no boundary")
	}
}

func TestLinesFromSegments_EmptySegmentDropped(t *testing.T) {
	segments := []TranscriptSegment{
		{
			Words: []Word{
				{Word: ".", Start: 0, End: 0.1},
				{Word: " ok.", Start: 0.1, End: 0.4},
			},
		},
	}
	lines := LinesFromSegments(segments)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Text != "ok" {
		t.Errorf("text = %q, want %q", lines[0].Text, "ok")
	}
}
