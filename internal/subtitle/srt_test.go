package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{2.36, "00:00:02,360"},
		{61.5, "00:01:01,500"},
		{3661.001, "01:01:01,001"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%f) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAndReadSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtitle.srt")
	lines := []Line{
		{Start: 0, End: 2.36, Text: "Hello world"},
		{Start: 2.36, End: 5, Text: "This is a test"},
	}

	if err := WriteSRT(lines, path); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "1\n00:00:00,000 --> 00:00:02,360\nHello world\n") {
		t.Errorf("unexpected SRT content:\n%s", content)
	}

	got, err := ReadSRT(path)
	if err != nil {
		t.Fatalf("ReadSRT failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].Text != "Hello world" || got[1].Text != "This is a test" {
		t.Errorf("unexpected texts: %q, %q", got[0].Text, got[1].Text)
	}
	if got[1].Start != 2.36 {
		t.Errorf("line 1 start = %f, want 2.36", got[1].Start)
	}
}
