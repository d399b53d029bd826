package video

import (
	"fmt"
	"strings"

	"github.com/QHanh/AutoVideo/internal/subtitle"
)

// CaptionStyle selects how a caption line is revealed on screen.
type CaptionStyle string

const (
	StyleNormal     CaptionStyle = "normal"
	StyleTypewriter CaptionStyle = "typewriter"
	StyleWord2Word  CaptionStyle = "word2word"
)

// ParseCaptionStyle coerces a raw config string; unknown values mean normal.
func ParseCaptionStyle(s string) CaptionStyle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "typewriter":
		return StyleTypewriter
	case "word2word", "word":
		return StyleWord2Word
	default:
		return StyleNormal
	}
}

// CaptionOptions carries the rendering parameters for burned-in captions.
type CaptionOptions struct {
	Style           CaptionStyle
	FontFile        string
	FontSize        float64
	TextColor       string
	StrokeColor     string
	StrokeWidth     float64
	BackgroundColor string
	Position        string  // "top" | "bottom" | "center" | "custom"
	CustomPosition  float64 // percent of frame height, custom only
	VideoWidth      int
	VideoHeight     int
}

// glyphAdvance approximates the horizontal advance of one glyph as a
// fraction of the font size.
const glyphAdvance = 0.6

// typewriterLead is subtracted from the line duration before computing the
// reveal rate, so the full line rests on screen briefly.
const typewriterLead = 0.3

// BuildCaptionFilters turns subtitle lines into drawtext filter clauses,
// one or more per line depending on the style. Each clause is gated by an
// enable window so the whole set can be joined into a single filter graph.
func BuildCaptionFilters(lines []subtitle.Line, opts CaptionOptions) []string {
	if opts.FontSize <= 0 {
		opts.FontSize = 60
	}
	var filters []string
	for _, line := range lines {
		switch opts.Style {
		case StyleTypewriter:
			filters = append(filters, typewriterFilters(line, opts)...)
		case StyleWord2Word:
			filters = append(filters, wordFilters(line, opts)...)
		default:
			filters = append(filters, normalFilter(line, opts))
		}
	}
	return filters
}

func normalFilter(line subtitle.Line, opts CaptionOptions) string {
	maxWidth := float64(opts.VideoWidth) * 0.9
	wrapped := wrapText(line.Text, maxWidth, opts.FontSize)
	return drawtext(wrapped, line.Start, line.End, opts)
}

// typewriterFilters reveals the line prefix by prefix at a rate derived from
// the line duration.
func typewriterFilters(line subtitle.Line, opts CaptionOptions) []string {
	runes := []rune(line.Text)
	dur := line.End - line.Start
	if len(runes) == 0 || dur <= 0 {
		return nil
	}
	effective := dur - typewriterLead
	if effective <= 0 {
		effective = dur
	}
	cps := float64(len(runes)) / effective

	var filters []string
	for i := 1; i <= len(runes); i++ {
		start := line.Start + float64(i-1)/cps
		end := line.Start + float64(i)/cps
		if i == len(runes) || end > line.End {
			end = line.End
		}
		if start >= end {
			continue
		}
		filters = append(filters, drawtext(string(runes[:i]), start, end, opts))
		if end == line.End {
			break
		}
	}
	return filters
}

// wordFilters shows one word at a time, at least one word per second.
func wordFilters(line subtitle.Line, opts CaptionOptions) []string {
	words := strings.Fields(line.Text)
	dur := line.End - line.Start
	if len(words) == 0 || dur <= 0 {
		return nil
	}
	wps := float64(len(words)) / dur
	if wps < 1 {
		wps = 1
	}

	var filters []string
	for i, word := range words {
		start := line.Start + float64(i)/wps
		end := line.Start + float64(i+1)/wps
		if i == len(words)-1 && end < line.End {
			end = line.End
		}
		if end > line.End {
			end = line.End
		}
		if start >= end {
			continue
		}
		filters = append(filters, drawtext(word, start, end, opts))
	}
	return filters
}

// drawtext builds one horizontally centered drawtext clause gated to the
// [start, end) window.
func drawtext(text string, start, end float64, opts CaptionOptions) string {
	var b strings.Builder
	b.WriteString("drawtext=")
	if opts.FontFile != "" {
		fmt.Fprintf(&b, "fontfile='%s':", escapeFilterText(opts.FontFile))
	}
	fmt.Fprintf(&b, "text='%s'", escapeFilterText(text))
	fmt.Fprintf(&b, ":fontsize=%d", int(opts.FontSize))
	if opts.TextColor != "" {
		fmt.Fprintf(&b, ":fontcolor=%s", opts.TextColor)
	}
	if opts.StrokeWidth > 0 {
		fmt.Fprintf(&b, ":borderw=%d:bordercolor=%s", int(opts.StrokeWidth), opts.StrokeColor)
	}
	if opts.BackgroundColor != "" && opts.BackgroundColor != "transparent" {
		fmt.Fprintf(&b, ":box=1:boxcolor=%s:boxborderw=10", opts.BackgroundColor)
	}
	b.WriteString(":x=(w-text_w)/2")
	fmt.Fprintf(&b, ":y=%s", positionExpr(opts))
	fmt.Fprintf(&b, ":enable='between(t,%.3f,%.3f)'", start, end)
	return b.String()
}

// positionExpr returns the vertical placement expression. Custom positions
// are a percent of frame height, clamped so the text keeps a 10px margin.
func positionExpr(opts CaptionOptions) string {
	switch opts.Position {
	case "top":
		return "0.05*h"
	case "center":
		return "(h-text_h)/2"
	case "custom":
		pct := opts.CustomPosition / 100
		if pct < 0 {
			pct = 0
		}
		if pct > 1 {
			pct = 1
		}
		return fmt.Sprintf("min(max(%.4f*h\\,10)\\,h-text_h-10)", pct)
	default: // bottom
		return "0.95*h-text_h"
	}
}

// wrapText greedily wraps words so each rendered line stays inside maxWidth,
// using an approximate glyph advance.
func wrapText(text string, maxWidth, fontSize float64) string {
	advance := fontSize * glyphAdvance
	maxChars := int(maxWidth / advance)
	if maxChars < 1 {
		maxChars = 1
	}

	words := strings.Fields(text)
	var lines []string
	var current string
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len([]rune(candidate)) > maxChars && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return strings.Join(lines, "\n")
}
