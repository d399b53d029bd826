package subtitle

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(math.Round(seconds * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSRT writes lines as a standard timed-caption file: 1-based indices,
// timestamp pairs, text, blank-line separated.
func WriteSRT(lines []Line, path string) error {
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(line.Start), FormatTimestamp(line.End), line.Text)
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// ReadSRT parses a timed-caption file back into lines.
func ReadSRT(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	var cur *Line
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			if cur != nil && cur.Text != "" {
				lines = append(lines, *cur)
			}
			cur = nil
		case strings.Contains(text, "-->"):
			parts := strings.SplitN(text, "-->", 2)
			start, err1 := parseTimestamp(strings.TrimSpace(parts[0]))
			end, err2 := parseTimestamp(strings.TrimSpace(parts[1]))
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("bad timestamp line: %q", text)
			}
			cur = &Line{Start: start, End: end}
		case cur != nil:
			if cur.Text != "" {
				cur.Text += " "
			}
			cur.Text += text
		default:
			// index line, ignored
		}
	}
	if cur != nil && cur.Text != "" {
		lines = append(lines, *cur)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseTimestamp(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return float64(h)*3600 + float64(m)*60 + sec, nil
}
