package subtitle

import (
	"strings"
	"unicode"
)

// Sentence-ending and pause punctuation, Latin and CJK.
const punctuationMarks = ".,!?;:…。，、；：！？"

func isPunctuation(r rune) bool {
	return strings.ContainsRune(punctuationMarks, r)
}

// ContainsPunctuation reports whether s carries any phrase-boundary mark.
func ContainsPunctuation(s string) bool {
	return strings.ContainsFunc(s, isPunctuation)
}

// SplitByPunctuation splits a script into punctuation-bounded phrases.
// The punctuation itself is dropped. A dot between two digits is kept as a
// decimal point rather than treated as a boundary.
func SplitByPunctuation(text string) []string {
	var lines []string
	var sb strings.Builder
	runes := []rune(text)

	flush := func() {
		line := strings.TrimSpace(sb.String())
		if line != "" {
			lines = append(lines, line)
		}
		sb.Reset()
	}

	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		if isPunctuation(r) {
			if r == '.' && i > 0 && i < len(runes)-1 &&
				unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				sb.WriteRune(r)
				continue
			}
			flush()
			continue
		}
		sb.WriteRune(r)
	}
	flush()
	return lines
}

// SplitByWordLimit re-splits phrases so no line exceeds maxWords words.
func SplitByWordLimit(lines []string, maxWords int) []string {
	if maxWords <= 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		words := strings.Fields(line)
		for len(words) > maxWords {
			out = append(out, strings.Join(words[:maxWords], " "))
			words = words[maxWords:]
		}
		if len(words) > 0 {
			out = append(out, strings.Join(words, " "))
		}
	}
	return out
}
