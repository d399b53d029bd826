package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
)

const maxRetries = 5
const retrySleep = 2 * time.Second

var (
	markdownLinkRe  = regexp.MustCompile(`\[.*?\]`)
	parentheticalRe = regexp.MustCompile(`\(.*?\)`)
	jsonArrayRe     = regexp.MustCompile(`\[.*\]`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// GenerateScript produces a narration script for a subject. On exhausted
// retries the returned string carries ErrorMarker.
func (c *Client) GenerateScript(ctx context.Context, subject, language string, paragraphs int) string {
	prompt := buildScriptPrompt(subject, language, paragraphs)

	var script string
	for attempt := 1; attempt <= maxRetries; attempt++ {
		response := c.Complete(ctx, prompt)
		if !IsError(response) {
			script = cleanScript(response)
			if script != "" {
				return script
			}
		}
		script = response
		log.Printf("[llm] Script generation attempt %d failed, retrying...", attempt)
		time.Sleep(retrySleep)
	}
	return script
}

// GenerateTerms produces stock-video search terms for a script. The model
// must answer with a JSON array of strings; a bracketed-array extraction is
// attempted when the answer wraps the array in prose.
func (c *Client) GenerateTerms(ctx context.Context, subject, script string, amount int) ([]string, error) {
	prompt := buildTermsPrompt(subject, script, amount)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		response := c.Complete(ctx, prompt)
		if IsError(response) {
			log.Printf("[llm] Term generation attempt %d failed, retrying...", attempt)
			time.Sleep(retrySleep)
			continue
		}

		terms := parseTerms(response)
		if len(terms) > 0 {
			return terms, nil
		}
		log.Printf("[llm] Term generation attempt %d returned no usable terms, retrying...", attempt)
		time.Sleep(retrySleep)
	}
	return nil, fmt.Errorf("term generation failed after %d attempts", maxRetries)
}

// GeneratePodcastScript digests source content into a narration-ready
// podcast script.
func (c *Client) GeneratePodcastScript(ctx context.Context, subject, content, language string) string {
	prompt := buildPodcastScriptPrompt(sanitize(subject), sanitize(content), language)

	var script string
	for attempt := 1; attempt <= maxRetries; attempt++ {
		response := c.Complete(ctx, prompt)
		if !IsError(response) {
			script = cleanScript(response)
			if script != "" {
				return script
			}
		}
		script = response
		log.Printf("[llm] Podcast script attempt %d failed, retrying...", attempt)
		time.Sleep(retrySleep)
	}
	return script
}

type dialogueTurn struct {
	Host1 string `json:"host1"`
	Host2 string `json:"host2"`
}

// GeneratePodcastDialogue turns a digest script into a two-host dialogue.
// It returns two parallel streams: one formatted for speech synthesis with
// speaker tags, one plain for captions.
func (c *Client) GeneratePodcastDialogue(ctx context.Context, content, script, host1, host2, tone, language string) (string, string, error) {
	prompt := buildDialoguePrompt(sanitize(content), script, host1, host2, tone, language)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		response := c.Complete(ctx, prompt)
		if IsError(response) {
			lastErr = fmt.Errorf("%s", strings.TrimPrefix(response, ErrorMarker))
			log.Printf("[llm] Dialogue attempt %d failed, retrying...", attempt)
			time.Sleep(retrySleep)
			continue
		}

		turns, err := parseDialogue(response)
		if err != nil || len(turns) == 0 {
			lastErr = err
			log.Printf("[llm] Dialogue attempt %d unparseable, retrying...", attempt)
			time.Sleep(retrySleep)
			continue
		}

		ttsStream, captionStream := formatDialogue(turns, host1, host2)
		return ttsStream, captionStream, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no dialogue produced")
	}
	return "", "", fmt.Errorf("dialogue generation failed after %d attempts: %w", maxRetries, lastErr)
}

func parseTerms(response string) []string {
	var terms []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &terms); err == nil {
		return filterStrings(terms)
	}
	if match := jsonArrayRe.FindString(response); match != "" {
		if err := json.Unmarshal([]byte(match), &terms); err == nil {
			return filterStrings(terms)
		}
	}
	return nil
}

func filterStrings(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseDialogue(response string) ([]dialogueTurn, error) {
	raw := strings.TrimSpace(response)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var turns []dialogueTurn
	if err := json.Unmarshal([]byte(raw), &turns); err == nil {
		return turns, nil
	}
	match := jsonArrayRe.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("no dialogue array in response")
	}
	if err := json.Unmarshal([]byte(match), &turns); err != nil {
		return nil, fmt.Errorf("parse dialogue: %w", err)
	}
	return turns, nil
}

func formatDialogue(turns []dialogueTurn, host1, host2 string) (string, string) {
	ttsLines := []string{"Read aloud in a warm"}
	var captionParts []string
	for _, turn := range turns {
		ttsLines = append(ttsLines, fmt.Sprintf("%s: %s", host1, turn.Host1))
		ttsLines = append(ttsLines, fmt.Sprintf("%s: %s", host2, turn.Host2))
		captionParts = append(captionParts, turn.Host1, turn.Host2)
	}
	return strings.Join(ttsLines, "\n"), strings.Join(captionParts, " ")
}

// cleanScript strips markdown remnants from a generated script.
func cleanScript(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "#", "")
	s = markdownLinkRe.ReplaceAllString(s, "")
	s = parentheticalRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "'")
	return spacesRe.ReplaceAllString(s, " ")
}

func buildScriptPrompt(subject, language string, paragraphs int) string {
	var sb strings.Builder
	sb.WriteString(`# Role: Video Script Generator

## Goals:
Generate a script for a video, depending on the subject of the video.

## Constrains:
1. the script is to be returned as a string with the specified number of paragraphs.
2. do not under any circumstance reference this prompt in your response.
3. get straight to the point, don't start with unnecessary things like, "welcome to this video".
4. you must not include any type of markdown or formatting in the script, never use a title.
5. only return the raw content of the script.
6. do not include "voiceover", "narrator" or similar indicators of what should be spoken.
7. never talk about the amount of paragraphs or lines. just write the script.
8. respond in the same language as the video subject.

# Initialization:
`)
	fmt.Fprintf(&sb, "- video subject: %s\n- number of paragraphs: %d\n", subject, paragraphs)
	if language != "" {
		fmt.Fprintf(&sb, "- language: %s\n", language)
	}
	return sb.String()
}

func buildTermsPrompt(subject, script string, amount int) string {
	return fmt.Sprintf(`# Role: Video Search Terms Generator

## Goals:
Generate %d search terms for stock videos, depending on the subject of a video.

## Constrains:
1. the search terms are to be returned as a json-array of strings.
2. each search term should consist of 1-3 words, always add the main subject of the video.
3. you must only return the json-array of strings. you must not return anything else.
4. the search terms must be related to the subject of the video.
5. reply with english search terms only.

## Output Example:
["search term 1", "search term 2", "search term 3"]

## Context:
### Video Subject
%s

### Video Script
%s
`, amount, subject, script)
}

func buildPodcastScriptPrompt(subject, content, language string) string {
	return fmt.Sprintf(`You are a world-class podcast producer.
Your task is to transform the provided input text into an engaging and informative podcast script.
You will receive as input a text that may be unstructured or messy, sourced from places like PDFs or web pages. Ignore irrelevant information or formatting issues.
Your focus is on extracting the most interesting and insightful content for a podcast discussion.
Please only return the text without any instructions or additional commentary.

Respond in %s, with no line breaks, in plain text format, and without any special formatting.

### INPUT TEXT START ###
Subject: %s
Content: %s
### INPUT TEXT END ###`, language, subject, content)
}

func buildDialoguePrompt(content, script, host1, host2, tone, language string) string {
	return fmt.Sprintf(`You are a world-class podcast producer. Transform the provided input into an engaging two-person podcast dialogue.

- context: %s
- language: %s
- host: %s - guest: %s
- tone: %s

Rules:
- The host always goes first and interviews the guest; the guest explains the topic.
- Alternate dialogue between host and guest, one turn at a time.
- Include a short self-introduction for both, using the provided names.
- Include natural verbal fillers so the conversation sounds real.
- The guest must not include material not substantiated within the input text.
- Use the best ideas from: %s
- Keep the whole conversation between 60 and 90 seconds when read aloud.

You must answer with ONLY a JSON array of objects, each with string fields "host1" and "host2", one exchange per object. No markdown, no commentary.`,
		content, language, host1, host2, tone, script)
}
