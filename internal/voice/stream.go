package voice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/QHanh/AutoVideo/internal/subtitle"
)

const streamAttempts = 3

// streamEvent is one NDJSON line from the streaming backend. Audio events
// carry a base64 chunk; word_boundary events carry 100ns-tick timing.
type streamEvent struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	Offset   int64  `json:"offset,omitempty"`
	Duration int64  `json:"duration,omitempty"`
	Text     string `json:"text,omitempty"`
}

// StreamClient talks to a backend that interleaves audio chunks with exact
// word-boundary events, so subtitles can be aligned to real speech timing.
type StreamClient struct {
	url        string
	httpClient *http.Client
}

func NewStreamClient(url string) *StreamClient {
	return &StreamClient{
		url:        url,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}
}

// Synthesize streams audio to outFile and collects the word boundaries into
// a SubMaker. A stream that produced no audio counts as a failed attempt.
func (c *StreamClient) Synthesize(ctx context.Context, text, voiceName, rate, outFile string) (*subtitle.SubMaker, error) {
	var lastErr error
	for attempt := 1; attempt <= streamAttempts; attempt++ {
		log.Printf("[voice] streaming synthesis attempt %d, voice=%s", attempt, voiceName)
		sm, err := c.synthesizeOnce(ctx, text, voiceName, rate, outFile)
		if err == nil {
			return sm, nil
		}
		lastErr = err
		log.Printf("[voice] synthesis attempt %d failed: %v", attempt, err)
	}
	return nil, fmt.Errorf("speech synthesis failed after %d attempts: %w", streamAttempts, lastErr)
}

func (c *StreamClient) synthesizeOnce(ctx context.Context, text, voiceName, rate, outFile string) (*subtitle.SubMaker, error) {
	payload, err := json.Marshal(map[string]string{
		"text":  text,
		"voice": voiceName,
		"rate":  rate,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts stream status %d", resp.StatusCode)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sm := &subtitle.SubMaker{}
	wroteAudio := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("tts stream event: %w", err)
		}
		switch ev.Type {
		case "audio":
			chunk, err := base64.StdEncoding.DecodeString(ev.Data)
			if err != nil {
				return nil, fmt.Errorf("tts audio chunk: %w", err)
			}
			if _, err := f.Write(chunk); err != nil {
				return nil, err
			}
			wroteAudio = true
		case "word_boundary":
			sm.Add(ev.Offset, ev.Offset+ev.Duration, ev.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !wroteAudio {
		return nil, fmt.Errorf("tts stream produced no audio")
	}
	return sm, nil
}
