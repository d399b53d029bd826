package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/QHanh/AutoVideo/internal/config"
	"github.com/QHanh/AutoVideo/internal/subtitle"
)

const blobAttempts = 3

// BlobClient talks to a webhook that returns a finished audio blob as raw
// PCM (s16le). The blob carries no per-word timing, so captions fall back to
// the proportional timing source.
type BlobClient struct {
	cfg        config.TTSConfig
	httpClient *http.Client
}

func NewBlobClient(cfg config.TTSConfig) *BlobClient {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 24000
	}
	if cfg.AudioChannels == 0 {
		cfg.AudioChannels = 1
	}
	return &BlobClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 600 * time.Second},
	}
}

// Synthesize fetches the narration blob, converts it to mp3 and builds a
// proportional timing source from the probed audio duration.
func (c *BlobClient) Synthesize(ctx context.Context, text, voiceName, outFile string) (*subtitle.SubMaker, error) {
	payload := map[string]string{
		"script": text,
		"voice":  voiceName,
	}
	if err := c.fetchAudio(ctx, c.cfg.WebhookURL, payload, outFile); err != nil {
		return nil, err
	}
	return c.approximate(text, outFile)
}

// SynthesizePodcast fetches two-host dialogue audio. The TTS stream (with
// speaker tags) goes to the backend; the plain caption stream drives timing.
func (c *BlobClient) SynthesizePodcast(ctx context.Context, dialogueTTS, dialogueCaptions, host1, host2, voice1, voice2, outFile string) (*subtitle.SubMaker, error) {
	url := c.cfg.PodcastURL
	if url == "" {
		url = c.cfg.WebhookURL
	}
	payload := map[string]string{
		"script": dialogueTTS,
		"host1":  host1,
		"host2":  host2,
		"voice1": voice1,
		"voice2": voice2,
	}
	if err := c.fetchAudio(ctx, url, payload, outFile); err != nil {
		return nil, err
	}
	return c.approximate(dialogueCaptions, outFile)
}

func (c *BlobClient) fetchAudio(ctx context.Context, url string, payload map[string]string, outFile string) error {
	var lastErr error
	for attempt := 1; attempt <= blobAttempts; attempt++ {
		log.Printf("[voice] webhook synthesis attempt %d", attempt)
		if err := c.fetchOnce(ctx, url, payload, outFile); err != nil {
			lastErr = err
			log.Printf("[voice] webhook attempt %d failed: %v", attempt, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("webhook synthesis failed after %d attempts: %w", blobAttempts, lastErr)
}

func (c *BlobClient) fetchOnce(ctx context.Context, url string, payload map[string]string, outFile string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts webhook status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("tts webhook returned empty audio")
	}

	rawFile := strings.TrimSuffix(outFile, ".mp3") + ".raw"
	if err := os.WriteFile(rawFile, raw, 0o644); err != nil {
		return err
	}
	defer os.Remove(rawFile)

	return convertRawToMP3(ctx, rawFile, outFile, c.cfg.SampleRate, c.cfg.AudioChannels)
}

func (c *BlobClient) approximate(text, audioFile string) (*subtitle.SubMaker, error) {
	dur, err := probeAudioDuration(audioFile)
	if err != nil {
		return nil, fmt.Errorf("probe audio duration: %w", err)
	}
	return subtitle.Approximate(text, dur)
}
