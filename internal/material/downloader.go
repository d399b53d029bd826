package material

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Downloader fetches remote materials into a task directory.
type Downloader interface {
	Download(ctx context.Context, materials []Info, destDir string) ([]Info, error)
}

// DownloadFunc adapts a function to the Downloader interface.
type DownloadFunc func(ctx context.Context, materials []Info, destDir string) ([]Info, error)

func (f DownloadFunc) Download(ctx context.Context, materials []Info, destDir string) ([]Info, error) {
	return f(ctx, materials, destDir)
}

// HTTPDownloader saves each material URL to disk. Failed downloads are
// skipped rather than aborting the batch.
type HTTPDownloader struct {
	client *http.Client
}

func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{client: &http.Client{Timeout: 180 * time.Second}}
}

func (d *HTTPDownloader) Download(ctx context.Context, materials []Info, destDir string) ([]Info, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}
	var saved []Info
	for _, m := range materials {
		path, err := d.downloadOne(ctx, m.URL, destDir)
		if err != nil {
			log.Printf("[material] download failed for %s: %v", m.URL, err)
			continue
		}
		m.URL = path
		saved = append(saved, m)
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("no materials downloaded")
	}
	return saved, nil
}

func (d *HTTPDownloader) downloadOne(ctx context.Context, url, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	ext := filepath.Ext(url)
	if ext == "" || len(ext) > 5 {
		ext = ".mp4"
	}
	path := filepath.Join(destDir, uuid.New().String()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
