package material

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// PexelsClient searches stock footage on Pexels.
type PexelsClient struct {
	apiKey      string
	orientation string
	httpClient  *http.Client
}

func NewPexelsClient(apiKey, orientation string) *PexelsClient {
	if orientation == "" {
		orientation = "portrait"
	}
	return &PexelsClient{
		apiKey:      apiKey,
		orientation: orientation,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

type pexelsResponse struct {
	Videos []struct {
		Duration   float64 `json:"duration"`
		VideoFiles []struct {
			Link   string `json:"link"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Search returns downloadable videos for the term that run at least
// minDuration seconds, picking the largest file of each hit.
func (c *PexelsClient) Search(ctx context.Context, term string, minDuration float64) ([]Info, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("per_page", "20")
	q.Set("orientation", c.orientation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.pexels.com/videos/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels status %d", resp.StatusCode)
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	var results []Info
	for _, v := range parsed.Videos {
		if v.Duration < minDuration {
			continue
		}
		best := ""
		bestArea := 0
		for _, f := range v.VideoFiles {
			if area := f.Width * f.Height; area > bestArea {
				bestArea = area
				best = f.Link
			}
		}
		if best != "" {
			results = append(results, Info{Provider: "pexels", URL: best, Duration: v.Duration})
		}
	}
	return results, nil
}
