package material

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// SearchFunc finds candidate materials for one search term.
type SearchFunc func(ctx context.Context, term string, minDuration float64) ([]Info, error)

// Service turns search terms or pre-supplied materials into validated local
// files ready for composition.
type Service struct {
	search SearchFunc
	dl     Downloader
	prep   *Preprocessor
}

func NewService(search SearchFunc, dl Downloader) *Service {
	if dl == nil {
		dl = NewHTTPDownloader()
	}
	return &Service{search: search, dl: dl, prep: NewPreprocessor()}
}

// Fetch resolves materials for a task. Supplied materials take precedence
// over search; local paths skip the download step. Every material passes
// through preprocessing before it is handed to the compositor.
func (s *Service) Fetch(ctx context.Context, destDir string, terms []string, supplied []Info, clipDuration float64) ([]Info, error) {
	candidates := supplied
	if len(candidates) == 0 {
		if s.search == nil {
			return nil, fmt.Errorf("no materials supplied and no search provider configured")
		}
		for _, term := range terms {
			found, err := s.search(ctx, term, clipDuration)
			if err != nil {
				log.Printf("[material] search %q failed: %v", term, err)
				continue
			}
			candidates = append(candidates, found...)
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no materials found for terms %v", terms)
		}
	}

	var remote, local []Info
	for _, m := range candidates {
		if strings.HasPrefix(m.URL, "http://") || strings.HasPrefix(m.URL, "https://") {
			remote = append(remote, m)
		} else {
			local = append(local, m)
		}
	}
	if len(remote) > 0 {
		saved, err := s.dl.Download(ctx, remote, destDir)
		if err != nil {
			if len(local) == 0 {
				return nil, err
			}
			log.Printf("[material] downloads failed, continuing with local files: %v", err)
		}
		local = append(local, saved...)
	}

	return s.prep.Preprocess(ctx, local, clipDuration)
}
