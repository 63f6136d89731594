// Package assets resolves timeline beats to concrete local media files: stock
// search, cached downloads, and the fallback chain that guarantees no beat is
// ever left without a visual.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// Asset is one search candidate with a playable URL. SourceDurationSeconds is
// the provider-reported duration for videos, 0 when unknown.
type Asset struct {
	ID                    string  `json:"id"`
	URL                   string  `json:"url"`
	SourceDurationSeconds float64 `json:"source_duration_sec,omitempty"`
}

// Provider is the media-provider collaborator contract.
type Provider interface {
	Search(ctx context.Context, query string, mediaType types.MediaType, count int) ([]Asset, error)
	Download(ctx context.Context, assetURL, destDir string) (string, error)
}

// PexelsProvider searches Pexels for stock photos and footage.
type PexelsProvider struct {
	apiKey     string
	httpClient *http.Client
}

func NewPexelsProvider(apiKey string) *PexelsProvider {
	return &PexelsProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type pexelsPhotoResponse struct {
	Photos []struct {
		ID  int64 `json:"id"`
		Src struct {
			Large2x string `json:"large2x"`
		} `json:"src"`
	} `json:"photos"`
}

type pexelsVideoResponse struct {
	Videos []struct {
		ID         int64   `json:"id"`
		Duration   float64 `json:"duration"`
		VideoFiles []struct {
			Link   string `json:"link"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

func (p *PexelsProvider) Search(ctx context.Context, query string, mediaType types.MediaType, count int) ([]Asset, error) {
	var endpoint string
	if mediaType == types.MediaVideo {
		endpoint = "https://api.pexels.com/videos/search"
	} else {
		endpoint = "https://api.pexels.com/v1/search"
	}
	u := fmt.Sprintf("%s?query=%s&per_page=%d", endpoint, url.QueryEscape(query), count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pexels search status %d: %s", resp.StatusCode, string(body))
	}

	if mediaType == types.MediaVideo {
		var vr pexelsVideoResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			return nil, fmt.Errorf("parse pexels videos: %w", err)
		}
		var out []Asset
		for _, v := range vr.Videos {
			link := bestVideoFile(v.VideoFiles)
			if link == "" {
				continue
			}
			out = append(out, Asset{
				ID:                    fmt.Sprintf("pexels-video-%d", v.ID),
				URL:                   link,
				SourceDurationSeconds: v.Duration,
			})
		}
		return out, nil
	}

	var pr pexelsPhotoResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("parse pexels photos: %w", err)
	}
	var out []Asset
	for _, ph := range pr.Photos {
		if ph.Src.Large2x == "" {
			continue
		}
		out = append(out, Asset{
			ID:  fmt.Sprintf("pexels-photo-%d", ph.ID),
			URL: ph.Src.Large2x,
		})
	}
	return out, nil
}

// bestVideoFile prefers the largest rendition at or under 1080p.
func bestVideoFile(files []struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}) string {
	best := ""
	bestH := 0
	for _, f := range files {
		if f.Link == "" || f.Height > 1080 {
			continue
		}
		if f.Height > bestH {
			best = f.Link
			bestH = f.Height
		}
	}
	if best == "" && len(files) > 0 {
		best = files[0].Link
	}
	return best
}

// Download fetches assetURL into destDir, retrying transient failures.
func (p *PexelsProvider) Download(ctx context.Context, assetURL, destDir string) (string, error) {
	name := filenameFor(assetURL)
	outPath := filepath.Join(destDir, name)
	if _, err := os.Stat(outPath); err == nil {
		return outPath, nil
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := p.downloadOnce(ctx, assetURL, outPath); err == nil {
			return outPath, nil
		} else {
			lastErr = err
		}
		log.Printf("[assets] Download attempt %d failed for %s: %v", attempt, assetURL, lastErr)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return "", fmt.Errorf("download %s: %w", assetURL, lastErr)
}

func (p *PexelsProvider) downloadOnce(ctx context.Context, assetURL, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	tmp := outPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outPath)
}

func filenameFor(assetURL string) string {
	u, err := url.Parse(assetURL)
	if err != nil || u.Path == "" {
		return "asset.bin"
	}
	base := filepath.Base(u.Path)
	base = strings.ReplaceAll(base, "%", "_")
	return base
}
