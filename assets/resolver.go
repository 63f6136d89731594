package assets

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// ShortEpsilon is the slack before a video clip counts as shorter than its
// beat slot.
const ShortEpsilon = 0.1

// Prober measures a downloaded clip's duration.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Resolver binds every timeline beat to a local media file.
type Resolver struct {
	provider Provider
	prober   Prober
	library  *Library // optional shared index, nil disables it
	cfg      config.AssetsConfig
}

func NewResolver(provider Provider, prober Prober, library *Library, cfg config.AssetsConfig) *Resolver {
	return &Resolver{provider: provider, prober: prober, library: library, cfg: cfg}
}

// Resolve searches and downloads media for all beats. Distinct cache keys are
// fetched with bounded concurrency and a courtesy delay between launches;
// beats sharing a key reuse one cached result set. A beat is never left
// without media: failed resolution falls back to the generic query, then to a
// generated placeholder frame.
func (r *Resolver) Resolve(ctx context.Context, tl types.Timeline, destDir string) ([]types.ResolvedBeat, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}

	cache := r.searchAll(ctx, tl)

	var (
		resolved  []types.ResolvedBeat
		downloads = map[string]string{} // url → local path
	)
	for i, beat := range tl.Beats {
		rb, err := r.resolveBeat(ctx, beat, cache, downloads, destDir, i)
		if err != nil {
			return nil, fmt.Errorf("beat %q: %w", beat.Label, err)
		}
		resolved = append(resolved, rb)
	}
	log.Printf("[assets] ✅ Resolved %d beats (%d distinct queries)", len(resolved), len(cache))
	return resolved, nil
}

func cacheKey(mediaType types.MediaType, query string) string {
	return string(mediaType) + "|" + query
}

// searchAll issues one provider search per distinct (type, query) pair.
// Search errors are logged and produce an empty candidate set — the per-beat
// fallback chain deals with them.
func (r *Resolver) searchAll(ctx context.Context, tl types.Timeline) map[string][]Asset {
	var keys []string
	seen := map[string]bool{}
	for _, b := range tl.Beats {
		k := cacheKey(b.PreferredType, b.SearchQuery)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	var (
		mu    sync.Mutex
		cache = make(map[string][]Asset, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.SearchConcurrency)
	delay := time.Duration(r.cfg.CourtesyDelayMs) * time.Millisecond

	for i, key := range keys {
		key := key
		mediaType, query := splitCacheKey(key)
		// Stagger launches so the provider never sees a burst.
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		g.Go(func() error {
			found, err := r.provider.Search(gctx, query, mediaType, r.cfg.PerQueryResults)
			if err != nil {
				log.Printf("[assets] Search %q (%s) failed: %v", query, mediaType, err)
				found = nil
			}
			mu.Lock()
			cache[key] = found
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return cache
}

func splitCacheKey(key string) (types.MediaType, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return types.MediaType(key[:i]), key[i+1:]
		}
	}
	return types.MediaImage, key
}

func (r *Resolver) resolveBeat(ctx context.Context, beat types.Beat, cache map[string][]Asset, downloads map[string]string, destDir string, beatIndex int) (types.ResolvedBeat, error) {
	candidates := cache[cacheKey(beat.PreferredType, beat.SearchQuery)]

	// Fallback 1: the generic channel query, searched once and cached.
	if len(candidates) == 0 {
		fbKey := cacheKey(beat.PreferredType, r.cfg.FallbackQuery)
		if _, ok := cache[fbKey]; !ok {
			found, err := r.provider.Search(ctx, r.cfg.FallbackQuery, beat.PreferredType, r.cfg.PerQueryResults)
			if err != nil {
				log.Printf("[assets] Fallback search failed: %v", err)
				found = nil
			}
			cache[fbKey] = found
		}
		candidates = cache[fbKey]
	}

	// Fallback 2: a generated placeholder frame. Never leave a beat empty.
	if len(candidates) == 0 {
		log.Printf("[assets] ⚠️  No media for %q — using placeholder frame", beat.SearchQuery)
		path, err := placeholderFrame(destDir)
		if err != nil {
			return types.ResolvedBeat{}, fmt.Errorf("placeholder: %w", err)
		}
		rb := types.ResolvedBeat{Beat: beat, LocalPath: path}
		rb.PreferredType = types.MediaImage
		return rb, nil
	}

	asset := candidates[beatIndex%len(candidates)]

	localPath, ok := downloads[asset.URL]
	if !ok {
		p, err := r.provider.Download(ctx, asset.URL, destDir)
		if err != nil {
			// Broken download degrades to the placeholder rather than
			// aborting the whole job.
			log.Printf("[assets] ⚠️  Download failed for %q: %v — using placeholder", beat.SearchQuery, err)
			path, perr := placeholderFrame(destDir)
			if perr != nil {
				return types.ResolvedBeat{}, fmt.Errorf("placeholder: %w", perr)
			}
			rb := types.ResolvedBeat{Beat: beat, LocalPath: path}
			rb.PreferredType = types.MediaImage
			return rb, nil
		}
		localPath = p
		downloads[asset.URL] = p
	}

	rb := types.ResolvedBeat{Beat: beat, LocalPath: localPath}
	if beat.PreferredType == types.MediaVideo {
		dur, err := r.prober.Duration(ctx, localPath)
		if err != nil {
			// Unprobeable source duration is conservatively "too short" —
			// the reconciler's fill policy will cover the slot.
			log.Printf("[assets] Probe failed for %s: %v — treating as short", localPath, err)
			rb.IsShort = true
		} else {
			rb.SourceDurationSeconds = dur
			rb.IsShort = beat.TargetDurationSeconds > dur+ShortEpsilon
		}
	}

	if r.library != nil {
		rec := LibraryRecord{
			ID:                    asset.ID,
			Query:                 beat.SearchQuery,
			MediaType:             rb.PreferredType,
			Path:                  localPath,
			SourceDurationSeconds: rb.SourceDurationSeconds,
			AddedAt:               time.Now().UTC(),
		}
		if err := r.library.Upsert(rec); err != nil {
			log.Printf("[assets] Library upsert failed for %s: %v", asset.ID, err)
		}
	}
	return rb, nil
}

// placeholderFrame writes (once per destination dir) a dark 1920x1080 frame
// used when every other resolution path came up empty.
func placeholderFrame(destDir string) (string, error) {
	path := filepath.Join(destDir, "placeholder.png")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	dark := color.RGBA{R: 12, G: 12, B: 16, A: 255}
	for y := 0; y < 1080; y++ {
		for x := 0; x < 1920; x++ {
			img.Set(x, y, dark)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	return path, nil
}
