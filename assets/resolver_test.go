package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

type fakeProvider struct {
	mu          sync.Mutex
	searches    map[string]int // query → call count
	results     map[string][]Asset
	downloads   int
	downloadErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{searches: map[string]int{}, results: map[string][]Asset{}}
}

func (f *fakeProvider) Search(ctx context.Context, query string, mediaType types.MediaType, count int) ([]Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[query]++
	return f.results[query], nil
}

func (f *fakeProvider) Download(ctx context.Context, assetURL, destDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	f.downloads++
	path := filepath.Join(destDir, filepath.Base(assetURL))
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type stubProber struct {
	durations map[string]float64
	err       error
}

func (s *stubProber) Duration(ctx context.Context, path string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.durations[filepath.Base(path)], nil
}

func testAssetsCfg() config.AssetsConfig {
	return config.AssetsConfig{
		SearchConcurrency: 2,
		PerQueryResults:   5,
		FallbackQuery:     "cinematic landscape",
	}
}

func beat(label, query string, mt types.MediaType, dur float64) types.Beat {
	return types.Beat{Label: label, SearchQuery: query, PreferredType: mt, TargetDurationSeconds: dur}
}

func TestResolveDedupesSearches(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["castle"] = []Asset{{ID: "p1", URL: "https://img/castle1.jpg"}}
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{
		beat("a", "castle", types.MediaImage, 7),
		beat("b", "castle", types.MediaImage, 7),
		beat("c", "castle", types.MediaImage, 7),
	}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 3 {
		t.Fatalf("resolved %d beats, want 3", len(resolved))
	}
	if provider.searches["castle"] != 1 {
		t.Errorf("query searched %d times, want once", provider.searches["castle"])
	}
	// Same URL, one download.
	if provider.downloads != 1 {
		t.Errorf("downloaded %d times, want once for a shared URL", provider.downloads)
	}
}

func TestResolveTypeIsPartOfCacheKey(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["castle"] = []Asset{{ID: "p1", URL: "https://img/castle1.jpg"}}
	r := NewResolver(provider, &stubProber{durations: map[string]float64{}}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{
		beat("a", "castle", types.MediaImage, 7),
		beat("b", "castle", types.MediaVideo, 7),
	}}
	if _, err := r.Resolve(context.Background(), tl, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if provider.searches["castle"] != 2 {
		t.Errorf("image and video share a cache entry: %d searches, want 2", provider.searches["castle"])
	}
}

func TestResolveFallbackChain(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	// Primary query empty, generic fallback has a result.
	provider.results["cinematic landscape"] = []Asset{{ID: "f1", URL: "https://img/generic.jpg"}}
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{
		beat("a", "nonexistent thing", types.MediaImage, 7),
		beat("b", "nonexistent thing", types.MediaImage, 7),
	}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i, rb := range resolved {
		if filepath.Base(rb.LocalPath) != "generic.jpg" {
			t.Errorf("beat %d resolved to %q, want the fallback asset", i, rb.LocalPath)
		}
	}
	// The fallback itself is searched once and cached.
	if provider.searches["cinematic landscape"] != 1 {
		t.Errorf("fallback searched %d times, want once", provider.searches["cinematic landscape"])
	}
}

func TestResolvePlaceholderWhenEverythingFails(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider() // no results for anything
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{beat("a", "void", types.MediaVideo, 7)}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rb := resolved[0]
	if rb.LocalPath == "" {
		t.Fatal("beat left without media")
	}
	if rb.PreferredType != types.MediaImage {
		t.Errorf("placeholder beat type = %s, want image", rb.PreferredType)
	}
	if _, err := os.Stat(rb.LocalPath); err != nil {
		t.Errorf("placeholder file missing: %v", err)
	}
}

func TestResolveBrokenDownloadDegradesToPlaceholder(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["castle"] = []Asset{{ID: "p1", URL: "https://img/castle1.jpg"}}
	provider.downloadErr = errors.New("403 forbidden")
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{beat("a", "castle", types.MediaImage, 7)}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatalf("broken download must degrade, not abort: %v", err)
	}
	if filepath.Base(resolved[0].LocalPath) != "placeholder.png" {
		t.Errorf("resolved to %q, want the placeholder", resolved[0].LocalPath)
	}
}

func TestResolveMarksShortVideos(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["storm"] = []Asset{{ID: "v1", URL: "https://vid/storm.mp4"}}
	prober := &stubProber{durations: map[string]float64{"storm.mp4": 3.2}}
	r := NewResolver(provider, prober, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{beat("a", "storm", types.MediaVideo, 8)}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rb := resolved[0]
	if !rb.IsShort {
		t.Error("3.2s clip in an 8s slot not marked short")
	}
	if rb.SourceDurationSeconds != 3.2 {
		t.Errorf("source duration %.1f, want 3.2", rb.SourceDurationSeconds)
	}
}

func TestResolveUnprobeableVideoIsConservativelyShort(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["storm"] = []Asset{{ID: "v1", URL: "https://vid/storm.mp4"}}
	r := NewResolver(provider, &stubProber{err: errors.New("corrupt moov atom")}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{beat("a", "storm", types.MediaVideo, 8)}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatalf("unprobeable asset must not abort: %v", err)
	}
	if !resolved[0].IsShort {
		t.Error("unprobeable clip not treated as short")
	}
}

func TestResolveRotatesCandidates(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["castle"] = []Asset{
		{ID: "p1", URL: "https://img/castle1.jpg"},
		{ID: "p2", URL: "https://img/castle2.jpg"},
	}
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{
		beat("a", "castle", types.MediaImage, 7),
		beat("b", "castle", types.MediaImage, 7),
	}}
	resolved, err := r.Resolve(context.Background(), tl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if resolved[0].LocalPath == resolved[1].LocalPath {
		t.Error("consecutive beats got the same candidate despite alternatives")
	}
}

func TestResolveRecordsToLibrary(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	provider.results["castle"] = []Asset{{ID: "p1", URL: "https://img/castle1.jpg"}}
	lib := NewLibrary(filepath.Join(t.TempDir(), "library.json"))
	r := NewResolver(provider, &stubProber{}, lib, testAssetsCfg())

	tl := types.Timeline{Beats: []types.Beat{beat("a", "castle", types.MediaImage, 7)}}
	if _, err := r.Resolve(context.Background(), tl, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	rec, ok, err := lib.Lookup("p1")
	if err != nil || !ok {
		t.Fatalf("library lookup: ok=%v err=%v", ok, err)
	}
	if rec.Query != "castle" {
		t.Errorf("library record query %q, want castle", rec.Query)
	}
}

func TestCacheKeyRoundTrip(t *testing.T) {
	t.Parallel()
	mt, q := splitCacheKey(cacheKey(types.MediaVideo, "ancient rome | fall"))
	if mt != types.MediaVideo {
		t.Errorf("media type %s, want video", mt)
	}
	if q != "ancient rome | fall" {
		t.Errorf("query %q lost in round trip", q)
	}
}

func TestResolveManyDistinctQueries(t *testing.T) {
	t.Parallel()
	provider := newFakeProvider()
	var beats []types.Beat
	for i := 0; i < 20; i++ {
		q := fmt.Sprintf("query-%02d", i)
		provider.results[q] = []Asset{{ID: q, URL: "https://img/" + q + ".jpg"}}
		beats = append(beats, beat(q, q, types.MediaImage, 7))
	}
	r := NewResolver(provider, &stubProber{}, nil, testAssetsCfg())

	resolved, err := r.Resolve(context.Background(), types.Timeline{Beats: beats}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 20 {
		t.Fatalf("resolved %d beats, want 20", len(resolved))
	}
	for q, n := range provider.searches {
		if n != 1 {
			t.Errorf("query %q searched %d times under concurrency, want once", q, n)
		}
	}
}
