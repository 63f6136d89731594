// Package pipeline orchestrates one full generation run: script and narration
// under the duration contract, beat allocation, asset resolution, and the
// final render.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Toulouse790/ChrisStudio-sub000/assets"
	"github.com/Toulouse790/ChrisStudio-sub000/audio"
	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/contract"
	"github.com/Toulouse790/ChrisStudio-sub000/probe"
	"github.com/Toulouse790/ChrisStudio-sub000/render"
	"github.com/Toulouse790/ChrisStudio-sub000/script"
	"github.com/Toulouse790/ChrisStudio-sub000/timeline"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// Request names one video to generate.
type Request struct {
	ChannelID string
	Topic     string
	MusicPath string // optional background music bed
}

// Options tune one pipeline instance.
type Options struct {
	// Logf receives stage reports. Defaults to log.Printf; embedders hand in
	// their own sink instead of redirecting the global logger.
	Logf func(format string, args ...any)

	// OnRenderProgress, when set, receives render completion percentages.
	OnRenderProgress func(percent float64)
}

// Pipeline wires all stages together. Build one per process; Run may be
// called for multiple requests.
type Pipeline struct {
	cfg      *config.Config
	provider script.Provider
	synth    audio.Synthesizer
	prober   *probe.Prober
	assetSrc assets.Provider
	library  *assets.Library
	opts     Options
}

// New assembles the stage dependencies from config and environment.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	pexelsKey := os.Getenv("PEXELS_API_KEY")
	if pexelsKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY not set")
	}
	synth, err := audio.NewCommandSynthesizer(cfg.Audio.TTSCommand)
	if err != nil {
		return nil, fmt.Errorf("tts: %w", err)
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	return &Pipeline{
		cfg:      cfg,
		provider: script.NewOpenAIProvider(apiKey, cfg.Script),
		synth:    synth,
		prober:   probe.New(""),
		assetSrc: assets.NewPexelsProvider(pexelsKey),
		library:  assets.NewLibrary(cfg.Paths.AssetLibrary),
		opts:     opts,
	}, nil
}

// Run executes the full pipeline for one request and returns the artifact
// manifest. Every stage error is wrapped with its stage name so failures are
// attributable from the log alone.
func (p *Pipeline) Run(ctx context.Context, req Request) (*types.ProjectArtifacts, error) {
	projectID := uuid.NewString()[:8]
	started := time.Now()
	outDir := filepath.Join(p.cfg.Paths.Output, projectID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("pipeline: output dir: %w", err)
	}
	p.opts.Logf("[pipeline] 🎬 Project %s: %q on channel %q", projectID, req.Topic, req.ChannelID)

	ch := p.cfg.Channel(req.ChannelID)

	// Stage 1+2: script and narration under the duration contract.
	resolver := contract.New(p.provider, p.synth, p.prober, p.cfg.Script, p.cfg.Audio.Voice)
	res, err := resolver.Resolve(ctx, ch, req.Topic, outDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: contract: %w", err)
	}
	scriptPath := filepath.Join(outDir, "script.json")
	if err := saveJSON(scriptPath, res.Script); err != nil {
		return nil, fmt.Errorf("pipeline: save script: %w", err)
	}

	// Stage 3: beat allocation against the measured duration.
	tl, err := timeline.Allocate(res.Script, ch, req.ChannelID, req.Topic,
		res.Narration.DurationSeconds, timeline.ParamsFromConfig(p.cfg.Beats))
	if err != nil {
		return nil, fmt.Errorf("pipeline: timeline: %w", err)
	}
	if err := saveJSON(filepath.Join(outDir, "timeline.json"), tl); err != nil {
		return nil, fmt.Errorf("pipeline: save timeline: %w", err)
	}

	// Stage 4: bind every beat to local media.
	assetResolver := assets.NewResolver(p.assetSrc, p.prober, p.library, p.cfg.Assets)
	resolved, err := assetResolver.Resolve(ctx, tl, filepath.Join(outDir, "media"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: assets: %w", err)
	}

	// Stage 5: compile and run the render graph.
	videoPath := filepath.Join(outDir, "final.mp4")
	builder := render.NewBuilder(p.cfg.Render)
	windows := render.BrandingWindows(ch, res.Narration.DurationSeconds)
	prog, err := builder.Build(resolved, res.Narration, req.MusicPath, windows, ch,
		types.FillPolicy(p.cfg.Render.FillPolicy), videoPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: render graph: %w", err)
	}
	engine := &render.Engine{OnProgress: p.opts.OnRenderProgress}
	if err := engine.Run(ctx, prog); err != nil {
		return nil, fmt.Errorf("pipeline: render: %w", err)
	}

	artifacts := &types.ProjectArtifacts{
		ProjectID:     projectID,
		ScriptPath:    scriptPath,
		NarrationPath: res.Narration.Path,
		VideoPath:     videoPath,
		DurationSec:   res.Narration.DurationSeconds,
	}
	if err := saveJSON(filepath.Join(outDir, "artifacts.json"), artifacts); err != nil {
		return nil, fmt.Errorf("pipeline: save artifacts: %w", err)
	}

	p.opts.Logf("[pipeline] ✅ Project %s done in %s: %s (%.1fs video)",
		projectID, time.Since(started).Round(time.Second), videoPath, artifacts.DurationSec)
	return artifacts, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
