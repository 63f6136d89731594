// Package contract drives the script-generation / narration-synthesis round
// trip until the measured narration duration lands inside the acceptance
// window, or the attempt budget runs out.
package contract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/Toulouse790/ChrisStudio-sub000/audio"
	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/script"
	"github.com/Toulouse790/ChrisStudio-sub000/timeline"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// ErrContractUnsatisfied marks a negotiation that exhausted its attempt
// budget outside the acceptance window. It is reported through Result.Err,
// never as a fatal return: the last attempt still ships.
var ErrContractUnsatisfied = errors.New("narration duration outside acceptance window")

// Prober measures a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Resolver regenerates script and narration until the duration contract is
// met. Scripts are regenerated wholesale per attempt — word count alone does
// not predict narrated length reliably, only measurement after synthesis does.
type Resolver struct {
	provider script.Provider
	synth    audio.Synthesizer
	prober   Prober
	cfg      config.ScriptConfig
	voice    string
}

func New(provider script.Provider, synth audio.Synthesizer, prober Prober, cfg config.ScriptConfig, voice string) *Resolver {
	return &Resolver{provider: provider, synth: synth, prober: prober, cfg: cfg, voice: voice}
}

// Result is the accepted (or best-effort) script/narration pair.
type Result struct {
	Script    *types.Script
	Narration types.NarrationTrack
	Segments  []timeline.Segment
	Attempts  int
	Satisfied bool

	// Err is ErrContractUnsatisfied when Satisfied is false, nil otherwise.
	Err error
}

// Resolve runs the bounded negotiation loop. When no attempt lands inside
// [MinDurationSec, MaxDurationSec] the last attempt's pair is returned
// regardless — the window is advisory then, but the measured duration on the
// script is always authoritative.
func (r *Resolver) Resolve(ctx context.Context, ch config.ChannelConfig, topic, outDir string) (Result, error) {
	mode := types.ModeNormal
	var last Result

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		minWords, maxWords := r.wordBand(mode)
		log.Printf("[contract] Attempt %d/%d (mode: %s)", attempt, r.cfg.MaxAttempts, mode)

		sc, err := r.provider.Generate(ctx, ch, topic, mode, minWords, maxWords)
		if err != nil {
			return Result{}, fmt.Errorf("attempt %d script: %w", attempt, err)
		}

		segs := timeline.Segments(sc, ch)
		narrationPath := filepath.Join(outDir, fmt.Sprintf("narration_%02d.mp3", attempt))
		if err := r.synth.Synthesize(ctx, timeline.NarrationText(segs), r.voice, narrationPath); err != nil {
			return Result{}, fmt.Errorf("attempt %d synthesis: %w", attempt, err)
		}

		// Probe failure on narration is fatal: nothing downstream may run on
		// an estimated duration.
		dur, err := r.prober.Duration(ctx, narrationPath)
		if err != nil {
			return Result{}, fmt.Errorf("attempt %d narration probe: %w", attempt, err)
		}
		sc.DurationSeconds = dur

		last = Result{
			Script:    sc,
			Narration: types.NarrationTrack{Path: narrationPath, DurationSeconds: dur},
			Segments:  segs,
			Attempts:  attempt,
		}

		switch {
		case dur < r.cfg.MinDurationSec:
			log.Printf("[contract] %.1fs is below window [%.0f, %.0f] — expanding", dur, r.cfg.MinDurationSec, r.cfg.MaxDurationSec)
			mode = types.ModeExpand
		case dur > r.cfg.MaxDurationSec:
			log.Printf("[contract] %.1fs is above window [%.0f, %.0f] — compressing", dur, r.cfg.MinDurationSec, r.cfg.MaxDurationSec)
			mode = types.ModeCompress
		default:
			last.Satisfied = true
			log.Printf("[contract] ✅ Accepted at attempt %d: %.1fs", attempt, dur)
			return last, nil
		}
	}

	// Best effort: the condition is logged, not fatal.
	last.Err = fmt.Errorf("%w: %.1fs after %d attempts", ErrContractUnsatisfied,
		last.Narration.DurationSeconds, r.cfg.MaxAttempts)
	log.Printf("[contract] ⚠️  %v — shipping the last attempt", last.Err)
	return last, nil
}

// wordBand returns the target word range for a mode. Expand pushes the center
// toward the window's upper bound, compress toward the lower one.
func (r *Resolver) wordBand(mode types.GenerationMode) (int, int) {
	wpm := float64(r.cfg.WordsPerMinute)
	var center float64
	switch mode {
	case types.ModeExpand:
		center = r.cfg.MaxDurationSec / 60 * wpm
	case types.ModeCompress:
		center = r.cfg.MinDurationSec / 60 * wpm
	default:
		center = (r.cfg.MinDurationSec + r.cfg.MaxDurationSec) / 2 / 60 * wpm
	}
	pad := float64(r.cfg.WordBandPadding)
	return int(center - pad), int(center + pad)
}
