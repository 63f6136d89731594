package render

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// ErrTimelineUndershoot means the beat timeline sums to less than the
// narration duration at build time. The allocator's padding pass makes this
// impossible, so hitting it is a programming error and must abort loudly
// rather than ship a short video.
var ErrTimelineUndershoot = errors.New("visual timeline undershoots narration duration")

// Builder compiles resolved beats into a Program.
type Builder struct {
	cfg config.RenderConfig
}

func NewBuilder(cfg config.RenderConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build compiles the render graph: one transform statement per beat, a
// concat, the trim that binds the visual stream to the narration duration,
// branding overlays, and the audio mix.
func (b *Builder) Build(beats []types.ResolvedBeat, narration types.NarrationTrack, musicPath string, windows []types.BrandingWindow, ch config.ChannelConfig, policy types.FillPolicy, outputPath string) (*Program, error) {
	if narration.DurationSeconds <= 0 {
		return nil, fmt.Errorf("narration duration must be positive, got %.3f", narration.DurationSeconds)
	}
	if len(beats) == 0 {
		return nil, fmt.Errorf("no beats to render")
	}

	var total float64
	for _, rb := range beats {
		total += rb.TargetDurationSeconds
	}
	if total < narration.DurationSeconds-types.SumEpsilon {
		return nil, fmt.Errorf("%w: beats %.2fs vs narration %.2fs",
			ErrTimelineUndershoot, total, narration.DurationSeconds)
	}

	prog := &Program{
		OutputPath:      outputPath,
		DurationSeconds: narration.DurationSeconds,
		Encode: EncodeOptions{
			Preset: b.cfg.Preset,
			CRF:    b.cfg.CRF,
			FPS:    b.cfg.FPS,
		},
	}

	grade := colorGrade(ch.ColorGrade)
	concatIns := make([]string, 0, len(beats))
	for i, rb := range beats {
		prog.Inputs = append(prog.Inputs, rb.LocalPath)
		out := fmt.Sprintf("v%d", i)
		prog.Statements = append(prog.Statements, Statement{
			Inputs:  []string{fmt.Sprintf("%d:v", i)},
			Filter:  b.beatFilter(rb, policy, grade),
			Outputs: []string{out},
		})
		concatIns = append(concatIns, out)
	}

	// Merge all beat streams in order, then clamp to the measured narration
	// length. Upstream padding and rounding can only ever leave surplus, so
	// this is always a trim, never a stretch.
	prog.Statements = append(prog.Statements, Statement{
		Inputs:  concatIns,
		Filter:  fmt.Sprintf("concat=n=%d:v=1:a=0", len(beats)),
		Outputs: []string{"vcat"},
	})
	prog.Statements = append(prog.Statements, Statement{
		Inputs:  []string{"vcat"},
		Filter:  fmt.Sprintf("trim=duration=%.3f,setpts=PTS-STARTPTS", narration.DurationSeconds),
		Outputs: []string{"vtrim"},
	})

	prog.VideoOut = "vtrim"
	if len(windows) > 0 {
		prog.Statements = append(prog.Statements, Statement{
			Inputs:  []string{"vtrim"},
			Filter:  b.overlayFilter(windows, ch.Overlay),
			Outputs: []string{"vbrand"},
		})
		prog.VideoOut = "vbrand"
	}

	narrIdx := len(prog.Inputs)
	prog.Inputs = append(prog.Inputs, narration.Path)
	if musicPath != "" {
		musicIdx := len(prog.Inputs)
		prog.Inputs = append(prog.Inputs, musicPath)
		b.appendDuckedMix(prog, narrIdx, musicIdx, narration.DurationSeconds)
	} else {
		prog.Statements = append(prog.Statements, Statement{
			Inputs:  []string{fmt.Sprintf("%d:a", narrIdx)},
			Filter:  "anull",
			Outputs: []string{"aout"},
		})
		prog.AudioOut = "aout"
	}

	log.Printf("[render] Compiled program: %d inputs, %d statements, trim to %.2fs",
		len(prog.Inputs), len(prog.Statements), narration.DurationSeconds)
	return prog, nil
}

// beatFilter builds one beat's transform chain: normalize to the output
// frame, apply the motion effect (images) or the fill policy (short videos),
// fade the edges, and grade.
func (b *Builder) beatFilter(rb types.ResolvedBeat, policy types.FillPolicy, grade string) string {
	target := rb.TargetDurationSeconds
	var chain []string

	if rb.PreferredType == types.MediaImage {
		frames := int(target * float64(b.cfg.FPS))
		if frames < 1 {
			frames = 1
		}
		z, x, y := kenBurnsExpr(rb.ContentType, rb.EmotionalTone, frames, b.cfg.KenBurnsZoom)
		// Oversample before zoompan so the pan never shows resampling jitter.
		// setsar/format afterwards: concat rejects inputs whose SAR or pixel
		// format differ, and zoompan passes the source image's through.
		chain = append(chain,
			fmt.Sprintf("scale=%d:%d", b.cfg.Width*2, b.cfg.Height*2),
			fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=%d:s=%dx%d:fps=%d",
				z, x, y, frames, b.cfg.Width, b.cfg.Height, b.cfg.FPS),
			"setsar=1",
			"format=yuv420p",
		)
	} else {
		chain = append(chain,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", b.cfg.Width, b.cfg.Height),
			fmt.Sprintf("crop=%d:%d", b.cfg.Width, b.cfg.Height),
			"setsar=1",
			"format=yuv420p",
			fmt.Sprintf("fps=%d", b.cfg.FPS),
		)
		if rb.IsShort {
			chain = append(chain, fillFilter(policy, target, rb.SourceDurationSeconds))
		} else {
			chain = append(chain, fmt.Sprintf("trim=duration=%.3f,setpts=PTS-STARTPTS", target))
		}
	}

	fade := b.cfg.FadeSec
	// Short remainder beats can be briefer than the fade itself; a negative
	// start would black out the whole beat.
	outStart := target - fade
	if outStart < 0 {
		outStart = 0
	}
	chain = append(chain,
		fmt.Sprintf("fade=t=in:st=0:d=%.2f", fade),
		fmt.Sprintf("fade=t=out:st=%.3f:d=%.2f", outStart, fade),
	)
	if grade != "" {
		chain = append(chain, grade)
	}
	return strings.Join(chain, ",")
}

// kenBurnsExpr picks the pan/zoom expressions for an image beat from its
// narrative content type and emotional tone.
func kenBurnsExpr(ct types.ContentType, tone string, frames int, maxZoom float64) (z, x, y string) {
	step := (maxZoom - 1.0) / float64(frames)
	centerX := "iw/2-(iw/zoom/2)"
	centerY := "ih/2-(ih/zoom/2)"

	switch {
	case ct == types.ContentClimax || tone == "tense":
		// Faster push-in for peaks of tension.
		return fmt.Sprintf("min(1+%.6f*on,%.3f)", step*1.6, maxZoom), centerX, centerY
	case ct == types.ContentReveal:
		return fmt.Sprintf("max(%.3f-%.6f*on,1.0)", maxZoom, step), centerX, centerY
	case ct == types.ContentConclusion || tone == "somber":
		return fmt.Sprintf("max(%.3f-%.6f*on,1.0)", maxZoom, step*0.7), centerX, centerY
	case ct == types.ContentExposition && tone == "neutral":
		// Lateral drift at a fixed light zoom.
		return "1.1", fmt.Sprintf("(iw-iw/zoom)*on/%d", frames), centerY
	default:
		return fmt.Sprintf("min(1+%.6f*on,%.3f)", step, maxZoom), centerX, centerY
	}
}

func colorGrade(grade string) string {
	switch grade {
	case "warm":
		return "eq=contrast=1.05:saturation=1.1:gamma_r=1.03"
	case "cold":
		return "eq=contrast=1.06:saturation=0.85:gamma_b=1.04"
	case "mono":
		return "hue=s=0,eq=contrast=1.1"
	default:
		return ""
	}
}

// overlayFilter burns every branding window in as a time-gated drawtext.
func (b *Builder) overlayFilter(windows []types.BrandingWindow, style config.OverlayStyle) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, fmt.Sprintf(
			"drawtext=text='%s':fontsize=%d:fontcolor=%s:box=1:boxcolor=%s@%.2f:boxborderw=12:x=(w-text_w)/2:y=h-180:enable='between(t,%.3f,%.3f)'",
			escapeDrawText(w.Text),
			style.FontSize,
			style.FontColor,
			style.BoxColor,
			style.BoxOpacity,
			w.StartSeconds,
			w.EndSeconds(),
		))
	}
	return strings.Join(parts, ",")
}

// appendDuckedMix loops/trims the music bed under the narration and mixes the
// two with sidechain ducking: music dips while narration is active, recovers
// in silence.
func (b *Builder) appendDuckedMix(prog *Program, narrIdx, musicIdx int, durationSec float64) {
	prog.Statements = append(prog.Statements,
		Statement{
			Inputs: []string{fmt.Sprintf("%d:a", musicIdx)},
			Filter: fmt.Sprintf("aloop=loop=-1:size=2147483647,atrim=duration=%.3f,volume=%.2f",
				durationSec, b.cfg.MusicVolume),
			Outputs: []string{"bgm"},
		},
		Statement{
			Inputs:  []string{fmt.Sprintf("%d:a", narrIdx)},
			Filter:  "asplit=2",
			Outputs: []string{"nmix", "nkey"},
		},
		Statement{
			Inputs: []string{"bgm", "nkey"},
			Filter: fmt.Sprintf("sidechaincompress=threshold=%.3f:ratio=%d:attack=5:release=%d",
				b.cfg.DuckThreshold, b.cfg.DuckRatio, b.cfg.DuckReleaseMs),
			Outputs: []string{"duck"},
		},
		Statement{
			Inputs:  []string{"nmix", "duck"},
			Filter:  fmt.Sprintf("amix=inputs=2:duration=first:dropout_transition=0,atrim=duration=%.3f", durationSec),
			Outputs: []string{"aout"},
		},
	)
	prog.AudioOut = "aout"
}

func escapeDrawText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	return s
}
