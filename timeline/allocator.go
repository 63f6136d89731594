package timeline

import (
	"fmt"
	"log"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// Params are the knobs for one allocation run.
type Params struct {
	MinBeatSec        float64
	MaxBeatSec        float64
	ImageRatio        float64 // probability a beat prefers a still image
	ShortBeatFraction float64 // remainder below this*MinBeatSec becomes one short beat
	MinVideoBeats     int     // promote image beats until this many prefer video
}

// ParamsFromConfig maps the beats config section onto allocation params.
func ParamsFromConfig(c config.BeatsConfig) Params {
	return Params{
		MinBeatSec:        c.MinBeatSec,
		MaxBeatSec:        c.MaxBeatSec,
		ImageRatio:        c.ImageRatio,
		ShortBeatFraction: c.ShortBeatFraction,
		MinVideoBeats:     c.MinVideoBeats,
	}
}

// Allocate turns an accepted script and its measured narration duration into
// the beat timeline. The returned timeline never undershoots the narration
// duration: any rounding deficit is padded onto the last beat, and trimming
// down happens later, centrally, against the narration track.
func Allocate(sc *types.Script, ch config.ChannelConfig, channelID, topic string, narrationSec float64, p Params) (types.Timeline, error) {
	if narrationSec <= 0 {
		return types.Timeline{}, fmt.Errorf("narration duration must be positive, got %.3f", narrationSec)
	}
	if p.MinBeatSec <= 0 || p.MaxBeatSec < p.MinBeatSec {
		return types.Timeline{}, fmt.Errorf("bad beat range [%.1f, %.1f]", p.MinBeatSec, p.MaxBeatSec)
	}

	segs := Segments(sc, ch)
	shares := segmentShares(segs, narrationSec)
	rng := newRand(Seed(channelID, topic, sc.Title))

	var (
		tl        types.Timeline
		forced    []bool // parallel to tl.Beats: image forced by the segment
		prevQuery string
	)

	for si, seg := range segs {
		palette := Palette(seg.BaseQuery, ch.Theme)
		remaining := shares[si]
		beatIdx := 0

		for remaining > types.SumEpsilon {
			var dur float64
			if remaining < p.ShortBeatFraction*p.MinBeatSec {
				// One short final beat beats a degenerate sliver followed by
				// an oversized neighbor.
				dur = remaining
			} else {
				dur = p.MinBeatSec + rng.Float64()*(p.MaxBeatSec-p.MinBeatSec)
				if dur > remaining {
					dur = remaining
				}
			}

			mediaType := types.MediaImage
			if !seg.ForceImage && rng.Float64() >= p.ImageRatio {
				mediaType = types.MediaVideo
			}

			query := PickQuery(palette, beatIdx, prevQuery)
			tl.Beats = append(tl.Beats, types.Beat{
				Label:                 fmt.Sprintf("%s-b%02d", seg.Label, beatIdx+1),
				PreferredType:         mediaType,
				TargetDurationSeconds: dur,
				Transition:            seg.Transition,
				SearchQuery:           query,
				ChannelID:             channelID,
				ContentType:           seg.ContentType,
				EmotionalTone:         seg.EmotionalTone,
			})
			forced = append(forced, seg.ForceImage)

			prevQuery = query
			remaining -= dur
			beatIdx++
		}
	}

	if len(tl.Beats) == 0 {
		return types.Timeline{}, fmt.Errorf("allocation produced no beats for %.1fs narration", narrationSec)
	}

	promoteVideoBeats(&tl, forced, p.MinVideoBeats, rng)

	// Final invariant pass: pad the last beat, never trim the total.
	if deficit := narrationSec - tl.TotalSeconds(); deficit > types.SumEpsilon {
		last := &tl.Beats[len(tl.Beats)-1]
		last.TargetDurationSeconds += deficit
		log.Printf("[timeline] Padded last beat %q by %.2fs to cover narration", last.Label, deficit)
	}

	log.Printf("[timeline] ✅ %d beats over %.1fs (%d video)", len(tl.Beats), tl.TotalSeconds(), countVideo(tl))
	return tl, nil
}

// segmentShares splits the narration duration across segments in proportion
// to how much is actually said in each one.
func segmentShares(segs []Segment, narrationSec float64) []float64 {
	weights := make([]float64, len(segs))
	var total float64
	for i, s := range segs {
		w := float64(wordCount(s.Text))
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	shares := make([]float64, len(segs))
	for i, w := range weights {
		shares[i] = narrationSec * w / total
	}
	return shares
}

// promoteVideoBeats flips image beats to video, picked pseudo-randomly from
// the unforced image pool, until the requested minimum is met or the pool is
// exhausted.
func promoteVideoBeats(tl *types.Timeline, forced []bool, minVideo int, rng interface{ Intn(int) int }) {
	if minVideo <= 0 {
		return
	}
	var pool []int
	have := 0
	for i, b := range tl.Beats {
		if b.PreferredType == types.MediaVideo {
			have++
		} else if !forced[i] {
			pool = append(pool, i)
		}
	}
	for have < minVideo && len(pool) > 0 {
		pick := rng.Intn(len(pool))
		idx := pool[pick]
		tl.Beats[idx].PreferredType = types.MediaVideo
		pool = append(pool[:pick], pool[pick+1:]...)
		have++
	}
}

func countVideo(tl types.Timeline) int {
	n := 0
	for _, b := range tl.Beats {
		if b.PreferredType == types.MediaVideo {
			n++
		}
	}
	return n
}
