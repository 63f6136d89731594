package render

import (
	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// BrandingWindows places the channel's text overlays on the final timeline.
// The sting and soft CTA sit at fixed offsets and are dropped when the video
// is too short to hold them; the final CTA is always anchored to the last ten
// seconds of narration, clamped to zero for very short videos.
func BrandingWindows(ch config.ChannelConfig, narrationSec float64) []types.BrandingWindow {
	var windows []types.BrandingWindow

	if ch.Sting != "" && ch.StingAtSec < narrationSec {
		dur := ch.StingDurSec
		if ch.StingAtSec+dur > narrationSec {
			dur = narrationSec - ch.StingAtSec
		}
		windows = append(windows, types.BrandingWindow{
			Kind:            types.BrandSting,
			StartSeconds:    ch.StingAtSec,
			DurationSeconds: dur,
			Text:            ch.Sting,
		})
	}

	if ch.SoftCTA != "" && ch.SoftCTAtSec < narrationSec {
		dur := ch.SoftCTADurSec
		if ch.SoftCTAtSec+dur > narrationSec {
			dur = narrationSec - ch.SoftCTAtSec
		}
		windows = append(windows, types.BrandingWindow{
			Kind:            types.BrandSoftCTA,
			StartSeconds:    ch.SoftCTAtSec,
			DurationSeconds: dur,
			Text:            ch.SoftCTA,
		})
	}

	if ch.FinalCTA != "" && narrationSec > 0 {
		start := narrationSec - 10
		if start < 0 {
			start = 0
		}
		windows = append(windows, types.BrandingWindow{
			Kind:            types.BrandFinalCTA,
			StartSeconds:    start,
			DurationSeconds: narrationSec - start,
			Text:            ch.FinalCTA,
		})
	}

	return windows
}
