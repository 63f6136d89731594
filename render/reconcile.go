package render

import (
	"fmt"

	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// fillFilter builds the filter chain that stretches a too-short video clip to
// exactly targetSec. Loop repeats the clip seamlessly; extend-last-frame
// plays it once and clones the final frame. Both end in a hard trim so the
// output stream is exactly the slot length.
func fillFilter(policy types.FillPolicy, targetSec, sourceSec float64) string {
	switch policy {
	case types.FillExtend:
		pad := targetSec - sourceSec
		if sourceSec <= 0 || pad < 0 {
			// Source length unknown (probe failed): pad the full slot so the
			// clone always covers it, the trim cuts the surplus.
			pad = targetSec
		}
		return fmt.Sprintf(
			"tpad=stop_mode=clone:stop_duration=%.3f,trim=duration=%.3f,setpts=PTS-STARTPTS",
			pad, targetSec,
		)
	default: // FillLoop
		return fmt.Sprintf(
			"loop=loop=-1:size=32767:start=0,trim=duration=%.3f,setpts=PTS-STARTPTS",
			targetSec,
		)
	}
}
