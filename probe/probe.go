// Package probe measures media durations with ffprobe. Narration and every
// downloaded clip go through here — durations are always measured, never
// estimated from text or metadata.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type Prober struct {
	ffprobe string
}

func New(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobe: ffprobePath}
}

// Duration returns the container duration of path in seconds. It fails on
// unreadable files and on non-positive durations.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w\n%s", path, err, string(out))
	}
	return ParseDuration(string(out))
}

// ParseDuration parses ffprobe's single-value duration output.
func ParseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	dur, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("non-positive duration %.3f", dur)
	}
	return dur, nil
}
