package render

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// stderrTail is how many recent ffmpeg stderr lines are kept for the error
// report when the run fails.
const stderrTail = 30

var timeMarker = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2})\.(\d+)`)

// Engine executes a compiled Program as a single ffmpeg batch job.
type Engine struct {
	// FFmpegPath overrides the binary name, default "ffmpeg".
	FFmpegPath string

	// OnProgress, when set, receives the render completion percentage as
	// ffmpeg reports encode time on stderr.
	OnProgress func(percent float64)
}

// Run executes the program and blocks until ffmpeg exits. A non-zero exit is
// fatal and returned with the stderr tail; the caller decides what to do, the
// engine never retries.
func (e *Engine) Run(ctx context.Context, prog *Program) error {
	bin := e.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	args := prog.Args()
	log.Printf("[render] Starting ffmpeg batch job (%d inputs → %s)", len(prog.Inputs), prog.OutputPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("render: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("render: start ffmpeg: %w", err)
	}

	tail := e.scanProgress(stderr, prog.DurationSeconds)

	if err := cmd.Wait(); err != nil {
		// A dead encode leaves a truncated container behind. Remove it so a
		// failed run never masquerades as a rendered video.
		if rmErr := os.Remove(prog.OutputPath); rmErr == nil {
			log.Printf("[render] Removed partial output %s", prog.OutputPath)
		}
		return fmt.Errorf("render: ffmpeg failed: %w\n--- last stderr ---\n%s", err, strings.Join(tail, "\n"))
	}
	if e.OnProgress != nil {
		e.OnProgress(100)
	}
	log.Printf("[render] ✅ Rendered %s (%.2fs)", prog.OutputPath, prog.DurationSeconds)
	return nil
}

// scanProgress follows ffmpeg's stderr, emitting progress callbacks from the
// time= markers and keeping a tail of recent lines for diagnostics.
func (e *Engine) scanProgress(r interface{ Read([]byte) (int, error) }, totalSec float64) []string {
	var tail []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		tail = append(tail, line)
		if len(tail) > stderrTail {
			tail = tail[1:]
		}
		if e.OnProgress == nil || totalSec <= 0 {
			continue
		}
		if elapsed, ok := parseTimeMarker(line); ok {
			pct := elapsed / totalSec * 100
			if pct > 100 {
				pct = 100
			}
			e.OnProgress(pct)
		}
	}
	return tail
}

// parseTimeMarker extracts the encode position from an ffmpeg progress line.
func parseTimeMarker(line string) (float64, bool) {
	m := timeMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	frac, _ := strconv.ParseFloat("0."+m[4], 64)
	return float64(h)*3600 + float64(min)*60 + float64(s) + frac, true
}
