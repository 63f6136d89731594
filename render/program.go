// Package render compiles a resolved beat timeline into a declarative render
// graph and drives ffmpeg through it as one batch job. The graph is the
// single place where the visual stream is trimmed to the measured narration
// duration — the one hard synchronization point of the whole pipeline.
package render

import (
	"fmt"
	"strings"
)

// Statement is one transform in the render graph: named input streams, a
// filter chain, named output streams.
type Statement struct {
	Inputs  []string
	Filter  string
	Outputs []string
}

func (s Statement) String() string {
	var sb strings.Builder
	for _, in := range s.Inputs {
		sb.WriteString("[" + in + "]")
	}
	sb.WriteString(s.Filter)
	for _, out := range s.Outputs {
		sb.WriteString("[" + out + "]")
	}
	return sb.String()
}

// EncodeOptions are the output encoding parameters for the batch job.
type EncodeOptions struct {
	Preset string
	CRF    int
	FPS    int
}

// Program is a compiled render-graph: input files, ordered transform
// statements, the final stream labels, and output encoding. Programs are
// built fresh per render and discarded once the engine consumed them.
type Program struct {
	Inputs          []string
	Statements      []Statement
	VideoOut        string
	AudioOut        string
	OutputPath      string
	DurationSeconds float64
	Encode          EncodeOptions
}

// FilterComplex renders the statement list as one ffmpeg filter graph.
func (p *Program) FilterComplex() string {
	parts := make([]string, 0, len(p.Statements))
	for _, st := range p.Statements {
		parts = append(parts, st.String())
	}
	return strings.Join(parts, ";")
}

// Args assembles the full ffmpeg argument list for the batch invocation.
func (p *Program) Args() []string {
	args := []string{"-y", "-hide_banner"}
	for _, in := range p.Inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", p.FilterComplex(),
		"-map", "["+p.VideoOut+"]",
		"-map", "["+p.AudioOut+"]",
		"-c:v", "libx264",
		"-preset", p.Encode.Preset,
		"-crf", fmt.Sprintf("%d", p.Encode.CRF),
		"-r", fmt.Sprintf("%d", p.Encode.FPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", fmt.Sprintf("%.3f", p.DurationSeconds),
		"-movflags", "+faststart",
		p.OutputPath,
	)
	return args
}
