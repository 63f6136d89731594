// Package audio synthesizes the narration track. The whole interleaved
// narration (hook, branding beats, sections, conclusion) is synthesized as a
// single file so brand utterances land at the right relative position without
// any audio splicing.
package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Synthesizer is the speech-synthesis collaborator contract. Failure is a
// hard error — no silent empty-audio fallback lives in the core.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outputPath string) error
}

// CommandSynthesizer shells out to a TTS binary. Set TTS_COMMAND (or the
// audio.tts_command config key) to a command accepting:
//
//	--text "..." --output path/to/file.mp3
//
// When unset it falls back to edge-tts if installed.
type CommandSynthesizer struct {
	command string
}

func NewCommandSynthesizer(command string) (*CommandSynthesizer, error) {
	if command == "" {
		command = os.Getenv("TTS_COMMAND")
	}
	if command == "" {
		if _, err := exec.LookPath("edge-tts"); err == nil {
			command = "edge-tts"
			log.Println("[audio] Using edge-tts as TTS engine (fallback)")
		} else {
			return nil, fmt.Errorf("no TTS engine found: set TTS_COMMAND or install edge-tts")
		}
	}
	return &CommandSynthesizer{command: strings.TrimSpace(command)}, nil
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	log.Printf("[audio] Synthesizing narration (%d words) → %s", len(strings.Fields(text)), outputPath)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := s.buildCmd(ctx, text, voice, outputPath)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		log.Printf("[audio] TTS attempt %d failed: %v — retrying...", attempt, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return fmt.Errorf("tts failed after 3 attempts: %w", lastErr)
}

func (s *CommandSynthesizer) buildCmd(ctx context.Context, text, voice, outputPath string) *exec.Cmd {
	switch {
	case s.command == "edge-tts":
		return exec.CommandContext(ctx, "edge-tts",
			"--voice", voice,
			"--text", text,
			"--write-media", outputPath,
		)
	case strings.HasSuffix(s.command, ".py"):
		return exec.CommandContext(ctx, "python3", s.command,
			"--text", text,
			"--output", outputPath,
		)
	default:
		return exec.CommandContext(ctx, s.command,
			"--text", text,
			"--output", outputPath,
		)
	}
}
