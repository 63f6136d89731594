package audio

import (
	"context"
	"strings"
	"testing"
)

func TestBuildCmdVariants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	edge := &CommandSynthesizer{command: "edge-tts"}
	args := strings.Join(edge.buildCmd(ctx, "hello", "en-US-GuyNeural", "/out.mp3").Args, " ")
	for _, want := range []string{"edge-tts", "--voice en-US-GuyNeural", "--write-media /out.mp3"} {
		if !strings.Contains(args, want) {
			t.Errorf("edge-tts args missing %q: %s", want, args)
		}
	}

	py := &CommandSynthesizer{command: "scripts/speak.py"}
	args = strings.Join(py.buildCmd(ctx, "hello", "v", "/out.mp3").Args, " ")
	if !strings.HasPrefix(args, "python3 scripts/speak.py") {
		t.Errorf("python script not run through python3: %s", args)
	}

	custom := &CommandSynthesizer{command: "/usr/local/bin/my-tts"}
	args = strings.Join(custom.buildCmd(ctx, "hello", "v", "/out.mp3").Args, " ")
	if !strings.Contains(args, "--text hello") || !strings.Contains(args, "--output /out.mp3") {
		t.Errorf("custom command contract broken: %s", args)
	}
}

func TestNewCommandSynthesizerExplicitCommand(t *testing.T) {
	s, err := NewCommandSynthesizer("  /opt/tts  ")
	if err != nil {
		t.Fatal(err)
	}
	if s.command != "/opt/tts" {
		t.Errorf("command = %q, want trimmed path", s.command)
	}
}
