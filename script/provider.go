// Package script generates documentary scripts through an OpenAI-compatible
// chat endpoint. The provider is mode-aware: the contract resolver asks for
// "expand" or "compress" rewrites when the synthesized narration misses the
// duration window.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// Provider is the script/LLM collaborator contract.
type Provider interface {
	Generate(ctx context.Context, channel config.ChannelConfig, topic string, mode types.GenerationMode, minWords, maxWords int) (*types.Script, error)
}

const systemPrompt = `You are a scriptwriter for narrated short-documentary YouTube channels.
You write tight, factual, cinematic scripts with a strong hook.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation.

The JSON must have exactly these fields:
- "title": string
- "hook": string (2-4 sentences, the single most surprising fact first)
- "sections": array of section objects, in narrative order
- "conclusion": string (2-4 sentences, resolves the story)

Each section object must have:
- "narration_text": the exact words to be spoken
- "base_query": a 2-4 word stock-footage search query for this section
- "transition_hint": one of "cut" | "fade" | "zoom"
- "is_micro_hook": true if the section opens a new tension loop
- "content_type": one of "hook" | "exposition" | "reveal" | "tension" | "climax" | "conclusion"
- "emotional_tone": one of "tense" | "eerie" | "triumphant" | "somber" | "neutral"
- "target_duration_sec": your rough estimate in seconds (advisory only)`

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
	temp   float64
}

func NewOpenAIProvider(apiKey string, cfg config.ScriptConfig) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		temp:   cfg.Temperature,
	}
}

type scriptJSON struct {
	Title      string        `json:"title"`
	Hook       string        `json:"hook"`
	Sections   []sectionJSON `json:"sections"`
	Conclusion string        `json:"conclusion"`
}

type sectionJSON struct {
	NarrationText  string  `json:"narration_text"`
	BaseQuery      string  `json:"base_query"`
	TransitionHint string  `json:"transition_hint"`
	IsMicroHook    bool    `json:"is_micro_hook"`
	ContentType    string  `json:"content_type"`
	EmotionalTone  string  `json:"emotional_tone"`
	TargetDurSec   float64 `json:"target_duration_sec"`
}

// Generate produces a fresh script for topic. Each call regenerates the whole
// script — scripts are never patched in place between attempts.
func (p *OpenAIProvider) Generate(ctx context.Context, channel config.ChannelConfig, topic string, mode types.GenerationMode, minWords, maxWords int) (*types.Script, error) {
	log.Printf("[script] Generating script (mode: %s, %d-%d words)...", mode, minWords, maxWords)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(channel, topic, mode, minWords, maxWords)),
		},
		Model:       p.model,
		Temperature: openai.Float(p.temp),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	content := cleanJSON(resp.Choices[0].Message.Content)
	var raw scriptJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w\nraw: %.200s", err, content)
	}
	sc := convert(raw)
	if err := validate(sc); err != nil {
		return nil, err
	}
	log.Printf("[script] ✅ Script ready: %q, %d sections", sc.Title, len(sc.Sections))
	return sc, nil
}

func buildUserPrompt(channel config.ChannelConfig, topic string, mode types.GenerationMode, minWords, maxWords int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a short-documentary script about: %s\n", topic))
	sb.WriteString(fmt.Sprintf("Channel: %s (theme: %s)\n", channel.Name, channel.Theme))
	sb.WriteString(fmt.Sprintf("Total narration length: %d-%d words.\n", minWords, maxWords))
	switch mode {
	case types.ModeExpand:
		sb.WriteString("The previous draft read too short when narrated. Add depth: more sections, more concrete detail. Stay inside the word range.\n")
	case types.ModeCompress:
		sb.WriteString("The previous draft read too long when narrated. Cut ruthlessly: fewer sections, no filler. Stay inside the word range.\n")
	}
	sb.WriteString("Respond ONLY with valid JSON. No markdown. No explanation.")
	return sb.String()
}

func convert(raw scriptJSON) *types.Script {
	sc := &types.Script{
		Title:      raw.Title,
		Hook:       raw.Hook,
		Conclusion: raw.Conclusion,
	}
	for _, s := range raw.Sections {
		sc.Sections = append(sc.Sections, types.Section{
			NarrationText:         s.NarrationText,
			BaseQuery:             s.BaseQuery,
			TransitionHint:        s.TransitionHint,
			IsMicroHook:           s.IsMicroHook,
			ContentType:           types.ContentType(s.ContentType),
			EmotionalTone:         s.EmotionalTone,
			TargetDurationSeconds: s.TargetDurSec,
		})
	}
	return sc
}

func validate(sc *types.Script) error {
	if strings.TrimSpace(sc.Hook) == "" {
		return fmt.Errorf("script has empty hook")
	}
	if len(sc.Sections) == 0 {
		return fmt.Errorf("script has no sections")
	}
	for i, s := range sc.Sections {
		if strings.TrimSpace(s.NarrationText) == "" {
			return fmt.Errorf("section %d has empty narration", i)
		}
		if strings.TrimSpace(s.BaseQuery) == "" {
			return fmt.Errorf("section %d has empty base query", i)
		}
	}
	return nil
}

// cleanJSON strips markdown fences if the model wraps its response.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
