// Package timeline converts an accepted script plus a measured narration
// duration into the ordered beat sequence the render step consumes.
package timeline

import (
	"fmt"
	"strings"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// Segment is one narrative stretch of the video: the hook, a section, or an
// interleaved branding beat. The segment order here is the one source of
// truth for how branding text is woven into the narration, so spoken brand
// beats and their visual segments stay aligned in time.
type Segment struct {
	Label         string
	Text          string
	BaseQuery     string
	Transition    string
	ContentType   types.ContentType
	EmotionalTone string

	// Branding segments force still images so overlay text never fights
	// unpredictable stock footage.
	ForceImage bool
}

// Segments expands a script into the narration/visual segment order:
// hook → sting → section 1 → soft CTA → remaining sections → conclusion →
// outro teaser → final CTA. Branding segments are present only when the
// channel defines their text.
func Segments(sc *types.Script, ch config.ChannelConfig) []Segment {
	brandQuery := brandingQuery(ch.Theme)
	firstQuery := brandQuery
	lastQuery := brandQuery
	if len(sc.Sections) > 0 {
		firstQuery = sc.Sections[0].BaseQuery
		lastQuery = sc.Sections[len(sc.Sections)-1].BaseQuery
	}

	segs := []Segment{{
		Label:         "hook",
		Text:          sc.Hook,
		BaseQuery:     firstQuery,
		Transition:    "cut",
		ContentType:   types.ContentHook,
		EmotionalTone: "tense",
	}}

	if ch.Sting != "" {
		segs = append(segs, brandingSegment("sting", ch.Sting, brandQuery))
	}

	for i, sec := range sc.Sections {
		segs = append(segs, Segment{
			Label:         fmt.Sprintf("section-%02d", i+1),
			Text:          sec.NarrationText,
			BaseQuery:     sec.BaseQuery,
			Transition:    sec.TransitionHint,
			ContentType:   sec.ContentType,
			EmotionalTone: sec.EmotionalTone,
		})
		if i == 0 && ch.SoftCTA != "" {
			segs = append(segs, brandingSegment("soft-cta", ch.SoftCTA, brandQuery))
		}
	}

	segs = append(segs, Segment{
		Label:         "conclusion",
		Text:          sc.Conclusion,
		BaseQuery:     lastQuery,
		Transition:    "fade",
		ContentType:   types.ContentConclusion,
		EmotionalTone: "somber",
	})

	if ch.OutroTeaser != "" {
		segs = append(segs, brandingSegment("outro-teaser", ch.OutroTeaser, brandQuery))
	}
	if ch.FinalCTA != "" {
		segs = append(segs, brandingSegment("final-cta", ch.FinalCTA, brandQuery))
	}
	return segs
}

func brandingSegment(label, text, query string) Segment {
	return Segment{
		Label:         label,
		Text:          text,
		BaseQuery:     query,
		Transition:    "fade",
		ContentType:   types.ContentExposition,
		EmotionalTone: "neutral",
		ForceImage:    true,
	}
}

func brandingQuery(theme string) string {
	if theme == "" {
		theme = "cinematic"
	}
	return theme + " abstract background"
}

// NarrationText joins segment texts into the single narration script handed
// to speech synthesis. Using the same segment order for both the narration
// and the visual timeline keeps brand beats audible and visible at the same
// relative position.
func NarrationText(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
