package timeline

import (
	"strings"
	"testing"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

func TestSegmentsInterleaveOrder(t *testing.T) {
	t.Parallel()
	sc := &types.Script{
		Title: "t",
		Hook:  "hook text",
		Sections: []types.Section{
			{NarrationText: "one", BaseQuery: "q1"},
			{NarrationText: "two", BaseQuery: "q2"},
			{NarrationText: "three", BaseQuery: "q3"},
		},
		Conclusion: "the end",
	}
	ch := config.ChannelConfig{
		Theme:       "mystery",
		Sting:       "sting",
		SoftCTA:     "soft",
		OutroTeaser: "teaser",
		FinalCTA:    "final",
	}

	segs := Segments(sc, ch)
	var labels []string
	for _, s := range segs {
		labels = append(labels, s.Label)
	}
	want := []string{"hook", "sting", "section-01", "soft-cta", "section-02", "section-03", "conclusion", "outro-teaser", "final-cta"}
	if strings.Join(labels, ",") != strings.Join(want, ",") {
		t.Fatalf("segment order %v, want %v", labels, want)
	}

	for _, s := range segs {
		switch s.Label {
		case "sting", "soft-cta", "outro-teaser", "final-cta":
			if !s.ForceImage {
				t.Errorf("branding segment %q does not force images", s.Label)
			}
		default:
			if s.ForceImage {
				t.Errorf("content segment %q forces images", s.Label)
			}
		}
	}
}

func TestSegmentsSkipUnsetBranding(t *testing.T) {
	t.Parallel()
	sc := &types.Script{
		Hook:       "hook",
		Sections:   []types.Section{{NarrationText: "one", BaseQuery: "q1"}},
		Conclusion: "done",
	}
	segs := Segments(sc, config.ChannelConfig{Theme: "history"})
	for _, s := range segs {
		if s.ForceImage {
			t.Fatalf("unexpected branding segment %q for unbranded channel", s.Label)
		}
	}
	if len(segs) != 3 { // hook, section, conclusion
		t.Fatalf("got %d segments, want 3", len(segs))
	}
}

func TestNarrationTextMatchesSegmentOrder(t *testing.T) {
	t.Parallel()
	sc := &types.Script{
		Hook:       "First words.",
		Sections:   []types.Section{{NarrationText: "Middle words.", BaseQuery: "q"}},
		Conclusion: "Last words.",
	}
	ch := config.ChannelConfig{Theme: "history", Sting: "Brand line."}

	segs := Segments(sc, ch)
	text := NarrationText(segs)

	// The sting is spoken between the hook and the first section, exactly
	// where its visual segment sits.
	hookAt := strings.Index(text, "First words.")
	stingAt := strings.Index(text, "Brand line.")
	sectionAt := strings.Index(text, "Middle words.")
	if hookAt == -1 || stingAt == -1 || sectionAt == -1 {
		t.Fatalf("narration text missing pieces: %q", text)
	}
	if !(hookAt < stingAt && stingAt < sectionAt) {
		t.Fatalf("narration order broken: hook=%d sting=%d section=%d", hookAt, stingAt, sectionAt)
	}
}
