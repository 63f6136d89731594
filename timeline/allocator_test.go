package timeline

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

func testScript() *types.Script {
	return &types.Script{
		Title: "The Lost Expedition",
		Hook:  "In 1911 an entire expedition vanished without a trace.",
		Sections: []types.Section{
			{
				NarrationText:  strings.Repeat("The crew set out across the ice under a pale winter sun. ", 20),
				BaseQuery:      "arctic expedition",
				TransitionHint: "cut",
				ContentType:    types.ContentExposition,
				EmotionalTone:  "neutral",
			},
			{
				NarrationText:  strings.Repeat("Then the radio went silent and the search began. ", 25),
				BaseQuery:      "snowstorm mountains",
				TransitionHint: "fade",
				ContentType:    types.ContentTension,
				EmotionalTone:  "tense",
			},
			{
				NarrationText:  strings.Repeat("What they found rewrote the official account entirely. ", 15),
				BaseQuery:      "old documents archive",
				TransitionHint: "zoom",
				ContentType:    types.ContentReveal,
				EmotionalTone:  "eerie",
			},
		},
		Conclusion: "Some questions stay frozen where they were asked.",
	}
}

func testChannel() config.ChannelConfig {
	return config.ChannelConfig{
		Name:        "Frozen Files",
		Theme:       "history",
		Sting:       "You are watching Frozen Files.",
		SoftCTA:     "Subscribe for a new story every week.",
		OutroTeaser: "Next week: the lighthouse that logged its own keeper missing.",
		FinalCTA:    "Like and subscribe to keep the archive open.",
	}
}

func testParams() Params {
	return Params{
		MinBeatSec:        6,
		MaxBeatSec:        8,
		ImageRatio:        0.85,
		ShortBeatFraction: 0.75,
	}
}

func TestAllocateIsDeterministic(t *testing.T) {
	t.Parallel()
	sc := testScript()
	ch := testChannel()

	a, err := Allocate(sc, ch, "ch1", "lost expedition", 612.4, testParams())
	if err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	b, err := Allocate(sc, ch, "ch1", "lost expedition", 612.4, testParams())
	if err != nil {
		t.Fatalf("second allocation: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different timelines")
	}

	c, err := Allocate(sc, ch, "ch2", "lost expedition", 612.4, testParams())
	if err != nil {
		t.Fatalf("third allocation: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Fatal("different channel produced an identical timeline, seed not applied")
	}
}

func TestAllocateCoversNarration(t *testing.T) {
	t.Parallel()
	for _, narration := range []float64{540, 612.4, 719.97} {
		tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", narration, testParams())
		if err != nil {
			t.Fatalf("allocate %.2f: %v", narration, err)
		}
		if tl.TotalSeconds() < narration-types.SumEpsilon {
			t.Errorf("narration %.2fs: timeline sums to %.2fs, undershoots", narration, tl.TotalSeconds())
		}
	}
}

func TestAllocateBeatDurationsInRange(t *testing.T) {
	t.Parallel()
	p := testParams()
	tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, p)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range tl.Beats {
		if b.TargetDurationSeconds <= 0 {
			t.Fatalf("beat %d has non-positive duration %.3f", i, b.TargetDurationSeconds)
		}
		// The last beat absorbs rounding surplus and short remainders are
		// allowed below the minimum, so only the hard ceiling plus the short
		// remainder floor are checked here.
		if i < len(tl.Beats)-1 && b.TargetDurationSeconds > p.MaxBeatSec+p.ShortBeatFraction*p.MinBeatSec {
			t.Errorf("beat %d duration %.2fs exceeds plausible ceiling", i, b.TargetDurationSeconds)
		}
	}
}

func TestAllocateBrandingBeatsForceImages(t *testing.T) {
	t.Parallel()
	tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, testParams())
	if err != nil {
		t.Fatal(err)
	}
	brandPrefixes := []string{"sting", "soft-cta", "outro-teaser", "final-cta"}
	found := 0
	for _, b := range tl.Beats {
		for _, prefix := range brandPrefixes {
			if strings.HasPrefix(b.Label, prefix+"-b") {
				found++
				if b.PreferredType != types.MediaImage {
					t.Errorf("branding beat %q is %s, want image", b.Label, b.PreferredType)
				}
			}
		}
	}
	if found == 0 {
		t.Fatal("no branding beats in timeline despite channel branding text")
	}
}

func TestAllocateBrandingOrder(t *testing.T) {
	t.Parallel()
	tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, testParams())
	if err != nil {
		t.Fatal(err)
	}

	firstOf := func(prefix string) int {
		for i, b := range tl.Beats {
			if strings.HasPrefix(b.Label, prefix) {
				return i
			}
		}
		t.Fatalf("no beat with prefix %q", prefix)
		return -1
	}

	order := []string{"hook-b", "sting-b", "section-01-b", "soft-cta-b", "section-02-b", "conclusion-b", "outro-teaser-b", "final-cta-b"}
	prev := -1
	for _, prefix := range order {
		idx := firstOf(prefix)
		if idx <= prev {
			t.Fatalf("segment %q starts at beat %d, before its predecessor at %d", prefix, idx, prev)
		}
		prev = idx
	}
}

func TestAllocateMinVideoBeatsPromotion(t *testing.T) {
	t.Parallel()
	p := testParams()
	p.ImageRatio = 1.0 // force everything to start as image
	p.MinVideoBeats = 10

	tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, p)
	if err != nil {
		t.Fatal(err)
	}

	videos := 0
	for i, b := range tl.Beats {
		if b.PreferredType == types.MediaVideo {
			videos++
			// Promotion must never touch branding beats.
			for _, prefix := range []string{"sting-b", "soft-cta-b", "outro-teaser-b", "final-cta-b"} {
				if strings.HasPrefix(b.Label, prefix) {
					t.Errorf("promoted branding beat %d %q to video", i, b.Label)
				}
			}
		}
	}
	if videos != 10 {
		t.Fatalf("got %d video beats, want 10 promoted", videos)
	}
}

func TestAllocateMinVideoBeatsCapsAtPool(t *testing.T) {
	t.Parallel()
	p := testParams()
	p.ImageRatio = 1.0
	p.MinVideoBeats = 10000 // far beyond the number of beats

	tl, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, p)
	if err != nil {
		t.Fatal(err)
	}
	videos, brandBeats := 0, 0
	for _, b := range tl.Beats {
		if b.PreferredType == types.MediaVideo {
			videos++
		}
		for _, prefix := range []string{"sting-b", "soft-cta-b", "outro-teaser-b", "final-cta-b"} {
			if strings.HasPrefix(b.Label, prefix) {
				brandBeats++
			}
		}
	}
	if videos != len(tl.Beats)-brandBeats {
		t.Fatalf("got %d videos, want the whole unforced pool (%d)", videos, len(tl.Beats)-brandBeats)
	}
}

func TestAllocateRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := Allocate(testScript(), testChannel(), "ch1", "topic", 0, testParams()); err == nil {
		t.Error("zero narration duration accepted")
	}
	if _, err := Allocate(testScript(), testChannel(), "ch1", "topic", -5, testParams()); err == nil {
		t.Error("negative narration duration accepted")
	}
	bad := testParams()
	bad.MaxBeatSec = 1 // below min
	if _, err := Allocate(testScript(), testChannel(), "ch1", "topic", 600, bad); err == nil {
		t.Error("inverted beat range accepted")
	}
}
