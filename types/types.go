package types

// GenerationMode steers the script provider when narration comes back outside
// the duration window.
type GenerationMode string

const (
	ModeNormal   GenerationMode = "normal"
	ModeExpand   GenerationMode = "expand"
	ModeCompress GenerationMode = "compress"
)

// ContentType classifies what a section is doing narratively.
type ContentType string

const (
	ContentHook       ContentType = "hook"
	ContentExposition ContentType = "exposition"
	ContentReveal     ContentType = "reveal"
	ContentTension    ContentType = "tension"
	ContentClimax     ContentType = "climax"
	ContentConclusion ContentType = "conclusion"
)

// Section is one narrative unit of a script.
// TargetDurationSeconds is advisory weighting input only — real allotment is
// derived from word count against the measured narration duration.
type Section struct {
	NarrationText         string      `json:"narration_text"`
	BaseQuery             string      `json:"base_query"`
	TransitionHint        string      `json:"transition_hint"` // cut | fade | zoom
	IsMicroHook           bool        `json:"is_micro_hook"`
	ContentType           ContentType `json:"content_type"`
	EmotionalTone         string      `json:"emotional_tone"` // tense | eerie | triumphant | somber | neutral
	TargetDurationSeconds float64     `json:"target_duration_sec"`
}

// Script is the full generated script for one video. It is immutable once
// produced: the contract resolver regenerates it wholesale on every attempt.
type Script struct {
	Title           string    `json:"title"`
	Hook            string    `json:"hook"`
	Sections        []Section `json:"sections"`
	Conclusion      string    `json:"conclusion"`
	DurationSeconds float64   `json:"duration_sec"` // measured, never estimated
}

// NarrationTrack is a synthesized narration file with its probed duration.
// DurationSeconds is the single source of truth for total video length.
type NarrationTrack struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_sec"`
}

// MediaType is a beat's preferred asset kind.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Beat is one atomic visual shot slot in the timeline.
type Beat struct {
	Label                 string    `json:"label"`
	PreferredType         MediaType `json:"preferred_type"`
	TargetDurationSeconds float64   `json:"target_duration_sec"`
	Transition            string    `json:"transition"`
	SearchQuery           string    `json:"search_query"`
	ChannelID             string    `json:"channel_id,omitempty"`

	// Carried from the owning segment so the render step can pick effects.
	ContentType   ContentType `json:"content_type,omitempty"`
	EmotionalTone string      `json:"emotional_tone,omitempty"`
}

// Timeline is the ordered beat sequence for one video.
// Invariant: sum of target durations never undershoots narration duration
// by more than SumEpsilon after the allocator's padding pass.
type Timeline struct {
	Beats []Beat `json:"beats"`
}

// SumEpsilon is the tolerance used when comparing the timeline's total target
// duration against the measured narration duration.
const SumEpsilon = 0.05

// TotalSeconds returns the summed target duration of all beats.
func (t Timeline) TotalSeconds() float64 {
	var sum float64
	for _, b := range t.Beats {
		sum += b.TargetDurationSeconds
	}
	return sum
}

// ResolvedBeat is a Beat bound to a concrete local media file.
type ResolvedBeat struct {
	Beat
	LocalPath             string  `json:"local_path"`
	SourceDurationSeconds float64 `json:"source_duration_sec,omitempty"` // video only, 0 if unprobeable
	IsShort               bool    `json:"is_short"`
}

// FillPolicy picks how a short video clip is stretched to its slot.
type FillPolicy string

const (
	FillLoop   FillPolicy = "loop"              // frame-loop then trim (default)
	FillExtend FillPolicy = "extend-last-frame" // play once, clone final frame
)

// BrandingKind names a branding overlay window.
type BrandingKind string

const (
	BrandSting    BrandingKind = "sting"
	BrandSoftCTA  BrandingKind = "softCta"
	BrandFinalCTA BrandingKind = "finalCta"
)

// BrandingWindow is a time-windowed text overlay on the final visual stream.
// The finalCta window is always anchored to the last 10 seconds of narration.
type BrandingWindow struct {
	Kind            BrandingKind `json:"kind"`
	StartSeconds    float64      `json:"start_sec"`
	DurationSeconds float64      `json:"duration_sec"`
	Text            string       `json:"text"`
}

// EndSeconds is the window's absolute end time.
func (w BrandingWindow) EndSeconds() float64 {
	return w.StartSeconds + w.DurationSeconds
}

// ProjectArtifacts are the files one generation job leaves behind for the
// surrounding application, all addressed by the shared project id.
type ProjectArtifacts struct {
	ProjectID     string  `json:"project_id"`
	ScriptPath    string  `json:"script_path"`
	NarrationPath string  `json:"narration_path"`
	VideoPath     string  `json:"video_path"`
	DurationSec   float64 `json:"duration_sec"`
}
