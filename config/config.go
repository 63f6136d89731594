package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Script   ScriptConfig             `yaml:"script"`
	Audio    AudioConfig              `yaml:"audio"`
	Beats    BeatsConfig              `yaml:"beats"`
	Assets   AssetsConfig             `yaml:"assets"`
	Render   RenderConfig             `yaml:"render"`
	Research ResearchConfig           `yaml:"research"`
	Upload   UploadConfig             `yaml:"upload"`
	Channels map[string]ChannelConfig `yaml:"channels"`
	Paths    PathsConfig              `yaml:"paths"`
}

type ScriptConfig struct {
	MinDurationSec  float64 `yaml:"min_duration_sec"`  // acceptance window lower bound
	MaxDurationSec  float64 `yaml:"max_duration_sec"`  // acceptance window upper bound
	MaxAttempts     int     `yaml:"max_attempts"`      // regenerate-and-measure budget
	WordsPerMinute  int     `yaml:"words_per_minute"`  // nominal narration pace
	WordBandPadding int     `yaml:"word_band_padding"` // half-width of the target word band
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	BaseURL         string  `yaml:"base_url"`
}

type AudioConfig struct {
	Voice      string `yaml:"voice"`
	TTSCommand string `yaml:"tts_command"` // overrides TTS_COMMAND env when set
}

type BeatsConfig struct {
	MinBeatSec        float64 `yaml:"min_beat_sec"`
	MaxBeatSec        float64 `yaml:"max_beat_sec"`
	ImageRatio        float64 `yaml:"image_ratio"`         // share of beats that prefer still images
	ShortBeatFraction float64 `yaml:"short_beat_fraction"` // remainder below this*min becomes one short beat
	MinVideoBeats     int     `yaml:"min_video_beats"`     // promote image beats until this many are video
}

type AssetsConfig struct {
	SearchConcurrency int    `yaml:"search_concurrency"`
	CourtesyDelayMs   int    `yaml:"courtesy_delay_ms"`
	PerQueryResults   int    `yaml:"per_query_results"`
	FallbackQuery     string `yaml:"fallback_query"`
}

type RenderConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	FPS           int     `yaml:"fps"`
	FadeSec       float64 `yaml:"fade_sec"`
	KenBurnsZoom  float64 `yaml:"ken_burns_zoom"`
	Preset        string  `yaml:"preset"`
	CRF           int     `yaml:"crf"`
	MusicVolume   float64 `yaml:"music_volume"`
	DuckThreshold float64 `yaml:"duck_threshold"`
	DuckRatio     int     `yaml:"duck_ratio"`
	DuckReleaseMs int     `yaml:"duck_release_ms"`
	FillPolicy    string  `yaml:"fill_policy"` // loop | extend-last-frame
}

type ResearchConfig struct {
	Subreddits      []string `yaml:"subreddits"`
	MaxPostsPerSub  int      `yaml:"max_posts_per_sub"`
	MinScore        int      `yaml:"min_score"`
	TopicCandidates int      `yaml:"topic_candidates"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

// ChannelConfig carries per-channel branding text, timing offsets and styling.
type ChannelConfig struct {
	Name          string       `yaml:"name"`
	Theme         string       `yaml:"theme"` // history | science | mystery | nature
	Sting         string       `yaml:"sting"`
	SoftCTA       string       `yaml:"soft_cta"`
	OutroTeaser   string       `yaml:"outro_teaser"`
	FinalCTA      string       `yaml:"final_cta"`
	StingAtSec    float64      `yaml:"sting_at_sec"`
	SoftCTAtSec   float64      `yaml:"soft_cta_at_sec"`
	StingDurSec   float64      `yaml:"sting_dur_sec"`
	SoftCTADurSec float64      `yaml:"soft_cta_dur_sec"`
	Overlay       OverlayStyle `yaml:"overlay"`
	ColorGrade    string       `yaml:"color_grade"` // warm | cold | mono | none
}

type OverlayStyle struct {
	FontSize   int     `yaml:"font_size"`
	FontColor  string  `yaml:"font_color"`
	BoxColor   string  `yaml:"box_color"`
	BoxOpacity float64 `yaml:"box_opacity"`
}

type PathsConfig struct {
	Output       string `yaml:"output"`
	AssetLibrary string `yaml:"asset_library"`
	Music        string `yaml:"music"`
}

// Load reads the yaml config and fills in defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a file on disk.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with the production defaults.
func (c *Config) ApplyDefaults() {
	if c.Script.MinDurationSec == 0 {
		c.Script.MinDurationSec = 540
	}
	if c.Script.MaxDurationSec == 0 {
		c.Script.MaxDurationSec = 720
	}
	if c.Script.MaxAttempts == 0 {
		c.Script.MaxAttempts = 3
	}
	if c.Script.WordsPerMinute == 0 {
		c.Script.WordsPerMinute = 150
	}
	if c.Script.WordBandPadding == 0 {
		c.Script.WordBandPadding = 150
	}
	if c.Script.Model == "" {
		c.Script.Model = "openai/gpt-4.1-mini"
	}
	if c.Script.Temperature == 0 {
		c.Script.Temperature = 0.7
	}
	if c.Audio.Voice == "" {
		c.Audio.Voice = "en-US-GuyNeural"
	}
	if c.Beats.MinBeatSec == 0 {
		c.Beats.MinBeatSec = 6
	}
	if c.Beats.MaxBeatSec == 0 {
		c.Beats.MaxBeatSec = 8
	}
	if c.Beats.ImageRatio == 0 {
		c.Beats.ImageRatio = 0.85
	}
	if c.Beats.ShortBeatFraction == 0 {
		c.Beats.ShortBeatFraction = 0.75
	}
	if c.Assets.SearchConcurrency == 0 {
		c.Assets.SearchConcurrency = 3
	}
	if c.Assets.CourtesyDelayMs == 0 {
		c.Assets.CourtesyDelayMs = 250
	}
	if c.Assets.PerQueryResults == 0 {
		c.Assets.PerQueryResults = 5
	}
	if c.Assets.FallbackQuery == "" {
		c.Assets.FallbackQuery = "cinematic landscape"
	}
	if c.Render.Width == 0 {
		c.Render.Width = 1920
	}
	if c.Render.Height == 0 {
		c.Render.Height = 1080
	}
	if c.Render.FPS == 0 {
		c.Render.FPS = 30
	}
	if c.Render.FadeSec == 0 {
		c.Render.FadeSec = 0.25
	}
	if c.Render.KenBurnsZoom == 0 {
		c.Render.KenBurnsZoom = 1.08
	}
	if c.Render.Preset == "" {
		c.Render.Preset = "fast"
	}
	if c.Render.CRF == 0 {
		c.Render.CRF = 22
	}
	if c.Render.MusicVolume == 0 {
		c.Render.MusicVolume = 0.25
	}
	if c.Render.DuckThreshold == 0 {
		c.Render.DuckThreshold = 0.03
	}
	if c.Render.DuckRatio == 0 {
		c.Render.DuckRatio = 8
	}
	if c.Render.DuckReleaseMs == 0 {
		c.Render.DuckReleaseMs = 300
	}
	if c.Render.FillPolicy == "" {
		c.Render.FillPolicy = "loop"
	}
	if c.Research.MaxPostsPerSub == 0 {
		c.Research.MaxPostsPerSub = 25
	}
	if c.Research.TopicCandidates == 0 {
		c.Research.TopicCandidates = 10
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "private"
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "27" // Education
	}
	if c.Upload.DefaultLanguage == "" {
		c.Upload.DefaultLanguage = "en"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.AssetLibrary == "" {
		c.Paths.AssetLibrary = "assets/library.json"
	}
	if c.Channels == nil {
		c.Channels = map[string]ChannelConfig{}
	}
	for id, ch := range c.Channels {
		if ch.StingAtSec == 0 {
			ch.StingAtSec = 20
		}
		if ch.SoftCTAtSec == 0 {
			ch.SoftCTAtSec = 90
		}
		if ch.StingDurSec == 0 {
			ch.StingDurSec = 4
		}
		if ch.SoftCTADurSec == 0 {
			ch.SoftCTADurSec = 5
		}
		if ch.Overlay.FontSize == 0 {
			ch.Overlay.FontSize = 42
		}
		if ch.Overlay.FontColor == "" {
			ch.Overlay.FontColor = "white"
		}
		if ch.Overlay.BoxColor == "" {
			ch.Overlay.BoxColor = "black"
		}
		if ch.Overlay.BoxOpacity == 0 {
			ch.Overlay.BoxOpacity = 0.55
		}
		c.Channels[id] = ch
	}
}

// Channel returns the channel config for id, or a usable zero-branding
// default so a missing channel never breaks generation.
func (c *Config) Channel(id string) ChannelConfig {
	if ch, ok := c.Channels[id]; ok {
		return ch
	}
	ch := ChannelConfig{Name: id, Theme: "history"}
	tmp := &Config{Channels: map[string]ChannelConfig{id: ch}}
	tmp.ApplyDefaults()
	return tmp.Channels[id]
}
