package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
	"github.com/Toulouse790/ChrisStudio-sub000/pipeline"
	"github.com/Toulouse790/ChrisStudio-sub000/research"
	"github.com/Toulouse790/ChrisStudio-sub000/upload"
)

var (
	flagConfig    string
	flagChannel   string
	flagTopic     string
	flagMusic     string
	flagOut       string
	flagUpload    bool
	flagMinVideos int
	flagFill      string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "compositor",
		Short:         "Audio-synchronized timeline compositor for narrated videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config.yaml", "path to yaml config")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate one video: script, narration, beat timeline, assets, render",
		RunE:  runGenerate,
	}
	generate.Flags().StringVarP(&flagTopic, "topic", "t", "", "video topic (required)")
	generate.Flags().StringVar(&flagChannel, "channel", "default", "channel id for branding and theme")
	generate.Flags().StringVarP(&flagMusic, "music", "m", "", "background music file (optional)")
	generate.Flags().StringVarP(&flagOut, "out", "o", "", "output directory override")
	generate.Flags().BoolVar(&flagUpload, "upload", false, "upload the rendered video to YouTube")
	generate.Flags().IntVar(&flagMinVideos, "min-video-clips", 0, "minimum number of video beats (0 keeps the config value)")
	generate.Flags().StringVar(&flagFill, "fill", "", "short-clip fill policy: loop | extend-last-frame")
	_ = generate.MarkFlagRequired("topic")

	topics := &cobra.Command{
		Use:   "topics",
		Short: "Suggest video topics from the configured subreddits",
		RunE:  runTopics,
	}

	root.AddCommand(generate, topics)
	if err := root.Execute(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(flagConfig); os.IsNotExist(err) {
		log.Printf("[config] %s not found, using defaults", flagConfig)
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagOut != "" {
		cfg.Paths.Output = flagOut
	}
	if flagMusic == "" {
		flagMusic = cfg.Paths.Music
	}
	if flagMinVideos > 0 {
		cfg.Beats.MinVideoBeats = flagMinVideos
	}
	if flagFill != "" {
		cfg.Render.FillPolicy = flagFill
	}

	p, err := pipeline.New(cfg, pipeline.Options{
		OnRenderProgress: func(pct float64) {
			fmt.Printf("\r[render] %.0f%%", pct)
			if pct >= 100 {
				fmt.Println()
			}
		},
	})
	if err != nil {
		return err
	}

	artifacts, err := p.Run(cmd.Context(), pipeline.Request{
		ChannelID: flagChannel,
		Topic:     flagTopic,
		MusicPath: flagMusic,
	})
	if err != nil {
		return err
	}

	if flagUpload {
		uploader := upload.New(cfg.Upload)
		_, url, err := uploader.Run(cmd.Context(), artifacts.VideoPath, upload.Metadata{
			Title:       flagTopic,
			Description: fmt.Sprintf("Generated on channel %s", flagChannel),
		})
		if err != nil {
			return err
		}
		fmt.Println(url)
	}

	fmt.Println(artifacts.VideoPath)
	return nil
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := research.New(cfg.Research)
	if err != nil {
		return err
	}
	topics, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}
	for _, t := range topics {
		fmt.Printf("%6d  r/%-20s %s\n", t.Score, t.Subreddit, t.Title)
	}
	return nil
}
