// Package upload pushes a rendered video to YouTube through the Data API v3.
package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
)

// Metadata describes the video listing.
type Metadata struct {
	Title       string
	Description string
	Tags        []string

	// ScheduledTimeUTC, RFC3339, schedules a public premiere. The video is
	// uploaded private and flips public at that time.
	ScheduledTimeUTC string
}

// Uploader wraps the YouTube Data API for resumable uploads.
type Uploader struct {
	cfg config.UploadConfig
}

func New(cfg config.UploadConfig) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the file and returns the video id and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, meta Metadata) (string, string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	client, err := oauthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           u.cfg.CategoryID,
			DefaultLanguage:      u.cfg.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Visibility,
			SelfDeclaredMadeForKids: u.cfg.MadeForKids,
		},
	}
	if meta.ScheduledTimeUTC != "" {
		video.Status.PrivacyStatus = "private" // must be private to schedule
		video.Status.PublishAt = meta.ScheduledTimeUTC
		log.Printf("[upload] Scheduled for %s UTC", meta.ScheduledTimeUTC)
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, _ := f.Stat()
	log.Printf("[upload] Uploading %q (%.1f MB)", meta.Title, float64(fi.Size())/1024/1024)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.NotifySubscribers(u.cfg.NotifySubscribers)
	call.Media(f)
	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	log.Printf("[upload] ✅ Uploaded: %s", videoURL)
	return uploaded.Id, videoURL, nil
}

// oauthClient builds an HTTP client from env refresh-token credentials.
func oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)},
	}, nil
}
