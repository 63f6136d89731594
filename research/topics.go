// Package research suggests video topics by mining subreddit front pages for
// stories with strong narrative hooks.
package research

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/Toulouse790/ChrisStudio-sub000/config"
)

// hookKeywords boost a candidate's score when present
var hookKeywords = []string{
	"mystery", "unsolved", "lost", "forgotten", "discovered",
	"ancient", "secret", "revealed", "vanished", "hidden",
	"shocking", "rise and fall", "last", "first", "untold",
}

// Topic is one suggested video subject.
type Topic struct {
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	SourceURL string `json:"source_url"`
	Score     int    `json:"score"`
}

// Suggester finds topic candidates on Reddit.
type Suggester struct {
	cfg    config.ResearchConfig
	client *reddit.Client
}

// New builds a Suggester. Reddit credentials come from the environment; when
// absent the read-only client is used, which is enough for public listings.
func New(cfg config.ResearchConfig) (*Suggester, error) {
	var (
		client *reddit.Client
		err    error
	)
	id, secret := os.Getenv("REDDIT_CLIENT_ID"), os.Getenv("REDDIT_CLIENT_SECRET")
	if id != "" && secret != "" {
		client, err = reddit.NewClient(reddit.Credentials{
			ID:       id,
			Secret:   secret,
			Username: os.Getenv("REDDIT_USERNAME"),
			Password: os.Getenv("REDDIT_PASSWORD"),
		})
	} else {
		client, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, fmt.Errorf("research: reddit client: %w", err)
	}
	return &Suggester{cfg: cfg, client: client}, nil
}

// Run fetches, filters and scores posts across the configured subreddits and
// returns the top candidates, best first.
func (s *Suggester) Run(ctx context.Context) ([]Topic, error) {
	log.Println("[research] Scanning subreddits for topic candidates...")

	var candidates []Topic
	for _, sub := range s.cfg.Subreddits {
		posts, _, err := s.client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{
			Limit: s.cfg.MaxPostsPerSub,
		})
		if err != nil {
			log.Printf("[research] r/%s warning: %v", sub, err)
			continue
		}
		for _, post := range posts {
			if post.Score < s.cfg.MinScore {
				continue
			}
			candidates = append(candidates, Topic{
				Title:     post.Title,
				Subreddit: sub,
				SourceURL: "https://reddit.com" + post.Permalink,
				Score:     scoreTopic(post),
			})
		}
		log.Printf("[research] r/%s: %d posts considered", sub, len(posts))
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no topic candidates found")
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > s.cfg.TopicCandidates {
		candidates = candidates[:s.cfg.TopicCandidates]
	}
	log.Printf("[research] ✅ %d topic candidates, best: %q", len(candidates), candidates[0].Title)
	return candidates, nil
}

func scoreTopic(post *reddit.Post) int {
	score := post.Score
	lower := strings.ToLower(post.Title + " " + post.Body)
	for _, kw := range hookKeywords {
		if strings.Contains(lower, kw) {
			score += 50
		}
	}
	if post.NumberOfComments > 100 {
		score += 100
	}
	if len(post.Body) > 500 {
		score += 75
	}
	return score
}
