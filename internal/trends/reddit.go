package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nexustopic/autoblog/internal/logger"
)

const redditBaseURL = "https://www.reddit.com"

// RedditFetcher reads the daily top posts of the configured subreddits.
type RedditFetcher struct {
	client     *http.Client
	baseURL    string
	subreddits []string
	limit      int
}

func NewRedditFetcher(client *http.Client, subreddits []string, limit int) *RedditFetcher {
	return &RedditFetcher{client: client, baseURL: redditBaseURL, subreddits: subreddits, limit: limit}
}

func (f *RedditFetcher) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Score     int    `json:"score"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (f *RedditFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	var items []TrendingItem

	for _, sub := range f.subreddits {
		url := fmt.Sprintf("%s/r/%s/top.json?t=day&limit=%d", f.baseURL, sub, f.limit)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		// Reddit rejects default Go user agents.
		req.Header.Set("User-Agent", "nexustopic-autoblog/1.0")

		resp, err := f.client.Do(req)
		if err != nil {
			logger.Warn("Reddit request failed", "subreddit", sub, "error", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			logger.Warn("Reddit returned error", "subreddit", sub, "status", resp.StatusCode)
			continue
		}

		var listing redditListing
		err = json.NewDecoder(resp.Body).Decode(&listing)
		resp.Body.Close()
		if err != nil {
			logger.Warn("Reddit decode failed", "subreddit", sub, "error", err)
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			if post.Title == "" {
				continue
			}
			items = append(items, TrendingItem{
				Keyword:   post.Title,
				Source:    "reddit",
				Score:     post.Score,
				Region:    "global",
				URL:       f.baseURL + post.Permalink,
				Timestamp: time.Now(),
			})
		}
	}

	return items, nil
}
