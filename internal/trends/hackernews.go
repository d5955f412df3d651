package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nexustopic/autoblog/internal/logger"
)

const hnBaseURL = "https://hacker-news.firebaseio.com/v0"

type HackerNewsFetcher struct {
	client  *http.Client
	baseURL string
	limit   int
}

func NewHackerNewsFetcher(client *http.Client, limit int) *HackerNewsFetcher {
	return &HackerNewsFetcher{client: client, baseURL: hnBaseURL, limit: limit}
}

func (f *HackerNewsFetcher) Name() string { return "hackernews" }

type hnStory struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// Fetch pulls the top story IDs and resolves each one. A single failing
// story is skipped so one bad item never loses the whole source.
func (f *HackerNewsFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	var ids []int64
	if err := f.getJSON(ctx, f.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if len(ids) > f.limit {
		ids = ids[:f.limit]
	}

	var items []TrendingItem
	for _, id := range ids {
		var story hnStory
		if err := f.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", f.baseURL, id), &story); err != nil {
			logger.Warn("Failed to fetch story", "id", id, "error", err)
			continue
		}
		if story.Title == "" {
			continue
		}

		url := story.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		}
		items = append(items, TrendingItem{
			Keyword:   story.Title,
			Source:    "hackernews",
			Score:     story.Score,
			Region:    "global",
			URL:       url,
			Timestamp: time.Now(),
		})
	}

	return items, nil
}

func (f *HackerNewsFetcher) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
