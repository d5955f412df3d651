package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const devtoArticlesURL = "https://dev.to/api/articles?top=1&per_page=%d"

// DevToFetcher reads the most popular articles of the last day from the
// public Dev.to API.
type DevToFetcher struct {
	client *http.Client
	limit  int
}

func NewDevToFetcher(client *http.Client, limit int) *DevToFetcher {
	return &DevToFetcher{client: client, limit: limit}
}

func (f *DevToFetcher) Name() string { return "devto" }

type devtoArticle struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Reactions int    `json:"positive_reactions_count"`
}

func (f *DevToFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	url := fmt.Sprintf(devtoArticlesURL, f.limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	items := make([]TrendingItem, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		items = append(items, TrendingItem{
			Keyword:   a.Title,
			Source:    "devto",
			Score:     a.Reactions,
			Region:    "global",
			URL:       a.URL,
			Timestamp: time.Now(),
		})
	}

	return items, nil
}
