package trends

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const productHuntFeedURL = "https://www.producthunt.com/feed"

// ProductHuntFetcher reads the public launch feed. The feed carries no vote
// counts, so feed position stands in for a score.
type ProductHuntFetcher struct {
	parser *gofeed.Parser
	limit  int
}

func NewProductHuntFetcher(client *http.Client, limit int) *ProductHuntFetcher {
	parser := gofeed.NewParser()
	parser.Client = client
	return &ProductHuntFetcher{parser: parser, limit: limit}
}

func (f *ProductHuntFetcher) Name() string { return "producthunt" }

func (f *ProductHuntFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	feed, err := f.parser.ParseURLWithContext(productHuntFeedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > f.limit {
		entries = entries[:f.limit]
	}

	items := make([]TrendingItem, 0, len(entries))
	for idx, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		items = append(items, TrendingItem{
			Keyword:   title,
			Source:    "producthunt",
			Score:     f.limit - idx,
			Region:    "global",
			URL:       entry.Link,
			Timestamp: time.Now(),
		})
	}

	return items, nil
}
