package trends

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedFetcher turns any RSS or Atom feed from the config file into a
// trend source. Feed position stands in for a score.
type FeedFetcher struct {
	parser *gofeed.Parser
	url    string
	source string
	limit  int
}

func NewFeedFetcher(client *http.Client, url, source string, limit int) *FeedFetcher {
	parser := gofeed.NewParser()
	parser.Client = client
	return &FeedFetcher{parser: parser, url: url, source: source, limit: limit}
}

func (f *FeedFetcher) Name() string { return f.source }

func (f *FeedFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
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
			Source:    f.source,
			Score:     f.limit - idx,
			Region:    "global",
			URL:       entry.Link,
			Timestamp: time.Now(),
		})
	}

	return items, nil
}
