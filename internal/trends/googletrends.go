package trends

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nexustopic/autoblog/internal/logger"
)

const googleTrendsURL = "https://trends.google.com/trending/rss?geo=%s"

// GoogleTrendsFetcher reads the daily trending-searches RSS feed per market.
type GoogleTrendsFetcher struct {
	parser  *gofeed.Parser
	markets []string
	limit   int
}

func NewGoogleTrendsFetcher(client *http.Client, markets []string, limit int) *GoogleTrendsFetcher {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "Mozilla/5.0"
	return &GoogleTrendsFetcher{parser: parser, markets: markets, limit: limit}
}

func (f *GoogleTrendsFetcher) Name() string { return "google_trends" }

// Fetch collects trending search phrases for each configured market. Short
// queries of fewer than three words are dropped, they make poor article
// topics. Ranking within a feed stands in for a score.
func (f *GoogleTrendsFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	var items []TrendingItem

	for _, market := range f.markets {
		feed, err := f.parser.ParseURLWithContext(fmt.Sprintf(googleTrendsURL, market), ctx)
		if err != nil {
			logger.Warn("Google Trends failed for market", "market", market, "error", err)
			continue
		}

		entries := feed.Items
		if len(entries) > f.limit {
			entries = entries[:f.limit]
		}

		for idx, entry := range entries {
			keyword := strings.TrimSpace(entry.Title)
			if keyword == "" || len(strings.Fields(keyword)) < 3 {
				continue
			}
			items = append(items, TrendingItem{
				Keyword:   keyword,
				Source:    "google_trends",
				Score:     f.limit - idx,
				Region:    market,
				Timestamp: time.Now(),
			})
		}
	}

	return items, nil
}
