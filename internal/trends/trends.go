// Package trends collects trending topics from public sources and merges
// them into one ranked, deduplicated list.
package trends

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/metrics"
	"github.com/nexustopic/autoblog/internal/similarity"
)

type TrendingItem struct {
	Keyword   string    `json:"keyword"`
	Source    string    `json:"source"`
	Score     int       `json:"score"`
	Region    string    `json:"region"`
	URL       string    `json:"url,omitempty"`
	CPCBoost  bool      `json:"cpc_boost,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Fetcher is one trending-topic source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]TrendingItem, error)
}

// Service aggregates all configured fetchers.
type Service struct {
	fetchers []Fetcher
}

// NewService wires the built-in sources plus any extra RSS feeds from the
// config file.
func NewService(cfg *config.Config, client *http.Client) *Service {
	limit := cfg.File.Automation.LimitPerSource

	fetchers := []Fetcher{
		NewHackerNewsFetcher(client, limit),
		NewGoogleTrendsFetcher(client, cfg.File.Automation.TargetMarkets, limit),
		NewRedditFetcher(client, cfg.File.Automation.Subreddits, limit),
		NewDevToFetcher(client, limit),
		NewProductHuntFetcher(client, limit),
	}
	for _, feed := range cfg.File.Feeds {
		fetchers = append(fetchers, NewFeedFetcher(client, feed.URL, feed.Source, limit))
	}

	return &Service{fetchers: fetchers}
}

// FetchAll queries every source, normalizes each source's scores to a common
// scale, boosts high-CPC keywords and returns the deduplicated ranking. A
// failing source is logged and skipped, never fatal.
func (s *Service) FetchAll(ctx context.Context) []TrendingItem {
	var sources [][]TrendingItem
	raw := 0

	for _, f := range s.fetchers {
		items, err := f.Fetch(ctx)
		if err != nil {
			logger.Warn("Trend source failed", "source", f.Name(), "error", err)
			continue
		}
		logger.Info("Fetched trends", "source", f.Name(), "count", len(items))
		sources = append(sources, items)
		raw += len(items)
	}

	unique := Aggregate(sources...)
	metrics.Global.AddTopicsDeduplicated(raw - len(unique))
	logger.Info("Trending topics collected", "unique", len(unique), "raw", raw)
	return unique
}

// FetchRaw queries every source and returns the combined items without
// normalization or ranking. Used by maintenance jobs that match article
// titles against source headlines.
func (s *Service) FetchRaw(ctx context.Context) []TrendingItem {
	var all []TrendingItem
	for _, f := range s.fetchers {
		items, err := f.Fetch(ctx)
		if err != nil {
			logger.Warn("Trend source failed", "source", f.Name(), "error", err)
			continue
		}
		all = append(all, items...)
	}
	return all
}

// Aggregate merges per-source lists: each list's scores are normalized
// against its own maximum, then everything is boosted, ranked and
// deduplicated.
func Aggregate(sources ...[]TrendingItem) []TrendingItem {
	var all []TrendingItem
	for _, items := range sources {
		Normalize(items)
		all = append(all, items...)
	}

	Boost(all)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	return Deduplicate(all)
}

// Normalize rescales scores to [0,100] against the list's own maximum, so
// sources with wildly different score ranges become comparable. An empty
// list is left alone.
func Normalize(items []TrendingItem) {
	if len(items) == 0 {
		return
	}

	maxScore := 0
	for _, it := range items {
		if it.Score > maxScore {
			maxScore = it.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	for i := range items {
		items[i].Score = int(math.Round(float64(items[i].Score) / float64(maxScore) * 100))
	}
}

// Keywords whose topics attract high-value ad inventory. A keyword matching
// any of these gets a score boost so the pipeline prefers monetizable topics.
var highCPCKeywords = []string{
	// Finance & Insurance
	"insurance", "mortgage", "credit", "loan", "banking", "invest", "stock", "crypto",
	"bitcoin", "ethereum", "finance", "tax", "trading", "hedge fund", "interest rate",
	"federal reserve", "inflation", "recession", "economy", "gdp", "earnings",
	// Legal
	"lawsuit", "regulation", "compliance", "patent", "antitrust", "court", "legal",
	"privacy", "gdpr", "settlement",
	// Health & Pharma
	"health", "medical", "pharma", "drug", "fda", "clinical trial", "vaccine",
	"healthcare", "biotech", "cancer", "disease", "therapy",
	// AI, SaaS & enterprise tech
	"artificial intelligence", " ai ", "machine learning", "saas", "cloud", "enterprise",
	"cybersecurity", "data breach", "ransomware", "startup", "valuation", "ipo",
	"acquisition", "merger", "funding", "venture capital",
	// Real estate
	"real estate", "housing", "property", "rent", "construction",
	// Energy
	"oil", "energy", "solar", "ev ", "electric vehicle", "battery", "nuclear",
}

// Boost raises the score of keywords matching high-CPC terms: +50% per
// matching term, capped at 3x, and the boosted score never lands below 50.
func Boost(items []TrendingItem) {
	for i := range items {
		lower := strings.ToLower(items[i].Keyword)
		matches := 0
		for _, kw := range highCPCKeywords {
			if strings.Contains(lower, strings.TrimSpace(kw)) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		multiplier := 1.0 + 0.5*float64(matches)
		if multiplier > 3.0 {
			multiplier = 3.0
		}
		boosted := int(math.Round(float64(items[i].Score) * multiplier))
		if boosted < 50 {
			boosted = 50
		}
		items[i].Score = boosted
		items[i].CPCBoost = true
	}
}

// Deduplicate walks the sorted list keeping the first (highest-scored)
// occurrence of each topic. Two keywords are the same topic on exact match,
// substring containment, or word overlap of at least 0.5.
func Deduplicate(items []TrendingItem) []TrendingItem {
	var unique []TrendingItem

	for _, item := range items {
		lower := strings.ToLower(item.Keyword)
		isDup := false
		for _, kept := range unique {
			keptLower := strings.ToLower(kept.Keyword)
			if lower == keptLower ||
				strings.Contains(keptLower, lower) ||
				strings.Contains(lower, keptLower) ||
				similarity.Jaccard(lower, keptLower) >= 0.5 {
				isDup = true
				break
			}
		}
		if !isDup {
			unique = append(unique, item)
		}
	}

	return unique
}
