// Package backfill holds the maintenance jobs that repair persisted
// articles: missing cover images, stopword-polluted keywords, missing
// trending provenance, stale categories and publication dates.
package backfill

import (
	"context"
	"time"

	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/images"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/similarity"
	"github.com/nexustopic/autoblog/internal/storage"
	"github.com/nexustopic/autoblog/internal/trends"
)

const (
	listLimit       = 1000
	sourceThreshold = 0.35
	maxKeywords     = 10
)

// Classifier re-assigns an article category, keeping fallback on failure.
type Classifier interface {
	Classify(ctx context.Context, title, content, fallback string) string
}

type Runner struct {
	store      *storage.Postgres
	trends     *trends.Service
	images     *images.Fetcher
	classifier Classifier
	dryRun     bool
}

func New(store *storage.Postgres, trendsSvc *trends.Service, imageFetcher *images.Fetcher, classifier Classifier, dryRun bool) *Runner {
	return &Runner{
		store:      store,
		trends:     trendsSvc,
		images:     imageFetcher,
		classifier: classifier,
		dryRun:     dryRun,
	}
}

// Images attaches covers to published articles that have none.
func (r *Runner) Images(ctx context.Context) error {
	articles, err := r.store.ListArticlesWithoutImages(ctx)
	if err != nil {
		return err
	}
	logger.Info("Articles without images", "count", len(articles))

	if r.dryRun {
		for _, a := range articles {
			logger.Info("Would fetch image", "slug", a.Slug, "title", a.Title)
		}
		return nil
	}

	r.images.Attach(ctx, articles)

	updated := 0
	for _, a := range articles {
		if a.FeaturedImage == "" {
			continue
		}
		if err := r.store.UpdateFeaturedImage(ctx, a.Slug, a.FeaturedImage, a.ImageAttribution); err != nil {
			logger.Warn("Failed to store image", "slug", a.Slug, "error", err)
			continue
		}
		updated++
	}

	logger.Info("Image backfill done", "updated", updated, "total", len(articles))
	return nil
}

// Keywords re-extracts keyword lists that are empty or contain stop words.
func (r *Runner) Keywords(ctx context.Context) error {
	articles, err := r.store.ListArticles(ctx, listLimit, 0, false)
	if err != nil {
		return err
	}

	updated, skipped := 0, 0
	for _, a := range articles {
		if len(a.Keywords) > 0 && !article.HasStopWords(a.Keywords) {
			skipped++
			continue
		}

		fresh := article.ExtractKeywords(a.Content, maxKeywords)
		logger.Info("Keywords regenerated", "slug", a.Slug, "old", a.Keywords, "new", fresh)

		if !r.dryRun {
			if err := r.store.UpdateKeywords(ctx, a.Slug, fresh); err != nil {
				logger.Warn("Failed to update keywords", "slug", a.Slug, "error", err)
				continue
			}
		}
		updated++
	}

	logger.Info("Keyword backfill done", "updated", updated, "skipped", skipped, "dry_run", r.dryRun)
	return nil
}

// bestMatch finds the source item most similar to a title.
func bestMatch(title string, items []trends.TrendingItem) (trends.TrendingItem, float64) {
	var best trends.TrendingItem
	bestScore := 0.0

	for _, item := range items {
		if score := similarity.Jaccard(title, item.Keyword); score > bestScore {
			bestScore = score
			best = item
		}
	}
	return best, bestScore
}

// Sources matches source-less articles against freshly fetched headlines
// and records the best match as provenance. A threshold of zero or less
// uses the default cut.
func (r *Runner) Sources(ctx context.Context, threshold float64) error {
	if threshold <= 0 {
		threshold = sourceThreshold
	}

	missing, err := r.store.ListArticlesWithoutSources(ctx)
	if err != nil {
		return err
	}
	logger.Info("Articles without source data", "count", len(missing))
	if len(missing) == 0 {
		return nil
	}

	candidates := r.trends.FetchRaw(ctx)
	logger.Info("Fetched source headlines", "count", len(candidates))

	matched, unmatched := 0, 0
	for _, a := range missing {
		item, score := bestMatch(a.Title, candidates)
		if score < threshold {
			unmatched++
			logger.Info("No source match", "slug", a.Slug, "best_score", score)
			continue
		}

		matched++
		logger.Info("Source matched", "slug", a.Slug, "source", item.Source,
			"keyword", item.Keyword, "score", score)

		if !r.dryRun {
			if err := r.store.InsertTrendingSource(ctx, a.ID, item); err != nil {
				logger.Warn("Failed to insert source", "slug", a.Slug, "error", err)
			}
		}
	}

	logger.Info("Source backfill done", "matched", matched, "unmatched", unmatched, "dry_run", r.dryRun)
	return nil
}

// Reclassify re-runs category classification over every article and stores
// the corrections.
func (r *Runner) Reclassify(ctx context.Context) error {
	articles, err := r.store.ListArticles(ctx, listLimit, 0, false)
	if err != nil {
		return err
	}

	changed := 0
	for _, a := range articles {
		category := r.classifier.Classify(ctx, a.Title, a.Content, a.Topic)
		if category == a.Topic {
			logger.Debug("Category confirmed", "slug", a.Slug, "category", category)
			continue
		}

		changed++
		logger.Info("Category corrected", "slug", a.Slug, "old", a.Topic, "new", category)

		if !r.dryRun {
			if err := r.store.UpdateTopic(ctx, a.Slug, category); err != nil {
				logger.Warn("Failed to update category", "slug", a.Slug, "error", err)
			}
		}
	}

	logger.Info("Reclassification done", "changed", changed, "total", len(articles), "dry_run", r.dryRun)
	return nil
}

// Dates stamps every article's created/updated timestamps to now.
func (r *Runner) Dates(ctx context.Context) error {
	articles, err := r.store.ListArticles(ctx, listLimit, 0, false)
	if err != nil {
		return err
	}

	now := time.Now()
	updated := 0
	for _, a := range articles {
		logger.Info("Updating dates", "slug", a.Slug, "to", now.Format(time.RFC3339))
		if !r.dryRun {
			if err := r.store.UpdateDates(ctx, a.Slug, now); err != nil {
				logger.Warn("Failed to update dates", "slug", a.Slug, "error", err)
				continue
			}
		}
		updated++
	}

	logger.Info("Date update done", "updated", updated, "total", len(articles), "dry_run", r.dryRun)
	return nil
}
