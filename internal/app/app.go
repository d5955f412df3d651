// Package app wires the full publishing pipeline: trend collection,
// duplicate filtering, generation, classification, images, ads and
// persistence.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nexustopic/autoblog/internal/ads"
	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/dedup"
	"github.com/nexustopic/autoblog/internal/gemini"
	"github.com/nexustopic/autoblog/internal/generate"
	"github.com/nexustopic/autoblog/internal/images"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/metrics"
	"github.com/nexustopic/autoblog/internal/ratelimit"
	"github.com/nexustopic/autoblog/internal/storage"
	"github.com/nexustopic/autoblog/internal/trends"
)

const recentLimit = 100

type Options struct {
	Articles  int
	Markets   []string
	NoAdSense bool
	NoImages  bool
	OutputDir string
}

type App struct {
	cfg  *config.Config
	opts Options
}

func New(cfg *config.Config, opts Options) *App {
	if opts.Articles <= 0 {
		opts.Articles = 3
	}
	if len(opts.Markets) > 0 {
		cfg.File.Automation.TargetMarkets = opts.Markets
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	return &App{cfg: cfg, opts: opts}
}

// Run executes one full pipeline pass. It fails only when nothing can be
// published at all: no topics, or no article survived generation. Every
// optional stage degrades with a warning instead.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	err := a.run(ctx)

	metrics.Global.RecordRunDuration(time.Since(start))
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.SetLastRun()
	return nil
}

func (a *App) run(ctx context.Context) error {
	cfg := a.cfg
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	// 1. Trending topics.
	trendsSvc := trends.NewService(cfg, httpClient)
	topics := trendsSvc.FetchAll(ctx)
	if len(topics) == 0 {
		return fmt.Errorf("no trending topics found, nothing to write about")
	}
	metrics.Global.AddTopicsFetched(len(topics))

	// 2. Storage. A failing database degrades to JSON-only output.
	var pg *storage.Postgres
	if cfg.UseDatabase {
		var err error
		pg, err = storage.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Database unavailable, writing JSON only", "error", err)
			pg = nil
		} else {
			defer pg.Close()
		}
	}
	jsonStore := storage.NewJSONStore(cfg.OutputDir)

	// 3. Duplicate gate seeded with what is already published.
	titles, keywords := a.loadHistory(ctx, pg, jsonStore)

	var gem *gemini.Client
	if cfg.GoogleAPIKey != "" {
		var err error
		gem, err = gemini.NewClient(cfg.GoogleAPIKey)
		if err != nil {
			logger.Warn("Gemini unavailable", "error", err)
			gem = nil
		} else {
			defer gem.Close()
		}
	}

	var oracle dedup.Oracle
	if gem != nil {
		oracle = gem
	}
	checker := dedup.NewChecker(titles, keywords, oracle)

	// 4. Generation through the provider chain.
	var providers []generate.Provider
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, generate.NewAnthropicProvider(cfg.AnthropicAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, generate.NewOpenAIProvider(cfg.OpenAIAPIKey))
	}

	gen := generate.NewGenerator(providers, ratelimit.New(cfg.MaxLLMRequests, 0.5), generate.Options{
		MinWords:       cfg.File.Automation.MinWords,
		MaxWords:       cfg.File.Automation.MaxWords,
		TargetAudience: cfg.File.Automation.TargetAudience,
		RetryAttempts:  cfg.RetryAttempts,
		RetryDelay:     cfg.RetryDelay,
	})

	articles := gen.GenerateBatch(ctx, topics, a.opts.Articles, checker)
	if len(articles) == 0 {
		return fmt.Errorf("no articles generated from %d topics", len(topics))
	}

	// 5. Classification refines the category the generator suggested.
	if gem != nil {
		for _, art := range articles {
			art.Topic = gem.Classify(ctx, art.Title, art.Content, art.Topic)
		}
	}

	// 6. Cover images.
	if !a.opts.NoImages {
		a.imageFetcher(gem).Attach(ctx, articles)
	}

	// 7. Ad units.
	if !a.opts.NoAdSense {
		a.insertAds(articles)
	}

	// 8. Persistence. JSON files are written even with a database so the
	// static frontend always has something to serve.
	a.persist(ctx, pg, jsonStore, articles)

	logger.Info("Pipeline run complete", "articles", len(articles))
	return nil
}

// loadHistory collects titles and recent trending keywords for the
// duplicate gate, from the database when available, otherwise the JSON
// index.
func (a *App) loadHistory(ctx context.Context, pg *storage.Postgres, jsonStore *storage.JSONStore) ([]string, []string) {
	if pg != nil {
		titles, err := pg.ListTitles(ctx, recentLimit)
		if err != nil {
			logger.Warn("Failed to load existing titles", "error", err)
		}
		keywords, err := pg.ListTrendingKeywords(ctx, recentLimit)
		if err != nil {
			logger.Warn("Failed to load recent keywords", "error", err)
		}
		return titles, keywords
	}

	entries, err := jsonStore.LoadIndex()
	if err != nil {
		logger.Warn("Failed to load article index", "error", err)
		return nil, nil
	}
	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	return titles, nil
}

func (a *App) imageFetcher(gem *gemini.Client) *images.Fetcher {
	cfg := a.cfg

	var generator images.Generator
	if gem != nil {
		generator = gem
	}

	var uploader images.Uploader
	if cfg.MinioEndpoint != "" {
		up, err := images.NewMinioUploader(cfg)
		if err != nil {
			logger.Warn("Object storage unavailable", "error", err)
		} else {
			uploader = up
		}
	}

	var searcher images.Searcher
	if cfg.UnsplashAccessKey != "" {
		searcher = images.NewUnsplashClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.UnsplashAccessKey)
	}

	return images.NewFetcher(generator, uploader, searcher, ratelimit.New(1, 0.5))
}

func (a *App) insertAds(articles []*article.Article) {
	adCfg := a.cfg.File.AdSense
	if !ads.ValidateConfig(adCfg) {
		logger.Warn("Skipping ad insertion, invalid AdSense config")
		return
	}

	total := 0
	for _, art := range articles {
		content, n := ads.InsertAds(art.Content, adCfg)
		art.Content = content
		total += n
	}
	metrics.Global.AddAdUnitsInserted(total)
}

func (a *App) persist(ctx context.Context, pg *storage.Postgres, jsonStore *storage.JSONStore, articles []*article.Article) {
	if pg != nil {
		for _, art := range articles {
			if _, err := pg.UpsertArticle(ctx, art); err != nil {
				logger.Error("Failed to persist article", "slug", art.Slug, "error", err)
				metrics.Global.IncrementPersistFailures()
				continue
			}
			metrics.Global.IncrementArticlesPersisted()
		}
	}

	saved := jsonStore.SaveAll(articles)
	if pg == nil {
		for i := 0; i < saved; i++ {
			metrics.Global.IncrementArticlesPersisted()
		}
	}
}
