// Maintenance runs one-off repair jobs against the article database:
//
//	maintenance [flags] <job>
//
// where job is one of images, keywords, sources, reclassify, dates.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/nexustopic/autoblog/internal/backfill"
	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/gemini"
	"github.com/nexustopic/autoblog/internal/images"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/ratelimit"
	"github.com/nexustopic/autoblog/internal/storage"
	"github.com/nexustopic/autoblog/internal/trends"
)

type cliOptions struct {
	Config    string  `long:"config" default:"configs/config.yaml" description:"Path to the YAML config file"`
	DryRun    bool    `long:"dry-run" description:"Report what would change without writing"`
	Threshold float64 `long:"threshold" description:"Minimum title similarity for source matching (sources job)"`

	Args struct {
		Job string `positional-arg-name:"job" description:"images, keywords, sources, reclassify or dates"`
	} `positional-args:"true" required:"true"`
}

func main() {
	godotenv.Load()
	logger.Init()

	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("maintenance jobs need DATABASE_URL")
	}

	store, err := storage.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer store.Close()

	var gem *gemini.Client
	if cfg.GoogleAPIKey != "" {
		gem, err = gemini.NewClient(cfg.GoogleAPIKey)
		if err != nil {
			log.Fatalf("gemini error: %v", err)
		}
		defer gem.Close()
	}

	ctx := context.Background()
	runner := backfill.New(store, trendsService(cfg), imageFetcher(cfg, gem), gem, opts.DryRun)

	switch opts.Args.Job {
	case "images":
		err = runner.Images(ctx)
	case "keywords":
		err = runner.Keywords(ctx)
	case "sources":
		err = runner.Sources(ctx, opts.Threshold)
	case "reclassify":
		if gem == nil {
			log.Fatal("reclassify needs GOOGLE_API_KEY")
		}
		err = runner.Reclassify(ctx)
	case "dates":
		err = runner.Dates(ctx)
	default:
		log.Fatalf("unknown job %q (want images, keywords, sources, reclassify or dates)", opts.Args.Job)
	}

	if err != nil {
		logger.Error("Maintenance job failed", "job", opts.Args.Job, "error", err)
		os.Exit(1)
	}
}

func trendsService(cfg *config.Config) *trends.Service {
	return trends.NewService(cfg, &http.Client{Timeout: cfg.RequestTimeout})
}

func imageFetcher(cfg *config.Config, gem *gemini.Client) *images.Fetcher {
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
