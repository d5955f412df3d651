// Package images attaches cover images to articles through a fallback
// chain: AI generation with object-storage upload, then Unsplash search,
// then nothing (the frontend shows a category thumbnail).
package images

import (
	"context"
	"mime"
	"regexp"
	"strings"

	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/metrics"
	"github.com/nexustopic/autoblog/internal/ratelimit"
	"github.com/nexustopic/autoblog/internal/similarity"
)

// Generator produces AI cover images and search-query suggestions.
// Implemented by the Gemini client; nil disables AI images.
type Generator interface {
	GenerateCoverImage(ctx context.Context, title, topic, description string) ([]byte, string, error)
	ImageQuery(ctx context.Context, title, topic, description string) (string, error)
}

// Uploader stores image bytes and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Searcher finds a stock photo for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (*UnsplashPhoto, error)
}

type Fetcher struct {
	generator Generator
	uploader  Uploader
	searcher  Searcher
	limiter   *ratelimit.Limiter
}

// NewFetcher wires the chain. Any stage may be nil and is then skipped.
func NewFetcher(generator Generator, uploader Uploader, searcher Searcher, limiter *ratelimit.Limiter) *Fetcher {
	return &Fetcher{
		generator: generator,
		uploader:  uploader,
		searcher:  searcher,
		limiter:   limiter,
	}
}

var queryWordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// fallbackQuery builds an Unsplash query from title keywords when no AI
// suggestion is available.
func fallbackQuery(a *article.Article) string {
	words := queryWordRe.FindAllString(a.Title, -1)

	var keep []string
	for _, w := range words {
		if len(w) > 2 && !similarity.IsStopWord(w) {
			keep = append(keep, w)
		}
		if len(keep) == 3 {
			break
		}
	}

	topicInKeep := false
	for _, w := range keep {
		if strings.EqualFold(w, a.Topic) {
			topicInKeep = true
			break
		}
	}
	if a.Topic != "" && !topicInKeep {
		keep = append(keep, a.Topic)
	}

	if len(keep) == 0 {
		title := a.Title
		if len(title) > 50 {
			title = title[:50]
		}
		return title
	}
	return strings.Join(keep, " ")
}

func extFromMIME(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".png"
}

// tryGenerated runs the AI-generation branch: image bytes from the model,
// uploaded to object storage.
func (f *Fetcher) tryGenerated(ctx context.Context, a *article.Article) bool {
	if f.generator == nil || f.uploader == nil {
		return false
	}

	data, mimeType, err := f.generator.GenerateCoverImage(ctx, a.Title, a.Topic, a.MetaDescription)
	if err != nil {
		logger.Warn("AI image generation failed", "title", a.Title, "error", err)
		return false
	}

	url, err := f.uploader.Upload(ctx, a.Slug+extFromMIME(mimeType), data, mimeType)
	if err != nil {
		logger.Warn("Image upload failed", "title", a.Title, "error", err)
		return false
	}

	a.FeaturedImage = url
	a.ImageAttribution = map[string]string{
		"source": "gemini",
		"model":  "gemini-2.5-flash-image",
	}
	return true
}

// tryUnsplash runs the stock-photo branch with an AI-suggested query when
// possible, otherwise title keywords.
func (f *Fetcher) tryUnsplash(ctx context.Context, a *article.Article) bool {
	if f.searcher == nil {
		return false
	}

	query := ""
	if f.generator != nil {
		q, err := f.generator.ImageQuery(ctx, a.Title, a.Topic, a.MetaDescription)
		if err != nil {
			logger.Debug("AI image query failed, using title keywords", "error", err)
		} else {
			query = q
		}
	}
	if query == "" {
		query = fallbackQuery(a)
	}
	logger.Info("Searching Unsplash", "query", query)

	photo, err := f.searcher.Search(ctx, query)
	if err != nil {
		logger.Warn("Unsplash search failed", "query", query, "error", err)
		return false
	}
	if photo == nil {
		return false
	}

	a.FeaturedImage = photo.URL
	a.ImageAttribution = map[string]string{
		"source":            "unsplash",
		"photographer_name": photo.PhotographerName,
		"photographer_url":  photo.PhotographerURL,
		"unsplash_url":      photo.PhotoPageURL,
	}
	logger.Info("Unsplash image attached", "photographer", photo.PhotographerName)
	return true
}

// Attach sets FeaturedImage on every article that does not already have
// one. Articles stay usable with no image at all, the frontend falls back
// to a category thumbnail.
func (f *Fetcher) Attach(ctx context.Context, articles []*article.Article) {
	generated, stock := 0, 0

	for i, a := range articles {
		if a.FeaturedImage != "" {
			logger.Info("Article already has image, skipping", "slug", a.Slug)
			continue
		}

		if f.limiter != nil && i > 0 {
			if err := f.limiter.Wait(ctx); err != nil {
				logger.Warn("Image pacing interrupted", "error", err)
				return
			}
		}

		switch {
		case f.tryGenerated(ctx, a):
			generated++
			metrics.Global.IncrementImagesAttached()
		case f.tryUnsplash(ctx, a):
			stock++
			metrics.Global.IncrementImagesAttached()
		default:
			logger.Info("No image found, using category thumbnail", "slug", a.Slug)
		}
	}

	logger.Info("Image summary",
		"generated", generated, "unsplash", stock,
		"none", len(articles)-generated-stock)
}
