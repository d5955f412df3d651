// Package generate drafts SEO articles for trending topics through a chain
// of LLM providers and turns the semi-structured responses into article
// records.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/dedup"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/metrics"
	"github.com/nexustopic/autoblog/internal/ratelimit"
	"github.com/nexustopic/autoblog/internal/retry"
	"github.com/nexustopic/autoblog/internal/trends"
)

const maxKeywords = 10

// Provider produces raw model output for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	MinWords       int
	MaxWords       int
	TargetAudience string
	RetryAttempts  int
	RetryDelay     time.Duration
}

type Generator struct {
	providers []Provider
	limiter   *ratelimit.Limiter
	opts      Options
}

// NewGenerator builds a generator over the given provider chain. Providers
// are tried in order per article; the limiter paces all model calls.
func NewGenerator(providers []Provider, limiter *ratelimit.Limiter, opts Options) *Generator {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Generator{providers: providers, limiter: limiter, opts: opts}
}

func (g *Generator) buildPrompt(topic string) string {
	return fmt.Sprintf(`Write a comprehensive, SEO-optimized blog article about: %s

Requirements:
- Target audience: %s
- Word count: %d-%d words
- Format: HTML with proper semantic tags (h2, h3, p, ul, ol, strong, em)
- Style: Informative, engaging, and authoritative
- SEO: Include relevant keywords naturally throughout
- Structure: Introduction, main body with subheadings, conclusion
- Tone: Professional yet accessible

The article should:
1. Start with an engaging introduction that hooks the reader
2. Use clear H2 and H3 headings for structure
3. Include specific examples and data when relevant
4. Provide actionable insights
5. End with a strong conclusion that summarizes key points

Format the output as HTML. Use <h2> for main sections, <h3> for subsections, <p> for paragraphs, <ul>/<ol> for lists.
Do NOT include <html>, <head>, or <body> tags - just the article content.

Also provide:
- A compelling SEO title (under 60 characters)
- A meta description (under 160 characters)
- A category, exactly one of: AI, BIZ & IT, CARS, CULTURE, GAMING, HEALTH, POLICY, SCIENCE, SECURITY, SPACE, TECH

Format your response as:
TITLE: [Your title here]
META: [Your meta description here]
CATEGORY: [Category here]
CONTENT:
[Your HTML content here]`, topic, g.opts.TargetAudience, g.opts.MinWords, g.opts.MaxWords)
}

// isRateLimited spots throttling responses worth retrying; other errors
// move straight to the next provider.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "overloaded")
}

func (g *Generator) callProviders(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, p := range g.providers {
		raw, err := g.generateWith(ctx, p, prompt)
		if err != nil {
			lastErr = err
			logger.Warn("Provider failed", "provider", p.Name(), "error", err)
			continue
		}

		logger.Debug("Article generated", "provider", p.Name())
		return raw, nil
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// generateWith calls one provider, retrying only on rate-limit signals.
// Other errors fail the provider immediately.
func (g *Generator) generateWith(ctx context.Context, p Provider, prompt string) (string, error) {
	var raw string
	var permErr error

	err := retry.WithRetry(ctx, retry.Config{
		MaxAttempts: g.opts.RetryAttempts,
		Delay:       g.opts.RetryDelay,
		Backoff:     true,
	}, func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				permErr = err
				return nil
			}
		}

		out, err := p.Generate(ctx, prompt)
		if err != nil {
			if isRateLimited(err) {
				return err
			}
			permErr = err
			return nil
		}
		raw = out
		permErr = nil
		return nil
	})
	if err != nil {
		return "", err
	}
	if permErr != nil {
		return "", permErr
	}
	return raw, nil
}

// Generate drafts one article for a topic and computes its text metrics.
func (g *Generator) Generate(ctx context.Context, topic string) (*article.Article, error) {
	logger.Info("Generating article", "topic", topic,
		"min_words", g.opts.MinWords, "max_words", g.opts.MaxWords)

	raw, err := g.callProviders(ctx, g.buildPrompt(topic))
	if err != nil {
		return nil, err
	}

	p := parseResponse(raw, topic)
	now := time.Now()

	a := &article.Article{
		Slug:            article.CreateSlug(p.Title),
		Title:           p.Title,
		MetaDescription: p.MetaDescription,
		Content:         p.Content,
		Keywords:        article.ExtractKeywords(p.Content, maxKeywords),
		ReadingTime:     article.ReadingTime(p.Content),
		WordCount:       article.CountWords(p.Content),
		Topic:           p.Category,
		Published:       true,
		Author:          article.DefaultAuthor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	logger.Info("Article generated", "title", a.Title,
		"words", a.WordCount, "reading_time", a.ReadingTime)
	return a, nil
}

// GenerateBatch walks the ranked topic list until count articles pass every
// duplicate gate. Generation failures skip to the next topic.
func (g *Generator) GenerateBatch(ctx context.Context, topics []trends.TrendingItem, count int, checker *dedup.Checker) []*article.Article {
	logger.Info("Generating articles", "requested", count, "topics", len(topics))

	var articles []*article.Article
	for i := 0; i < len(topics) && len(articles) < count; i++ {
		topic := topics[i]

		if checker.IsDuplicate(topic.Keyword) {
			metrics.Global.IncrementDuplicatesSkipped()
			continue
		}

		a, err := g.Generate(ctx, topic.Keyword)
		if err != nil {
			logger.Warn("Failed to generate article", "topic", topic.Keyword, "error", err)
			continue
		}

		if checker.IsSemanticDuplicate(ctx, a.Title) {
			logger.Info("Semantic duplicate discarded", "title", a.Title)
			metrics.Global.IncrementDuplicatesSkipped()
			continue
		}

		src := topic
		a.SourceData = &src
		checker.Accept(a.Title)
		articles = append(articles, a)
		metrics.Global.IncrementArticlesGenerated()
	}

	logger.Info("Batch complete", "generated", len(articles), "requested", count)
	return articles
}
