// Package storage persists articles to Postgres and/or per-slug JSON files
// consumed by the static frontend.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/retry"
	"github.com/nexustopic/autoblog/internal/trends"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id               SERIAL PRIMARY KEY,
	slug             TEXT UNIQUE NOT NULL,
	title            TEXT NOT NULL,
	meta_description TEXT,
	content          TEXT NOT NULL,
	keywords         TEXT[],
	reading_time     INTEGER NOT NULL DEFAULT 1,
	word_count       INTEGER NOT NULL DEFAULT 0,
	topic            TEXT,
	published        BOOLEAN NOT NULL DEFAULT TRUE,
	featured_image   TEXT,
	image_attribution JSONB,
	author           JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS trending_sources (
	id         SERIAL PRIMARY KEY,
	article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	keyword    TEXT NOT NULL,
	source     TEXT,
	score      INTEGER,
	region     TEXT,
	url        TEXT,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_trending_sources_article ON trending_sources(article_id);
`

type Postgres struct {
	db       *sql.DB
	retryCfg retry.Config
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &Postgres{
		db: db,
		retryCfg: retry.Config{
			MaxAttempts: 3,
			Delay:       time.Second,
			Backoff:     true,
		},
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Database connection established")
	return p, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// UpsertArticle inserts or replaces the article keyed by slug and records
// its trending provenance. Returns the article id.
func (p *Postgres) UpsertArticle(ctx context.Context, a *article.Article) (int64, error) {
	attribution, err := json.Marshal(a.ImageAttribution)
	if err != nil {
		return 0, fmt.Errorf("marshal image attribution: %w", err)
	}
	author, err := json.Marshal(a.Author)
	if err != nil {
		return 0, fmt.Errorf("marshal author: %w", err)
	}

	var id int64
	err = retry.WithRetry(ctx, p.retryCfg, func() error {
		return p.db.QueryRowContext(ctx, `
			INSERT INTO articles (
				slug, title, meta_description, content, keywords,
				reading_time, word_count, topic, published,
				featured_image, image_attribution, author, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (slug) DO UPDATE SET
				title = EXCLUDED.title,
				meta_description = EXCLUDED.meta_description,
				content = EXCLUDED.content,
				keywords = EXCLUDED.keywords,
				reading_time = EXCLUDED.reading_time,
				word_count = EXCLUDED.word_count,
				topic = EXCLUDED.topic,
				published = EXCLUDED.published,
				featured_image = EXCLUDED.featured_image,
				image_attribution = EXCLUDED.image_attribution,
				author = EXCLUDED.author,
				updated_at = NOW()
			RETURNING id`,
			a.Slug, a.Title, a.MetaDescription, a.Content, pq.Array(a.Keywords),
			a.ReadingTime, a.WordCount, a.Topic, a.Published,
			a.FeaturedImage, attribution, author, a.CreatedAt, a.UpdatedAt,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("upsert article %s: %w", a.Slug, err)
	}

	a.ID = id
	logger.Info("Article stored", "slug", a.Slug, "id", id)

	if a.SourceData != nil {
		if err := p.InsertTrendingSource(ctx, id, *a.SourceData); err != nil {
			// Provenance is nice to have, never worth failing the article.
			logger.Warn("Failed to store trending source", "slug", a.Slug, "error", err)
		}
	}

	return id, nil
}

// InsertTrendingSource records which trending item an article came from.
func (p *Postgres) InsertTrendingSource(ctx context.Context, articleID int64, item trends.TrendingItem) error {
	return retry.WithRetry(ctx, p.retryCfg, func() error {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO trending_sources (article_id, keyword, source, score, region, url, fetched_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			articleID, item.Keyword, item.Source, item.Score, item.Region, item.URL, item.Timestamp,
		)
		return err
	})
}

const articleColumns = `id, slug, title, COALESCE(meta_description,''), content, keywords,
	reading_time, word_count, COALESCE(topic,''), published,
	COALESCE(featured_image,''), image_attribution, author, created_at, updated_at`

func scanArticle(row interface{ Scan(...interface{}) error }) (*article.Article, error) {
	var a article.Article
	var keywords pq.StringArray
	var attribution, author []byte

	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.MetaDescription, &a.Content, &keywords,
		&a.ReadingTime, &a.WordCount, &a.Topic, &a.Published,
		&a.FeaturedImage, &attribution, &author, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Keywords = keywords
	if len(attribution) > 0 {
		if err := json.Unmarshal(attribution, &a.ImageAttribution); err != nil {
			logger.Warn("Bad image attribution JSON", "slug", a.Slug, "error", err)
		}
	}
	if len(author) > 0 {
		if err := json.Unmarshal(author, &a.Author); err != nil {
			logger.Warn("Bad author JSON", "slug", a.Slug, "error", err)
		}
	}

	return &a, nil
}

func (p *Postgres) GetArticleBySlug(ctx context.Context, slug string) (*article.Article, error) {
	var a *article.Article
	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		var err error
		a, err = scanArticle(p.db.QueryRowContext(ctx,
			`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug))
		if err == sql.ErrNoRows {
			a = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", slug, err)
	}
	return a, nil
}

func (p *Postgres) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*article.Article, error) {
	var articles []*article.Article

	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		rows, err := p.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		articles = articles[:0]
		for rows.Next() {
			a, err := scanArticle(rows)
			if err != nil {
				return err
			}
			articles = append(articles, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ListArticles returns articles newest first.
func (p *Postgres) ListArticles(ctx context.Context, limit, offset int, publishedOnly bool) ([]*article.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	return p.queryArticles(ctx, query, limit, offset)
}

// ListTitles returns recent article titles for duplicate checks.
func (p *Postgres) ListTitles(ctx context.Context, limit int) ([]string, error) {
	var titles []string

	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		rows, err := p.db.QueryContext(ctx,
			`SELECT title FROM articles ORDER BY created_at DESC LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		titles = titles[:0]
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				return err
			}
			titles = append(titles, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	return titles, nil
}

// ListTrendingKeywords returns the most recently recorded source keywords.
func (p *Postgres) ListTrendingKeywords(ctx context.Context, limit int) ([]string, error) {
	var keywords []string

	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		rows, err := p.db.QueryContext(ctx,
			`SELECT keyword FROM trending_sources ORDER BY fetched_at DESC LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		keywords = keywords[:0]
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				return err
			}
			keywords = append(keywords, k)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list trending keywords: %w", err)
	}
	return keywords, nil
}

// ListArticlesWithoutImages returns published articles missing a cover.
func (p *Postgres) ListArticlesWithoutImages(ctx context.Context) ([]*article.Article, error) {
	return p.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles
		WHERE published = TRUE AND (featured_image IS NULL OR featured_image = '')
		ORDER BY created_at DESC`)
}

// ListArticlesWithoutSources returns published articles with no provenance row.
func (p *Postgres) ListArticlesWithoutSources(ctx context.Context) ([]*article.Article, error) {
	return p.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles a
		WHERE published = TRUE AND NOT EXISTS (
			SELECT 1 FROM trending_sources s WHERE s.article_id = a.id
		) ORDER BY created_at DESC`)
}

func (p *Postgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		return p.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check slug %s: %w", slug, err)
	}
	return exists, nil
}

func (p *Postgres) UpdateKeywords(ctx context.Context, slug string, keywords []string) error {
	return p.exec(ctx, `UPDATE articles SET keywords = $2, updated_at = NOW() WHERE slug = $1`,
		slug, pq.Array(keywords))
}

func (p *Postgres) UpdateTopic(ctx context.Context, slug, topic string) error {
	return p.exec(ctx, `UPDATE articles SET topic = $2, updated_at = NOW() WHERE slug = $1`,
		slug, topic)
}

func (p *Postgres) UpdateFeaturedImage(ctx context.Context, slug, url string, attribution map[string]string) error {
	data, err := json.Marshal(attribution)
	if err != nil {
		return fmt.Errorf("marshal image attribution: %w", err)
	}
	return p.exec(ctx, `UPDATE articles SET featured_image = $2, image_attribution = $3,
		updated_at = NOW() WHERE slug = $1`, slug, url, data)
}

func (p *Postgres) UpdateDates(ctx context.Context, slug string, t time.Time) error {
	return p.exec(ctx, `UPDATE articles SET created_at = $2, updated_at = $2 WHERE slug = $1`,
		slug, t)
}

func (p *Postgres) DeleteArticle(ctx context.Context, slug string) error {
	return p.exec(ctx, `DELETE FROM articles WHERE slug = $1`, slug)
}

func (p *Postgres) CountArticles(ctx context.Context, publishedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM articles`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}

	var count int
	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		return p.db.QueryRowContext(ctx, query).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (p *Postgres) exec(ctx context.Context, query string, args ...interface{}) error {
	return retry.WithRetry(ctx, p.retryCfg, func() error {
		_, err := p.db.ExecContext(ctx, query, args...)
		return err
	})
}
