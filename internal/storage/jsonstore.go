package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nexustopic/autoblog/internal/article"
	"github.com/nexustopic/autoblog/internal/logger"
)

// JSONStore writes one <slug>.json per article plus an index.json summary
// for the static frontend's listing page.
type JSONStore struct {
	dir string
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

// IndexEntry is the listing-page view of an article.
type IndexEntry struct {
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	ReadingTime     int       `json:"reading_time"`
	Keywords        []string  `json:"keywords"`
	Topic           string    `json:"topic"`
	FeaturedImage   string    `json:"featured_image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SaveArticle writes the article to <dir>/<slug>.json.
func (s *JSONStore) SaveArticle(a *article.Article) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, a.Slug+".json")
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal article %s: %w", a.Slug, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write article %s: %w", a.Slug, err)
	}

	logger.Info("Article saved", "path", path)
	return path, nil
}

// UpdateIndex merges the given articles into index.json, keeping existing
// entries and sorting everything newest first.
func (s *JSONStore) UpdateIndex(articles []*article.Article) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	indexPath := filepath.Join(s.dir, "index.json")

	var existing []IndexEntry
	if data, err := os.ReadFile(indexPath); err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			logger.Warn("Existing index unreadable, rebuilding", "error", err)
			existing = nil
		}
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Slug] = true
	}

	for _, a := range articles {
		if seen[a.Slug] {
			continue
		}
		keywords := a.Keywords
		if len(keywords) > 5 {
			keywords = keywords[:5]
		}
		existing = append(existing, IndexEntry{
			Slug:            a.Slug,
			Title:           a.Title,
			MetaDescription: a.MetaDescription,
			ReadingTime:     a.ReadingTime,
			Keywords:        keywords,
			Topic:           a.Topic,
			FeaturedImage:   a.FeaturedImage,
			CreatedAt:       a.CreatedAt,
		})
		seen[a.Slug] = true
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].CreatedAt.After(existing[j].CreatedAt)
	})

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	logger.Info("Articles index updated", "path", indexPath, "total", len(existing))
	return nil
}

// SaveAll writes every article and refreshes the index. Individual failures
// are logged; the count of successful saves is returned.
func (s *JSONStore) SaveAll(articles []*article.Article) int {
	saved := 0
	for _, a := range articles {
		if _, err := s.SaveArticle(a); err != nil {
			logger.Error("Failed to save article", "slug", a.Slug, "error", err)
			continue
		}
		saved++
	}

	if err := s.UpdateIndex(articles); err != nil {
		logger.Error("Failed to update index", "error", err)
	}

	return saved
}

// LoadAll reads every article JSON in the directory, newest first,
// skipping the index file.
func (s *JSONStore) LoadAll() ([]*article.Article, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read articles dir: %w", err)
	}

	var articles []*article.Article
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == "index.json" || filepath.Ext(name) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			logger.Error("Failed to read article file", "file", name, "error", err)
			continue
		}

		var a article.Article
		if err := json.Unmarshal(data, &a); err != nil {
			logger.Error("Failed to parse article file", "file", name, "error", err)
			continue
		}
		articles = append(articles, &a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})

	return articles, nil
}

// LoadIndex reads index.json, empty when absent.
func (s *JSONStore) LoadIndex() ([]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "index.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return entries, nil
}
