// Package article defines the article model shared by generation,
// persistence and the maintenance utilities, plus the text metrics
// (slug, word count, reading time, keywords) derived from content.
package article

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nexustopic/autoblog/internal/similarity"
	"github.com/nexustopic/autoblog/internal/trends"
)

type Author struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// DefaultAuthor is attached to every generated article.
var DefaultAuthor = Author{
	Name: "NexusTopic Editorial Team",
	Bio:  "Delivering the latest trending topics and insights",
}

type Article struct {
	ID               int64                `json:"id,omitempty"`
	Slug             string               `json:"slug"`
	Title            string               `json:"title"`
	MetaDescription  string               `json:"meta_description"`
	Content          string               `json:"content"`
	Keywords         []string             `json:"keywords"`
	ReadingTime      int                  `json:"reading_time"`
	WordCount        int                  `json:"word_count"`
	Topic            string               `json:"topic"`
	Published        bool                 `json:"published"`
	FeaturedImage    string               `json:"featured_image"`
	ImageAttribution map[string]string    `json:"image_attribution,omitempty"`
	Author           Author               `json:"author"`
	SourceData       *trends.TrendingItem `json:"source_data,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

var (
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	slugCleanRe   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugHyphenRe  = regexp.MustCompile(`-+`)
	keywordWordRe = regexp.MustCompile(`\b[a-z]{4,}\b`)
)

// CreateSlug derives a URL-safe identifier from a title. Re-applying it to
// its own output returns the same slug.
func CreateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugCleanRe.ReplaceAllString(slug, "")
	slug = slugSpaceRe.ReplaceAllString(slug, "-")
	slug = slugHyphenRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// StripTags removes HTML markup so text metrics count words, not tags.
func StripTags(html string) string {
	return tagRe.ReplaceAllString(html, "")
}

// CountWords counts whitespace-separated words in tag-stripped text.
func CountWords(html string) int {
	return len(strings.Fields(StripTags(html)))
}

// ReadingTime estimates minutes at 200 words per minute, never below 1.
func ReadingTime(html string) int {
	minutes := int(math.Round(float64(CountWords(html)) / 200.0))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ExtractKeywords returns the max most frequent non-stopword words of at
// least four letters, most frequent first. Ties break alphabetically so the
// result is stable.
func ExtractKeywords(content string, max int) []string {
	clean := strings.ToLower(StripTags(content))
	words := keywordWordRe.FindAllString(clean, -1)

	freq := make(map[string]int)
	for _, w := range words {
		if similarity.IsStopWord(w) {
			continue
		}
		freq[w]++
	}

	unique := make([]string, 0, len(freq))
	for w := range freq {
		unique = append(unique, w)
	}
	sort.Slice(unique, func(i, j int) bool {
		if freq[unique[i]] != freq[unique[j]] {
			return freq[unique[i]] > freq[unique[j]]
		}
		return unique[i] < unique[j]
	})

	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

// HasStopWords reports whether any stored keyword is a stop word, meaning
// the list predates stopword filtering and should be regenerated.
func HasStopWords(keywords []string) bool {
	for _, kw := range keywords {
		if similarity.IsStopWord(kw) {
			return true
		}
	}
	return false
}
