// Package dedup decides whether a candidate topic would duplicate content
// that already exists: persisted article titles, recently seen trending
// keywords, or topics accepted earlier in the current batch. A cheap token
// overlap test runs first; an optional LLM oracle double-checks accepted
// titles after generation.
package dedup

import (
	"context"

	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/similarity"
)

// Thresholds per corpus. Titles use a stricter cut than keyword lists
// because a persisted title is a confirmed publication.
const (
	titleThreshold   = 0.4
	keywordThreshold = 0.35
	batchThreshold   = 0.35
)

// Oracle answers the semantic yes/no duplicate question. Implemented by the
// Gemini client; nil disables the check.
type Oracle interface {
	IsDuplicateTopic(ctx context.Context, title string, existing []string) (bool, error)
}

type Checker struct {
	existingTitles []string
	recentKeywords []string
	batch          []string
	oracle         Oracle
}

func NewChecker(existingTitles, recentKeywords []string, oracle Oracle) *Checker {
	return &Checker{
		existingTitles: existingTitles,
		recentKeywords: recentKeywords,
		oracle:         oracle,
	}
}

// IsDuplicate reports whether the candidate topic overlaps any known title,
// recent trending keyword, or already-accepted batch topic.
func (c *Checker) IsDuplicate(topic string) bool {
	for _, title := range c.existingTitles {
		if similarity.SameTopic(topic, title, titleThreshold) {
			logger.Info("Topic duplicates existing title", "topic", topic, "title", title)
			return true
		}
	}
	for _, kw := range c.recentKeywords {
		if similarity.SameTopic(topic, kw, keywordThreshold) {
			logger.Info("Topic duplicates recent keyword", "topic", topic, "keyword", kw)
			return true
		}
	}
	for _, accepted := range c.batch {
		if similarity.SameTopic(topic, accepted, batchThreshold) {
			logger.Info("Topic duplicates batch entry", "topic", topic, "accepted", accepted)
			return true
		}
	}
	return false
}

// IsSemanticDuplicate asks the oracle whether the generated title covers the
// same ground as an existing one. Oracle failures count as "not a
// duplicate"; blocking the pipeline on an unavailable model is worse than
// the occasional near-duplicate.
func (c *Checker) IsSemanticDuplicate(ctx context.Context, title string) bool {
	if c.oracle == nil || len(c.existingTitles) == 0 {
		return false
	}

	dup, err := c.oracle.IsDuplicateTopic(ctx, title, c.existingTitles)
	if err != nil {
		logger.Warn("Semantic duplicate check failed, treating as unique", "title", title, "error", err)
		return false
	}
	return dup
}

// Accept records a generated title so later candidates in the same run are
// checked against it.
func (c *Checker) Accept(title string) {
	c.batch = append(c.batch, title)
	c.existingTitles = append(c.existingTitles, title)
}
