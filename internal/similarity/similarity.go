// Package similarity implements the cheap token-overlap heuristics used for
// duplicate-topic detection across the pipeline.
package similarity

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Common words that carry no topical signal. Keyword comparisons filter
// these out so that two headlines sharing only glue words never match.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "has": true, "had": true, "have": true, "will": true,
	"would": true, "could": true, "should": true, "can": true, "may": true,
	"might": true, "but": true, "not": true, "with": true, "from": true,
	"into": true, "its": true, "this": true, "that": true, "how": true,
	"why": true, "what": true, "when": true, "who": true, "which": true,
	"new": true, "about": true, "after": true, "before": true, "over": true,
	"out": true, "your": true, "you": true, "they": true, "them": true,
	"their": true, "these": true, "those": true, "been": true, "being": true,
	"more": true, "most": true, "than": true, "then": true, "now": true,
	"just": true, "here": true, "there": true, "all": true, "any": true,
	"says": true, "said": true,
}

// Tokens extracts the significant words of a text: lowercase alphanumeric
// runs longer than two characters.
func Tokens(text string) map[string]bool {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

// TopicTokens is Tokens with stop words removed, used for title-level
// duplicate checks where glue words would inflate overlap.
func TopicTokens(text string) map[string]bool {
	set := Tokens(text)
	for w := range set {
		if stopWords[w] {
			delete(set, w)
		}
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| over the significant word sets of a and b.
// Either side empty yields 0.
func Jaccard(a, b string) float64 {
	return jaccardSets(Tokens(a), Tokens(b))
}

func jaccardSets(wordsA, wordsB map[string]bool) float64 {
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection) / float64(union)
}

// SameTopic reports whether a and b look like the same topic: containment of
// one stopword-filtered token set in the other counts as a duplicate
// regardless of ratio, otherwise Jaccard overlap against the threshold.
func SameTopic(a, b string, threshold float64) bool {
	wordsA := TopicTokens(a)
	wordsB := TopicTokens(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	if contains(wordsA, wordsB) || contains(wordsB, wordsA) {
		return true
	}

	return jaccardSets(wordsA, wordsB) >= threshold
}

// contains reports whether every token of inner is present in outer.
func contains(outer, inner map[string]bool) bool {
	for w := range inner {
		if !outer[w] {
			return false
		}
	}
	return true
}

// IsStopWord exposes the stop list for keyword hygiene checks.
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}
