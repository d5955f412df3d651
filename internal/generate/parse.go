package generate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	titleRe    = regexp.MustCompile(`(?i)TITLE:\s*(.+)`)
	metaRe     = regexp.MustCompile(`(?i)META:\s*(.+)`)
	categoryRe = regexp.MustCompile(`(?i)CATEGORY:\s*(.+)`)
	contentRe  = regexp.MustCompile(`(?is)CONTENT:\s*(.+)`)
)

type parsed struct {
	Title           string
	MetaDescription string
	Category        string
	Content         string
}

// parseResponse extracts the marked sections of a model response. When the
// markers are missing the whole response becomes the content and the topic
// stands in for the title, so a sloppy model answer still yields an article.
func parseResponse(raw, topic string) parsed {
	title := firstMatch(titleRe, raw)
	meta := firstMatch(metaRe, raw)
	category := firstMatch(categoryRe, raw)
	content := firstMatch(contentRe, raw)

	if title == "" || meta == "" || content == "" {
		return parsed{
			Title:           topic,
			MetaDescription: fmt.Sprintf("Learn about %s", topic),
			Category:        defaultCategory(category),
			Content:         strings.TrimSpace(raw),
		}
	}

	return parsed{
		Title:           title,
		MetaDescription: meta,
		Category:        defaultCategory(category),
		Content:         content,
	}
}

func defaultCategory(category string) string {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return "TECH"
	}
	return category
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
