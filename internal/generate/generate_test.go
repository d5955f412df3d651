package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nexustopic/autoblog/internal/dedup"
	"github.com/nexustopic/autoblog/internal/trends"
)

func TestParseResponse(t *testing.T) {
	raw := "TITLE: Quantum Leap for Laptops\n" +
		"META: How quantum chips change portable computing.\n" +
		"CATEGORY: TECH\n" +
		"CONTENT:\n<h2>Intro</h2>\n<p>Body text.</p>"

	p := parseResponse(raw, "quantum laptops")

	if p.Title != "Quantum Leap for Laptops" {
		t.Errorf("title = %q", p.Title)
	}
	if p.MetaDescription != "How quantum chips change portable computing." {
		t.Errorf("meta = %q", p.MetaDescription)
	}
	if p.Category != "TECH" {
		t.Errorf("category = %q", p.Category)
	}
	if !strings.HasPrefix(p.Content, "<h2>Intro</h2>") {
		t.Errorf("content = %q", p.Content)
	}
}

func TestParseResponseFallback(t *testing.T) {
	raw := "<p>The model ignored the format and just wrote an article.</p>"
	p := parseResponse(raw, "quantum laptops")

	if p.Title != "quantum laptops" {
		t.Errorf("fallback title = %q, want topic", p.Title)
	}
	if p.MetaDescription != "Learn about quantum laptops" {
		t.Errorf("fallback meta = %q", p.MetaDescription)
	}
	if p.Content != raw {
		t.Errorf("fallback content should be the whole response, got %q", p.Content)
	}
	if p.Category != "TECH" {
		t.Errorf("fallback category = %q, want TECH", p.Category)
	}
}

type fakeProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const sampleResponse = "TITLE: Sample Article Title\n" +
	"META: A sample meta description.\n" +
	"CATEGORY: SCIENCE\n" +
	"CONTENT:\n<h2>Heading</h2><p>Some body content with several useful words.</p>"

func TestGenerateProviderFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("auth failure")}
	backup := &fakeProvider{name: "backup", response: sampleResponse}

	g := NewGenerator([]Provider{primary, backup}, nil, Options{
		MinWords: 100, MaxWords: 200, TargetAudience: "testers",
	})

	a, err := g.Generate(context.Background(), "sample topic")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1 (no retry on non-rate-limit errors)", primary.calls)
	}
	if a.Title != "Sample Article Title" {
		t.Errorf("title = %q", a.Title)
	}
	if a.Slug != "sample-article-title" {
		t.Errorf("slug = %q", a.Slug)
	}
	if a.Topic != "SCIENCE" {
		t.Errorf("topic = %q", a.Topic)
	}
	if a.WordCount == 0 || a.ReadingTime != 1 {
		t.Errorf("metrics not computed: words=%d reading=%d", a.WordCount, a.ReadingTime)
	}
}

func TestGenerateAllProvidersFail(t *testing.T) {
	p := &fakeProvider{name: "only", err: errors.New("boom")}
	g := NewGenerator([]Provider{p}, nil, Options{MinWords: 100, MaxWords: 200})

	if _, err := g.Generate(context.Background(), "topic"); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestGenerateBatchSkipsDuplicates(t *testing.T) {
	provider := &fakeProvider{name: "fake", response: sampleResponse}
	g := NewGenerator([]Provider{provider}, nil, Options{MinWords: 100, MaxWords: 200})

	checker := dedup.NewChecker([]string{"sample topic already covered in depth"}, nil, nil)
	topics := []trends.TrendingItem{
		{Keyword: "sample topic already covered"},
		{Keyword: "completely different subject matter"},
	}

	articles := g.GenerateBatch(context.Background(), topics, 2, checker)

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (first topic is a duplicate)", len(articles))
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if articles[0].SourceData == nil || articles[0].SourceData.Keyword != "completely different subject matter" {
		t.Errorf("source data not attached: %+v", articles[0].SourceData)
	}
}
