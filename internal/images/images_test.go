package images

import (
	"context"
	"errors"
	"testing"

	"github.com/nexustopic/autoblog/internal/article"
)

type fakeGenerator struct {
	data     []byte
	mimeType string
	genErr   error
	query    string
	queryErr error
}

func (f *fakeGenerator) GenerateCoverImage(ctx context.Context, title, topic, description string) ([]byte, string, error) {
	return f.data, f.mimeType, f.genErr
}

func (f *fakeGenerator) ImageQuery(ctx context.Context, title, topic, description string) (string, error) {
	return f.query, f.queryErr
}

type fakeUploader struct {
	url  string
	err  error
	name string
}

func (f *fakeUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	f.name = name
	return f.url, f.err
}

type fakeSearcher struct {
	photo   *UnsplashPhoto
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (*UnsplashPhoto, error) {
	f.queries = append(f.queries, query)
	return f.photo, f.err
}

func TestAttachPrefersGenerated(t *testing.T) {
	gen := &fakeGenerator{data: []byte("png"), mimeType: "image/png"}
	up := &fakeUploader{url: "https://cdn.example.com/covers/test-article.png"}
	search := &fakeSearcher{photo: &UnsplashPhoto{URL: "https://images.unsplash.com/x"}}

	f := NewFetcher(gen, up, search, nil)
	a := &article.Article{Slug: "test-article", Title: "Test Article"}
	f.Attach(context.Background(), []*article.Article{a})

	if a.FeaturedImage != up.url {
		t.Errorf("featured image = %q, want generated upload URL", a.FeaturedImage)
	}
	if a.ImageAttribution["source"] != "gemini" {
		t.Errorf("attribution = %v", a.ImageAttribution)
	}
	if len(search.queries) != 0 {
		t.Error("Unsplash should not be queried when generation succeeds")
	}
}

func TestAttachFallsBackToUnsplash(t *testing.T) {
	gen := &fakeGenerator{genErr: errors.New("quota"), query: "circuit board macro"}
	up := &fakeUploader{url: "unused"}
	search := &fakeSearcher{photo: &UnsplashPhoto{
		URL:              "https://images.unsplash.com/photo-1",
		PhotographerName: "Sam Photographer",
	}}

	f := NewFetcher(gen, up, search, nil)
	a := &article.Article{Slug: "chip-news", Title: "Chip News"}
	f.Attach(context.Background(), []*article.Article{a})

	if a.FeaturedImage != "https://images.unsplash.com/photo-1" {
		t.Errorf("featured image = %q", a.FeaturedImage)
	}
	if a.ImageAttribution["source"] != "unsplash" {
		t.Errorf("attribution source = %q", a.ImageAttribution["source"])
	}
	if a.ImageAttribution["photographer_name"] != "Sam Photographer" {
		t.Errorf("photographer = %q", a.ImageAttribution["photographer_name"])
	}
	if len(search.queries) != 1 || search.queries[0] != "circuit board macro" {
		t.Errorf("queries = %v, want the AI-suggested query", search.queries)
	}
}

func TestAttachNoImageLeavesArticleUsable(t *testing.T) {
	gen := &fakeGenerator{genErr: errors.New("down"), queryErr: errors.New("down")}
	search := &fakeSearcher{photo: nil}

	f := NewFetcher(gen, nil, search, nil)
	a := &article.Article{Slug: "no-image", Title: "No Image Available Here"}
	f.Attach(context.Background(), []*article.Article{a})

	if a.FeaturedImage != "" {
		t.Errorf("featured image = %q, want empty", a.FeaturedImage)
	}
}

func TestAttachSkipsExistingImage(t *testing.T) {
	search := &fakeSearcher{photo: &UnsplashPhoto{URL: "https://images.unsplash.com/x"}}
	f := NewFetcher(nil, nil, search, nil)

	a := &article.Article{Slug: "done", FeaturedImage: "https://cdn.example.com/done.png"}
	f.Attach(context.Background(), []*article.Article{a})

	if len(search.queries) != 0 {
		t.Error("article with existing image should be skipped")
	}
	if a.FeaturedImage != "https://cdn.example.com/done.png" {
		t.Error("existing image overwritten")
	}
}

func TestFallbackQuery(t *testing.T) {
	a := &article.Article{
		Title: "The New Quantum Computing Breakthrough That Changes Everything",
		Topic: "SCIENCE",
	}
	got := fallbackQuery(a)

	if got != "Quantum Computing Breakthrough SCIENCE" {
		t.Errorf("fallbackQuery = %q", got)
	}
}
