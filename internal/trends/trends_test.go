package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexustopic/autoblog/internal/metrics"
)

func TestNormalize(t *testing.T) {
	items := []TrendingItem{
		{Keyword: "a", Score: 300},
		{Keyword: "b", Score: 150},
		{Keyword: "c", Score: 0},
	}
	Normalize(items)

	if items[0].Score != 100 {
		t.Errorf("max item score = %d, want 100", items[0].Score)
	}
	if items[1].Score != 50 {
		t.Errorf("half item score = %d, want 50", items[1].Score)
	}
	if items[2].Score != 0 {
		t.Errorf("zero item score = %d, want 0", items[2].Score)
	}
}

func TestNormalizeEmptyAndZero(t *testing.T) {
	Normalize(nil)

	items := []TrendingItem{{Keyword: "a", Score: 0}}
	Normalize(items)
	if items[0].Score != 0 {
		t.Errorf("all-zero list should stay zero, got %d", items[0].Score)
	}
}

func TestBoostSingleMatch(t *testing.T) {
	items := []TrendingItem{{Keyword: "Bitcoin reaches record highs", Score: 80}}
	Boost(items)

	if items[0].Score != 120 {
		t.Errorf("score = %d, want 120 (80 * 1.5)", items[0].Score)
	}
	if !items[0].CPCBoost {
		t.Error("CPCBoost flag should be set")
	}
}

// Short padded terms match anywhere once trimmed, so "levels" counts as an
// electric-vehicle hit on top of "bitcoin".
func TestBoostShortTermInsideWord(t *testing.T) {
	items := []TrendingItem{{Keyword: "Bitcoin reaches record levels", Score: 80}}
	Boost(items)

	if items[0].Score != 160 {
		t.Errorf("score = %d, want 160 (80 * 2.0 for two matches)", items[0].Score)
	}
}

func TestBoostFloor(t *testing.T) {
	items := []TrendingItem{{Keyword: "Bitcoin reaches record highs", Score: 10}}
	Boost(items)

	if items[0].Score != 50 {
		t.Errorf("boosted score = %d, want floor of 50", items[0].Score)
	}
}

func TestBoostCap(t *testing.T) {
	items := []TrendingItem{{Keyword: "health insurance tax lawsuit crypto cloud", Score: 40}}
	Boost(items)

	// Six matches would be 4x uncapped; the multiplier caps at 3x.
	if items[0].Score != 120 {
		t.Errorf("score = %d, want 120 (40 * 3.0 cap)", items[0].Score)
	}
}

func TestBoostNoMatch(t *testing.T) {
	items := []TrendingItem{{Keyword: "Gardening tips for spring", Score: 80}}
	Boost(items)

	if items[0].Score != 80 {
		t.Errorf("score = %d, want unchanged 80", items[0].Score)
	}
	if items[0].CPCBoost {
		t.Error("CPCBoost flag should not be set")
	}
}

func TestDeduplicate(t *testing.T) {
	items := []TrendingItem{
		{Keyword: "Quantum Computing Breakthrough", Score: 100},
		{Keyword: "quantum computing breakthrough", Score: 90},  // exact (case)
		{Keyword: "Quantum Computing", Score: 80},               // substring
		{Keyword: "Breakthrough in Quantum Computing", Score: 70}, // word overlap
		{Keyword: "Gardening tips for spring", Score: 60},
	}
	got := Deduplicate(items)

	if len(got) != 2 {
		t.Fatalf("got %d unique items, want 2: %+v", len(got), got)
	}
	if got[0].Keyword != "Quantum Computing Breakthrough" {
		t.Errorf("highest-scored duplicate should win, got %q", got[0].Keyword)
	}
	if got[1].Keyword != "Gardening tips for spring" {
		t.Errorf("distinct keyword should survive, got %q", got[1].Keyword)
	}
}

func TestAggregate(t *testing.T) {
	hn := []TrendingItem{
		{Keyword: "Rust compiler rewrite lands upstream", Source: "hackernews", Score: 300},
		{Keyword: "Gardening tips for spring planting", Source: "hackernews", Score: 150},
	}
	google := []TrendingItem{
		{Keyword: "mortgage rates drop sharply", Source: "google_trends", Score: 10},
	}

	got := Aggregate(hn, google)

	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	// Google item normalizes to 100 (its own max) then boosts 1.5x on
	// "mortgage" to 150, beating the HN max of 100.
	if got[0].Keyword != "mortgage rates drop sharply" {
		t.Errorf("boosted item should rank first, got %q", got[0].Keyword)
	}
	if got[0].Score != 150 {
		t.Errorf("boosted score = %d, want 150", got[0].Score)
	}
	if got[1].Score != 100 {
		t.Errorf("normalized HN max = %d, want 100", got[1].Score)
	}
	if got[2].Score != 50 {
		t.Errorf("normalized HN second = %d, want 50", got[2].Score)
	}
}

// A Google Trends phrase near-duplicating the HackerNews leader normalizes
// to the same 100, and only the stable sort keeps the earlier-listed
// HackerNews item on top when the duplicate collapses.
func TestAggregateCollapsesNearDuplicateAcrossSources(t *testing.T) {
	hn := []TrendingItem{
		{Keyword: "Quantum computing breakthrough announced", Source: "hackernews", Score: 100},
		{Keyword: "Gardening tips for spring planting", Source: "hackernews", Score: 50},
	}
	google := []TrendingItem{
		{Keyword: "quantum computing breakthrough", Source: "google_trends", Score: 7},
	}

	got := Aggregate(hn, google)

	if len(got) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(got), got)
	}
	if got[0].Source != "hackernews" || got[0].Keyword != "Quantum computing breakthrough announced" {
		t.Errorf("tied duplicate should lose to the earlier item, got %+v", got[0])
	}
	if got[0].Score != 100 {
		t.Errorf("top score = %d, want 100", got[0].Score)
	}
	if got[1].Keyword != "Gardening tips for spring planting" || got[1].Score != 50 {
		t.Errorf("second item = %+v, want the gardening item at 50", got[1])
	}
}

type staticFetcher struct {
	name  string
	items []TrendingItem
	err   error
}

func (f *staticFetcher) Name() string { return f.name }

func (f *staticFetcher) Fetch(ctx context.Context) ([]TrendingItem, error) {
	return f.items, f.err
}

func TestFetchAllCountsCollapsedDuplicates(t *testing.T) {
	before := metrics.Global.GetStats()["topics_deduplicated"].(int64)

	s := &Service{fetchers: []Fetcher{
		&staticFetcher{name: "a", items: []TrendingItem{
			{Keyword: "Quantum computing breakthrough", Score: 100},
			{Keyword: "quantum computing breakthrough", Score: 90},
		}},
		&staticFetcher{name: "b", err: errors.New("source down")},
	}}

	got := s.FetchAll(context.Background())
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(got), got)
	}

	after := metrics.Global.GetStats()["topics_deduplicated"].(int64)
	if after-before != 1 {
		t.Errorf("topics_deduplicated advanced by %d, want 1", after-before)
	}
}

func TestRedditFetcherSkipsErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/technology/top.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Forbidden"}`, http.StatusForbidden)
	})
	mux.HandleFunc("/r/worldnews/top.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"title":"Major summit concludes","score":4200,"permalink":"/r/worldnews/comments/abc/"}}
		]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewRedditFetcher(srv.Client(), []string{"technology", "worldnews"}, 5)
	f.baseURL = srv.URL

	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (forbidden subreddit skipped): %+v", len(items), items)
	}
	if items[0].Keyword != "Major summit concludes" || items[0].Score != 4200 {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if items[0].URL != srv.URL+"/r/worldnews/comments/abc/" {
		t.Errorf("URL = %q", items[0].URL)
	}
}

func TestHackerNewsFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]int64{1, 2, 3})
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
		if id == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(hnStory{
			ID:    id,
			Title: fmt.Sprintf("Story %d", id),
			Score: int(id * 100),
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHackerNewsFetcher(srv.Client(), 2)
	f.baseURL = srv.URL

	items, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Limit is 2, story 2 fails, so only story 1 survives.
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	if items[0].Keyword != "Story 1" || items[0].Score != 100 {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if items[0].URL != "https://news.ycombinator.com/item?id=1" {
		t.Errorf("fallback URL = %q", items[0].URL)
	}
}
