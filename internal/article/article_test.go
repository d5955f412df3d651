package article

import (
	"strings"
	"testing"
)

func TestCreateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  Spaces   Everywhere  ", "spaces-everywhere"},
		{"Already-Hyphenated --- Title", "already-hyphenated-title"},
		{"UPPER case", "upper-case"},
		{"Ünïcode stripped", "ncode-stripped"},
	}

	for _, tt := range tests {
		if got := CreateSlug(tt.title); got != tt.want {
			t.Errorf("CreateSlug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestCreateSlugIdempotent(t *testing.T) {
	titles := []string{"Hello, World! 2024", "AI & The Future: What's Next?", "plain"}
	for _, title := range titles {
		once := CreateSlug(title)
		twice := CreateSlug(once)
		if once != twice {
			t.Errorf("CreateSlug not idempotent for %q: %q vs %q", title, once, twice)
		}
	}
}

func TestCountWordsStripsTags(t *testing.T) {
	html := "<h2>Big News</h2>\n<p>Something <strong>important</strong> happened today.</p>"
	if got := CountWords(html); got != 6 {
		t.Errorf("CountWords = %d, want 6", got)
	}
}

func TestReadingTime(t *testing.T) {
	short := "<p>just a few words</p>"
	if got := ReadingTime(short); got != 1 {
		t.Errorf("ReadingTime(short) = %d, want 1", got)
	}

	long := "<p>" + strings.Repeat("word ", 600) + "</p>"
	if got := ReadingTime(long); got != 3 {
		t.Errorf("ReadingTime(600 words) = %d, want 3", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	content := "<p>Quantum computing advances. Quantum processors enable quantum research. " +
		"Computing research continues with the latest processors.</p>"
	got := ExtractKeywords(content, 3)

	if len(got) != 3 {
		t.Fatalf("expected 3 keywords, got %v", got)
	}
	if got[0] != "quantum" {
		t.Errorf("most frequent keyword = %q, want %q", got[0], "quantum")
	}
	for _, kw := range got {
		if len(kw) < 4 {
			t.Errorf("keyword %q shorter than 4 letters", kw)
		}
		if kw == "with" || kw == "the" {
			t.Errorf("stop word %q leaked into keywords", kw)
		}
	}
}

func TestExtractKeywordsStable(t *testing.T) {
	content := "<p>alpha bravo delta alpha bravo delta</p>"
	first := ExtractKeywords(content, 10)
	for i := 0; i < 5; i++ {
		again := ExtractKeywords(content, 10)
		if strings.Join(first, ",") != strings.Join(again, ",") {
			t.Fatalf("keyword order not stable: %v vs %v", first, again)
		}
	}
}

func TestHasStopWords(t *testing.T) {
	if HasStopWords([]string{"quantum", "computing"}) {
		t.Error("clean keywords flagged")
	}
	if !HasStopWords([]string{"quantum", "that"}) {
		t.Error("stop word not detected")
	}
}
