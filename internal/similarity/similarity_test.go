package similarity

import "testing"

func TestTokens(t *testing.T) {
	set := Tokens("AI Tools for Developers in 2024!")
	want := []string{"tools", "for", "developers", "2024"}
	for _, w := range want {
		if !set[w] {
			t.Errorf("expected token %q in set", w)
		}
	}
	if set["ai"] {
		t.Error("two-character words should be dropped")
	}
	if set["in"] {
		t.Error("two-character words should be dropped")
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "quantum computing breakthrough", "quantum computing breakthrough", 1.0},
		{"disjoint", "quantum computing", "gardening tips", 0.0},
		{"empty left", "", "quantum computing", 0.0},
		{"empty right", "quantum computing", "", 0.0},
		{"half overlap", "apple banana", "banana cherry", 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardSymmetry(t *testing.T) {
	a := "openai releases new model"
	b := "new model released by openai"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard should be symmetric")
	}
}

func TestSameTopicContainment(t *testing.T) {
	// Every significant token of the short title appears in the long one,
	// so containment fires even though the Jaccard ratio is low.
	short := "quantum computing"
	long := "quantum computing breakthrough announced research milestone laboratory experiment success"
	if !SameTopic(short, long, 0.9) {
		t.Error("subset containment should count as duplicate regardless of threshold")
	}
	if !SameTopic(long, short, 0.9) {
		t.Error("containment should be checked in both directions")
	}
}

func TestSameTopicThreshold(t *testing.T) {
	a := "apple banana cherry date"
	b := "apple banana grape kiwi"
	// Overlap 2/6 = 0.333...
	if SameTopic(a, b, 0.4) {
		t.Error("overlap below threshold should not match")
	}
	if !SameTopic(a, b, 0.3) {
		t.Error("overlap above threshold should match")
	}
}

func TestSameTopicStopWordsIgnored(t *testing.T) {
	a := "the new rules for the web"
	b := "the new plans for the garden"
	// Shared words are all stop words or too short; no topical overlap.
	if SameTopic(a, b, 0.3) {
		t.Error("stop-word overlap alone should not make topics match")
	}
}

func TestSameTopicEmpty(t *testing.T) {
	if SameTopic("", "quantum computing", 0.1) {
		t.Error("empty text should never match")
	}
	if SameTopic("the and for", "the and for", 0.1) {
		t.Error("stop-word-only text should never match")
	}
}

func TestIsStopWord(t *testing.T) {
	if !IsStopWord("the") || !IsStopWord("The") {
		t.Error("stop word lookup should be case-insensitive")
	}
	if IsStopWord("quantum") {
		t.Error("quantum is not a stop word")
	}
}
