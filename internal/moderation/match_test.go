package moderation

import "testing"

func TestDirectSubstringMatch(t *testing.T) {
	res, ok := detectWord("you are an idiot today", "idiot")
	if !ok {
		t.Fatalf("expected a match")
	}
	if res.method != "direct" || res.confidence != 1.0 {
		t.Fatalf("expected direct match at 1.0, got %s at %f", res.method, res.confidence)
	}
}

func TestReverseMatch(t *testing.T) {
	res, ok := detectWord("she said live loudly", "evil")
	if !ok {
		t.Fatalf("expected a match")
	}
	if res.method != "reverse" || res.confidence != 0.9 {
		t.Fatalf("expected reverse match at 0.9, got %s at %f", res.method, res.confidence)
	}
}

func TestFuzzyMatchSuffixMangling(t *testing.T) {
	res, ok := detectWord("what a stupidd thing", "stupid")
	if !ok {
		t.Fatalf("expected a match")
	}
	if res.method != "direct" {
		t.Fatalf("expected direct match on contained word, got %s", res.method)
	}

	res, ok = detectWord("what a stupit thing", "stupid")
	if !ok {
		t.Fatalf("expected a fuzzy match")
	}
	if res.confidence < fuzzyThreshold {
		t.Fatalf("expected confidence >= %f, got %f", fuzzyThreshold, res.confidence)
	}
}

func TestSequenceMatchObfuscated(t *testing.T) {
	res, ok := detectWord("s-t-u-p-i-d", "stupid")
	if !ok {
		t.Fatalf("expected a sequence or fuzzy match, got none")
	}
	if res.confidence < fuzzyThreshold {
		t.Fatalf("expected confidence >= %f, got %f", fuzzyThreshold, res.confidence)
	}
}

func TestNoMatchOnCleanText(t *testing.T) {
	if res, ok := detectWord("hello there friend", "whore"); ok {
		t.Fatalf("did not expect a match, got %s at %f", res.method, res.confidence)
	}
}

func TestJaroSimilarityBounds(t *testing.T) {
	if got := jaroSimilarity("stupid", "stupid"); got != 1 {
		t.Fatalf("expected 1 for identical strings, got %f", got)
	}
	if got := jaroSimilarity("abc", "xyz"); got != 0 {
		t.Fatalf("expected 0 for disjoint strings, got %f", got)
	}
	got := jaroSimilarity("stupid", "stupit")
	if got <= 0.8 || got >= 1 {
		t.Fatalf("expected near-match score in (0.8,1), got %f", got)
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	if got := levenshteinSimilarity("abcd", "abcd"); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := levenshteinSimilarity("abcd", "abce"); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
}

func TestOverlapRatio(t *testing.T) {
	if got := overlapRatio("abc", "cab"); got != 1 {
		t.Fatalf("expected 1 for anagram, got %f", got)
	}
	if got := overlapRatio("aa", "ab"); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}
