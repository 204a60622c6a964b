package textutil

import (
	"math"
	"testing"
)

func TestTokenSetRatioKnownValues(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"Hello there", "Hello there", 100},
		{"Hello there!", "hello, THERE", 100},
		{"there hello", "hello there", 100},
		{"fuzzy was a bear", "fuzzy fuzzy was a bear", 100},
		{"hello", "hello there my friend", 100},
		{"hello world", "hello there", 64},
		{"Déjà vu", "deja vu", 100},
		{"abc", "xyz", 0},
		{"", "hello", 0},
		{"!!!", "hello", 0},
	}
	for _, tc := range cases {
		if got := TokenSetRatio(tc.a, tc.b); got != tc.want {
			t.Fatalf("TokenSetRatio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTokenSetRatioSymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"I have a bad feeling about this", "I've got a bad feeling about this"},
		{"May the force be with you", "the force will be with you, always"},
		{"General Kenobi", "You are a bold one"},
	}
	for _, p := range pairs {
		ab, ba := TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0])
		if ab != ba {
			t.Fatalf("asymmetric score for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 100 {
			t.Fatalf("score out of range: %d", ab)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("hello", "hello world"); got != 62 {
		t.Fatalf("Ratio = %d, want 62 (62.5 rounds half to even)", got)
	}
	if got := Ratio("", ""); got != 100 {
		t.Fatalf("identical empty strings should score 100, got %d", got)
	}
	if got := Ratio("", "a"); got != 0 {
		t.Fatalf("empty vs non-empty should score 0, got %d", got)
	}
}

func TestCosineScore(t *testing.T) {
	if got := CosineScore("Hello there", "hello THERE"); got != 100 {
		t.Fatalf("CosineScore identical = %d", got)
	}
	if got := CosineScore("hello there", "general kenobi"); got != 0 {
		t.Fatalf("CosineScore disjoint = %d", got)
	}
	// {hello:1, there:1} . {hello:1, world:1} = 1 / 2
	if got := CosineScore("hello there", "hello world"); got != 50 {
		t.Fatalf("CosineScore half overlap = %d", got)
	}
	if got := CosineScore("", "hello"); got != 0 {
		t.Fatalf("CosineScore empty = %d", got)
	}
}

func TestCosineSimilarityNil(t *testing.T) {
	fp := NewFingerprint("hello")
	if CosineSimilarity(nil, fp) != 0 || CosineSimilarity(fp, nil) != 0 {
		t.Fatal("nil fingerprint should yield 0")
	}
	if got := CosineSimilarity(fp, fp); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self similarity = %f", got)
	}
}

func TestTokenizeFoldsAndSplits(t *testing.T) {
	got := Tokenize("Ça va? I'm FINE-ish, 42")
	want := []string{"ca", "va", "i", "m", "fine", "ish", "42"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
	if NewFingerprint("?!").TokenCount() != 0 {
		t.Fatal("expected nil fingerprint for punctuation")
	}
}
