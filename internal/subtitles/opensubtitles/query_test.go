package opensubtitles

import "testing"

func TestParseFileName(t *testing.T) {
	tests := []struct {
		path string
		want FeatureHint
	}{
		{"/media/The.Movie.2019.1080p.BluRay.x264.mkv", FeatureHint{Title: "The Movie", Year: 2019}},
		{"Blade_Runner_2049_(2017)_remux.mkv", FeatureHint{Title: "Blade Runner 2049", Year: 2017}},
		{"2012.mkv", FeatureHint{Title: "2012"}},
		{"Some.Show.S02E05.720p.mkv", FeatureHint{Title: "Some Show", Season: 2, Episode: 5}},
		{"Plain Title.mp4", FeatureHint{Title: "Plain Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ParseFileName(tt.path); got != tt.want {
				t.Fatalf("ParseFileName(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSearchVariantsOrdersHashFirst(t *testing.T) {
	variants := SearchVariants("abc123", FeatureHint{Title: "The Movie", Year: 2019}, []string{"en"})
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %+v", variants)
	}
	if variants[0].MovieHash != "abc123" || variants[0].Query != "" {
		t.Fatalf("first variant should be hash-only: %+v", variants[0])
	}
	if variants[1].Query != "The Movie" || variants[1].Year != 2019 || variants[1].Languages[0] != "en" {
		t.Fatalf("unexpected title variant: %+v", variants[1])
	}
}

func TestSearchVariantsSkipsEmpty(t *testing.T) {
	if variants := SearchVariants("", FeatureHint{}, nil); len(variants) != 0 {
		t.Fatalf("expected no variants, got %+v", variants)
	}
	if variants := SearchVariants(" ", FeatureHint{Title: "X"}, nil); len(variants) != 1 {
		t.Fatalf("expected title-only variant, got %+v", variants)
	}
}
