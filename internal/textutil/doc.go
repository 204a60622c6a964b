// Package textutil holds the text comparison helpers behind cue matching and
// file naming.
//
// Text is folded (case and diacritics) and split on non-alphanumeric runes
// before comparison. TokenSetRatio is the order-insensitive 0..100 score used
// to match a translated cue against reference cues; CosineScore compares
// term-frequency fingerprints on the same scale. The sanitize helpers build
// safe file names for downloaded subtitles.
package textutil
