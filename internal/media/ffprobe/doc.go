// Package ffprobe runs ffprobe and decodes the streams and format sections of
// its JSON report, with helpers for picking subtitle streams by language.
package ffprobe
