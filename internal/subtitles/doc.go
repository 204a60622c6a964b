// Package subtitles models a subtitle file as an ordered track of timed cues.
//
// A Track is loaded from any format go-astisub understands, filtered of
// provider watermarks, windowed, shifted by a signed offset and reindexed
// before being written back out. Timestamps are plain time.Duration values
// and may go negative while in memory; Save clamps them at the file boundary.
package subtitles
