// Package sources turns the paths given to a synchronization run into two
// local subtitle files.
//
// A subtitle file is used as-is. A media container is inspected with ffprobe
// and its subtitle stream for the configured language is extracted with
// ffmpeg. When no input path is given, or an input container carries no
// usable stream, the subtitle catalogue is asked for a download. Extraction
// and download artifacts live in a per-run directory removed by
// Resolved.Release.
package sources
