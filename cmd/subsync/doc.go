// Command subsync aligns a subtitle track with a reference track by a single
// constant offset.
//
// The sync command resolves both tracks (subtitle files, embedded streams or
// OpenSubtitles downloads), matches the first input cue against the opening
// reference cues and writes the shifted track. inspect, check, history and
// config provide the supporting tooling. Exit status follows the error
// classes in internal/services.
package main
