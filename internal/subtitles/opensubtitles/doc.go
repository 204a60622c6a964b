// Package opensubtitles is a small client for the OpenSubtitles REST API.
//
// Besides search and download it provides the moviehash used for exact
// file matching, file-name based query hints, candidate ranking, a local
// download cache and a rate limiter with retry.
package opensubtitles
