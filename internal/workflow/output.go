package workflow

import (
	"path/filepath"
	"strings"

	"subsync/internal/language"
	"subsync/internal/sources"
	"subsync/internal/subtitles"
)

// DefaultOutputPath derives where a synchronized track is written when no
// output path was given.
//
// A subtitle-file input becomes "<stem><suffix><ext>" beside it. An input
// taken from a container or the catalogue is named after the video it
// belongs to as "<video-stem>.<lang><suffix>.srt".
func DefaultOutputPath(req Request, input sources.Track, suffix string) string {
	if input.Origin == sources.OriginFile && req.InputPath != "" {
		ext := filepath.Ext(req.InputPath)
		stem := strings.TrimSuffix(req.InputPath, ext)
		return stem + suffix + ext
	}
	video := req.InputPath
	if video == "" {
		video = req.ReferencePath
	}
	stem := strings.TrimSuffix(video, filepath.Ext(video))
	if code := language.ToISO2(input.Language); code != "" {
		stem += "." + code
	}
	return stem + suffix + ".srt"
}

// validOutputPath reports whether path has an extension the serializer knows.
func validOutputPath(path string) bool {
	return subtitles.IsSubtitleFile(path)
}
