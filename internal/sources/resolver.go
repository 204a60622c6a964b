package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subsync/internal/fileutil"
	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/media/ffprobe"
	"subsync/internal/services"
	"subsync/internal/subtitles"
	"subsync/internal/textutil"
)

// Origin describes where a resolved subtitle file came from.
type Origin string

const (
	OriginFile      Origin = "file"
	OriginEmbedded  Origin = "embedded"
	OriginCatalogue Origin = "catalogue"
)

// Inspector lists the streams of a media container.
type Inspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Inspect implements Inspector.
func (f InspectorFunc) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// Extractor writes one subtitle stream of a container to a file.
type Extractor interface {
	ExtractSubtitle(ctx context.Context, source string, streamIndex int, destination string) error
}

// Catalogue finds the best downloadable subtitle per language for a video.
// A language missing from the returned map had no usable result.
type Catalogue interface {
	FindBest(ctx context.Context, video string, languages []string) (map[string]string, error)
}

// Request names the paths and languages of one run.
type Request struct {
	ReferencePath     string
	InputPath         string
	ReferenceLanguage string
	InputLanguage     string
}

// Track is one resolved subtitle file.
type Track struct {
	Path        string
	Origin      Origin
	Language    string
	StreamIndex int
}

// Resolved holds both local subtitle files of a run.
type Resolved struct {
	Reference Track
	Input     Track
	tempDir   string
}

// Release removes any extraction or download artifacts. It is safe to call
// more than once and on a zero Resolved.
func (r *Resolved) Release() error {
	if r == nil || r.tempDir == "" {
		return nil
	}
	dir := r.tempDir
	r.tempDir = ""
	return os.RemoveAll(dir)
}

// TempDir exposes the run artifact directory; empty when nothing was created.
func (r *Resolved) TempDir() string {
	if r == nil {
		return ""
	}
	return r.tempDir
}

// Resolver drives probing, extraction and catalogue downloads.
type Resolver struct {
	inspector    Inspector
	extractor Extractor
	catalogue Catalogue
	workDir   string
	logger    *slog.Logger
}

// NewResolver builds a Resolver. catalogue may be nil when downloads are
// not configured; requests that need one then fail with ErrConfiguration.
func NewResolver(inspector Inspector, extractor Extractor, catalogue Catalogue, workDir string, logger *slog.Logger) *Resolver {
	return &Resolver{
		inspector:    inspector,
		extractor: extractor,
		catalogue: catalogue,
		workDir:   workDir,
		logger:    logging.NewComponentLogger(logger, "sources"),
	}
}

// Resolve produces local subtitle files for req. On error every artifact
// created so far has already been removed.
func (r *Resolver) Resolve(ctx context.Context, req Request) (res Resolved, err error) {
	refLang := strings.TrimSpace(req.ReferenceLanguage)
	inputLang := strings.TrimSpace(req.InputLanguage)

	if err := requireExists(req.ReferencePath, "reference"); err != nil {
		return Resolved{}, err
	}
	if req.InputPath != "" {
		if err := requireExists(req.InputPath, "input"); err != nil {
			return Resolved{}, err
		}
	}

	defer func() {
		if err != nil {
			_ = res.Release()
			res = Resolved{}
		}
	}()

	if req.InputPath == "" {
		if inputLang == "" {
			return res, services.Wrap(services.ErrConfiguration, "sources", "catalogue", "subtitles.input_language is required when no input path is given", nil)
		}
		if fileTag(refLang) == fileTag(inputLang) {
			return res, services.Wrap(services.ErrConfiguration, "sources", "catalogue",
				fmt.Sprintf("reference and input languages are both %q; a single download cannot be aligned with itself", refLang), nil)
		}
		paths, err := r.download(ctx, &res, req.ReferencePath, []string{refLang, inputLang})
		if err != nil {
			return res, err
		}
		res.Reference = Track{Path: paths[refLang], Origin: OriginCatalogue, Language: refLang, StreamIndex: -1}
		res.Input = Track{Path: paths[inputLang], Origin: OriginCatalogue, Language: inputLang, StreamIndex: -1}
		return res, nil
	}

	res.Reference, err = r.resolveReference(ctx, &res, req.ReferencePath, refLang)
	if err != nil {
		return res, err
	}
	res.Input, err = r.resolveInput(ctx, &res, req.InputPath, inputLang)
	if err != nil {
		return res, err
	}
	return res, nil
}

func (r *Resolver) resolveReference(ctx context.Context, res *Resolved, path, lang string) (Track, error) {
	if subtitles.IsSubtitleFile(path) {
		return Track{Path: path, Origin: OriginFile, Language: lang, StreamIndex: -1}, nil
	}
	return r.extractEmbedded(ctx, res, path, lang, "reference")
}

// resolveInput accepts a subtitle file, or a container whose embedded stream
// is used when present and otherwise replaced by a catalogue download.
func (r *Resolver) resolveInput(ctx context.Context, res *Resolved, path, lang string) (Track, error) {
	if subtitles.IsSubtitleFile(path) {
		return Track{Path: path, Origin: OriginFile, Language: lang, StreamIndex: -1}, nil
	}
	track, err := r.extractEmbedded(ctx, res, path, lang, "input")
	if err == nil || !errors.Is(err, services.ErrNoEmbeddedSubtitle) || r.catalogue == nil || lang == "" {
		return track, err
	}
	r.logger.Info("input container has no usable subtitle stream; trying catalogue",
		logging.String("path", path),
		logging.String("language", lang),
	)
	paths, dlErr := r.download(ctx, res, path, []string{lang})
	if dlErr != nil {
		return Track{}, dlErr
	}
	return Track{Path: paths[lang], Origin: OriginCatalogue, Language: lang, StreamIndex: -1}, nil
}

func (r *Resolver) extractEmbedded(ctx context.Context, res *Resolved, path, lang, role string) (Track, error) {
	if r.inspector == nil || r.extractor == nil {
		return Track{}, services.Wrap(services.ErrConfiguration, "sources", "inspect", "media inspector is not configured", nil)
	}
	if lang == "" {
		return Track{}, services.Wrap(services.ErrConfiguration, "sources", "inspect", fmt.Sprintf("no language configured for %s track", role), nil)
	}
	streams, err := r.inspector.Inspect(ctx, path)
	if err != nil {
		return Track{}, services.Wrap(services.ErrExternalTool, "sources", "inspect", path, err)
	}
	stream, ok := selectStream(streams, lang)
	if !ok {
		hint := fmt.Sprintf("no %s subtitle stream in %s", language.DisplayName(lang), filepath.Base(path))
		if len(streams.SubtitleStreamsFor(lang)) > 0 {
			hint += " (only image-based streams)"
		}
		return Track{}, services.Wrap(services.ErrNoEmbeddedSubtitle, "sources", "inspect", hint, nil)
	}

	dir, err := r.ensureTempDir(res)
	if err != nil {
		return Track{}, err
	}
	dest := filepath.Join(dir, fmt.Sprintf("%s.%s.srt", role, fileTag(lang)))
	if err := r.extractor.ExtractSubtitle(ctx, path, stream.Index, dest); err != nil {
		return Track{}, services.Wrap(services.ErrExternalTool, "sources", "extract", fmt.Sprintf("stream %d of %s", stream.Index, path), err)
	}
	r.logger.Info("subtitle stream extracted",
		logging.String("role", role),
		logging.Int("stream_index", stream.Index),
		logging.String("codec", stream.CodecName),
		logging.String("language", stream.Language()),
		logging.String("path", dest),
	)
	return Track{Path: dest, Origin: OriginEmbedded, Language: lang, StreamIndex: stream.Index}, nil
}

// selectStream picks the first text stream in lang, preferring full
// subtitles over forced ones.
func selectStream(streams ffprobe.Result, lang string) (ffprobe.Stream, bool) {
	var forced *ffprobe.Stream
	for _, stream := range streams.SubtitleStreamsFor(lang) {
		if !stream.TextBased() {
			continue
		}
		if !stream.Forced() {
			return stream, true
		}
		if forced == nil {
			s := stream
			forced = &s
		}
	}
	if forced != nil {
		return *forced, true
	}
	return ffprobe.Stream{}, false
}

func (r *Resolver) download(ctx context.Context, res *Resolved, video string, languages []string) (map[string]string, error) {
	if r.catalogue == nil {
		return nil, services.Wrap(services.ErrConfiguration, "sources", "catalogue", "subtitle catalogue is not configured (opensubtitles.enabled / api_key)", nil)
	}
	found, err := r.catalogue.FindBest(ctx, video, languages)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "sources", "catalogue", filepath.Base(video), err)
	}
	dir, err := r.ensureTempDir(res)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]string, len(languages))
	for _, lang := range languages {
		src, ok := found[lang]
		if !ok || src == "" {
			return nil, services.Wrap(services.ErrCatalogueMiss, "sources", "catalogue",
				fmt.Sprintf("no %s subtitle for %s", language.DisplayName(lang), filepath.Base(video)), nil)
		}
		dest := filepath.Join(dir, fmt.Sprintf("catalogue.%s%s", fileTag(lang), filepath.Ext(src)))
		if err := fileutil.CopyFileVerified(src, dest); err != nil {
			return nil, services.Wrap(services.ErrCollaborator, "sources", "catalogue", "copy download", err)
		}
		paths[lang] = dest
	}
	return paths, nil
}

func (r *Resolver) ensureTempDir(res *Resolved) (string, error) {
	if res.tempDir != "" {
		return res.tempDir, nil
	}
	if r.workDir != "" {
		if err := os.MkdirAll(r.workDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "sources", "workdir", r.workDir, err)
		}
	}
	dir, err := os.MkdirTemp(r.workDir, "run-*")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "sources", "workdir", "create run directory", err)
	}
	res.tempDir = dir
	return dir, nil
}

// fileTag names a language inside run artifact file names.
func fileTag(lang string) string {
	if code := language.ToISO2(lang); code != "" {
		return code
	}
	return textutil.FileToken(lang, "und")
}

func requireExists(path, role string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrInputNotFound, "sources", "stat", role+" path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrInputNotFound, "sources", "stat", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrInputNotFound, "sources", "stat", path+" is a directory", nil)
	}
	return nil
}
