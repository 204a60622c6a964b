package config

const (
	defaultConfigPath             = "~/.config/subsync/config.toml"
	defaultWorkDir                = "~/.local/share/subsync/work"
	defaultLogDir                 = "~/.local/share/subsync/logs"
	defaultOpenSubtitlesCacheDir  = "~/.local/share/subsync/cache/opensubtitles"
	defaultHistoryDB              = "~/.local/share/subsync/history.db"
	defaultWindowMinutes          = 10
	defaultThreshold              = 90
	defaultScorer                 = "token_set"
	defaultReferenceLanguage      = "en"
	defaultOutputSuffix           = ".synced"
	defaultTranslatorProvider     = "llm"
	defaultTranslatorBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultLibreTranslateBaseURL  = "https://libretranslate.com"
	defaultTranslatorModel        = "google/gemini-2.5-flash"
	defaultTranslatorReferer      = "https://github.com/subsync/subsync"
	defaultTranslatorTitle        = "subsync"
	defaultTranslatorTimeout      = 30
	defaultOpenSubtitlesUserAgent = "subsync/dev"
	defaultFFprobeBinary          = "ffprobe"
	defaultFFmpegBinary           = "ffmpeg"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// defaultMarkerPatterns lists provider watermarks and advertisement cues that
// are stripped from the input track before alignment.
var defaultMarkerPatterns = []string{
	`opensubtitles`,
	`subtitles? by`,
	`synced? and corrected`,
	`advertise (your|yours?) product`,
	`http(s)?://`,
	`\bwww\.`,
	`\bsubscene\b`,
	`\byts\b`,
	`\byify\b`,
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:               defaultWorkDir,
			LogDir:                defaultLogDir,
			OpenSubtitlesCacheDir: defaultOpenSubtitlesCacheDir,
			HistoryDB:             defaultHistoryDB,
		},
		Alignment: Alignment{
			WindowMinutes: defaultWindowMinutes,
			Threshold:     defaultThreshold,
			Scorer:        defaultScorer,
		},
		Subtitles: Subtitles{
			ReferenceLanguage: defaultReferenceLanguage,
			MarkerPatterns:    append([]string(nil), defaultMarkerPatterns...),
			OutputSuffix:      defaultOutputSuffix,
		},
		Translator: Translator{
			Provider:       defaultTranslatorProvider,
			BaseURL:        defaultTranslatorBaseURL,
			Model:          defaultTranslatorModel,
			Referer:        defaultTranslatorReferer,
			Title:          defaultTranslatorTitle,
			TimeoutSeconds: defaultTranslatorTimeout,
		},
		OpenSubtitles: OpenSubtitles{
			UserAgent: defaultOpenSubtitlesUserAgent,
		},
		Media: Media{
			FFprobeBinary: defaultFFprobeBinary,
			FFmpegBinary:  defaultFFmpegBinary,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
