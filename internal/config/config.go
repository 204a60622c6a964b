package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	WorkDir               string `toml:"work_dir"`
	LogDir                string `toml:"log_dir"`
	OpenSubtitlesCacheDir string `toml:"opensubtitles_cache_dir"`
	HistoryDB             string `toml:"history_db"`
}

// Alignment contains the tuning knobs of the offset search.
type Alignment struct {
	// WindowMinutes bounds the reference candidates to cues ending within
	// the first N minutes. Default: 10
	WindowMinutes float64 `toml:"window_minutes"`
	// Threshold is the similarity score (0-100) a candidate must strictly
	// exceed to be accepted. Default: 90
	Threshold int `toml:"threshold"`
	// Scorer selects the similarity measure: "token_set" or "cosine".
	Scorer string `toml:"scorer"`
}

// Subtitles contains track languages and cue filtering configuration.
type Subtitles struct {
	ReferenceLanguage string   `toml:"reference_language"`
	InputLanguage     string   `toml:"input_language"`
	MarkerPatterns    []string `toml:"marker_patterns"`
	OutputSuffix      string   `toml:"output_suffix"`
}

// Translator contains configuration for the cross-lingual lead cue translation.
type Translator struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenSubtitles contains catalogue credentials used when a track must be downloaded.
type OpenSubtitles struct {
	Enabled   bool   `toml:"enabled"`
	APIKey    string `toml:"api_key"`
	UserAgent string `toml:"user_agent"`
	UserToken string `toml:"user_token"`
	BaseURL   string `toml:"base_url"`
}

// Media contains external tool names used for container inspection and extraction.
type Media struct {
	FFprobeBinary string `toml:"ffprobe_binary"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
}

// History controls the persisted run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subsync.
//
// Configuration sections by subsystem:
//   - Paths: work, log and cache directories plus the history database
//   - Alignment: window, threshold and scorer selection
//   - Subtitles: reference/input languages, marker patterns, output naming
//   - Translator: provider and connection settings
//   - OpenSubtitles: catalogue credentials for download fallback
//   - Media: ffprobe/ffmpeg binaries
//   - History: run ledger toggle
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Alignment     Alignment     `toml:"alignment"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Translator    Translator    `toml:"translator"`
	OpenSubtitles OpenSubtitles `toml:"opensubtitles"`
	Media         Media         `toml:"media"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work and log directories. The catalogue cache
// is created lazily by the cache itself.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Window returns the reference candidate window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Alignment.WindowMinutes * float64(time.Minute))
}

// FFprobeBinary returns the ffprobe executable used for container inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Media.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// FFmpegBinary returns the ffmpeg executable used for subtitle extraction.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Media.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// TranslatorConfig contains the connection settings handed to translation providers.
type TranslatorConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetTranslator returns the trimmed translator settings.
func (c *Config) GetTranslator() TranslatorConfig {
	return TranslatorConfig{
		Provider:       strings.TrimSpace(c.Translator.Provider),
		APIKey:         strings.TrimSpace(c.Translator.APIKey),
		BaseURL:        strings.TrimSpace(c.Translator.BaseURL),
		Model:          strings.TrimSpace(c.Translator.Model),
		Referer:        strings.TrimSpace(c.Translator.Referer),
		Title:          strings.TrimSpace(c.Translator.Title),
		TimeoutSeconds: c.Translator.TimeoutSeconds,
	}
}

// OpenSubtitlesReady reports whether catalogue downloads can be attempted and,
// when not, why.
func (c *Config) OpenSubtitlesReady() (bool, string) {
	if !c.OpenSubtitles.Enabled {
		return false, "opensubtitles.enabled is false"
	}
	if strings.TrimSpace(c.OpenSubtitles.APIKey) == "" {
		return false, "opensubtitles.api_key not set (or OPENSUBTITLES_API_KEY)"
	}
	return true, ""
}
