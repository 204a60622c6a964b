package opensubtitles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subsync/internal/fileutil"
)

// CacheEntry captures metadata about a cached OpenSubtitles download.
type CacheEntry struct {
	FileID       int64     `json:"file_id"`
	Language     string    `json:"language"`
	FileName     string    `json:"file_name"`
	DownloadURL  string    `json:"download_url"`
	MovieHash    string    `json:"moviehash,omitempty"`
	FeatureTitle string    `json:"feature_title,omitempty"`
	FeatureYear  int       `json:"feature_year,omitempty"`
	StoredAt     time.Time `json:"stored_at"`
}

// CacheResult represents a cache hit including the on-disk payload path.
type CacheResult struct {
	Entry CacheEntry
	Path  string
}

// Cache persists OpenSubtitles payloads locally to avoid repeat downloads.
// Writes are serialized across processes with a per-file lock.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// NewCache initialises a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Dir exposes the backing directory for inspection.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Load returns the cached payload for fileID when present.
func (c *Cache) Load(fileID int64) (CacheResult, bool, error) {
	if c == nil {
		return CacheResult{}, false, errors.New("cache unavailable")
	}
	if fileID <= 0 {
		return CacheResult{}, false, errors.New("invalid file id")
	}
	dataPath := c.dataPath(fileID)
	if _, err := os.Stat(dataPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CacheResult{}, false, nil
		}
		return CacheResult{}, false, fmt.Errorf("stat cache data: %w", err)
	}
	metaBytes, err := os.ReadFile(c.metaPath(fileID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// orphaned payload; treat as a miss so the caller refreshes it
			_ = os.Remove(dataPath)
			return CacheResult{}, false, nil
		}
		return CacheResult{}, false, fmt.Errorf("read cache metadata: %w", err)
	}
	var entry CacheEntry
	if err := json.Unmarshal(metaBytes, &entry); err != nil {
		return CacheResult{}, false, fmt.Errorf("decode cache metadata: %w", err)
	}
	if entry.FileID == 0 {
		entry.FileID = fileID
	}
	return CacheResult{Entry: entry, Path: dataPath}, true, nil
}

// Store writes the payload and its metadata and returns the data path.
func (c *Cache) Store(ctx context.Context, entry CacheEntry, data []byte) (string, error) {
	if c == nil {
		return "", errors.New("cache unavailable")
	}
	if entry.FileID <= 0 {
		return "", errors.New("invalid file id")
	}
	entry.Language = strings.TrimSpace(entry.Language)
	entry.FileName = strings.TrimSpace(entry.FileName)
	entry.DownloadURL = strings.TrimSpace(entry.DownloadURL)
	entry.StoredAt = time.Now().UTC()

	dataPath := c.dataPath(entry.FileID)
	unlock, err := fileutil.Lock(ctx, dataPath)
	if err != nil {
		return "", fmt.Errorf("lock cache entry: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := fileutil.WriteFileAtomic(dataPath, data, 0o644); err != nil {
		return "", err
	}
	metaBytes, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.metaPath(entry.FileID), metaBytes, 0o644); err != nil {
		return "", err
	}
	if c.logger != nil {
		c.logger.Debug("opensubtitles cache stored",
			slog.Int64("file_id", entry.FileID),
			slog.String("path", dataPath),
			slog.String("language", entry.Language),
		)
	}
	return dataPath, nil
}

func (c *Cache) dataPath(fileID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d.srt", fileID))
}

func (c *Cache) metaPath(fileID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d.json", fileID))
}
