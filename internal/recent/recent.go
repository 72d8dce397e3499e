// Package recent tracks the most recently opened archives.
package recent

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"zipexplorer/internal/domain"
	"zipexplorer/internal/metrics"
)

const (
	StorageKey = "recentZips"
	MaxEntries = 5
)

// Cache is an ordered, most-recent-first list of archives without duplicate
// paths. Storage problems are logged and never reach the caller.
type Cache struct {
	storage Storage
	logger  *zap.Logger
	entries []domain.RecentArchive
	// readFailed is set when the last Load could not read storage; the
	// stored history is unknown and must not be overwritten blindly.
	readFailed bool
}

func New(storage Storage, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{storage: storage, logger: logger.Named("recent")}
}

func (cache *Cache) Load() []domain.RecentArchive {
	cache.entries = nil
	stored, err := cache.readStored()
	cache.readFailed = err != nil
	if err != nil {
		cache.logger.Warn("read recent archives", zap.Error(err))
		return cache.Entries()
	}
	cache.entries = stored
	return cache.Entries()
}

// readStored returns the persisted list. Undecodable data yields an empty
// list; only storage read errors are returned.
func (cache *Cache) readStored() ([]domain.RecentArchive, error) {
	raw, ok, err := cache.storage.GetItem(StorageKey)
	if errors.Is(err, ErrCorruptStorage) {
		cache.logger.Warn("discard corrupt recent archives", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var stored []domain.RecentArchive
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		cache.logger.Warn("decode recent archives", zap.Error(err))
		return nil, nil
	}
	return sanitize(stored), nil
}

// Record moves path to the front of the list, persists the list and returns
// it.
func (cache *Cache) Record(path string) []domain.RecentArchive {
	entry := domain.RecentArchive{Path: path, Name: DisplayName(path)}
	entries := make([]domain.RecentArchive, 0, MaxEntries)
	entries = append(entries, entry)
	for _, existing := range cache.entries {
		if existing.Path == path {
			continue
		}
		entries = append(entries, existing)
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	cache.entries = entries
	cache.persist()
	return cache.Entries()
}

func (cache *Cache) Entries() []domain.RecentArchive {
	return append([]domain.RecentArchive{}, cache.entries...)
}

func (cache *Cache) persist() {
	if cache.readFailed {
		stored, err := cache.readStored()
		if err != nil {
			metrics.RecordPersistFailure()
			cache.logger.Warn("skip persisting recent archives", zap.Error(err), zap.Int("entries", len(cache.entries)))
			return
		}
		cache.readFailed = false
		cache.entries = sanitize(append(cache.entries, stored...))
	}
	data, err := json.Marshal(cache.entries)
	if err == nil {
		err = cache.storage.SetItem(StorageKey, string(data))
	}
	if err != nil {
		metrics.RecordPersistFailure()
		cache.logger.Warn("persist recent archives", zap.Error(err), zap.Int("entries", len(cache.entries)))
	}
}

// DisplayName returns the last segment of path, treating both slash styles
// as separators.
func DisplayName(path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return path
	}
	return segments[len(segments)-1]
}

func sanitize(stored []domain.RecentArchive) []domain.RecentArchive {
	seen := make(map[string]bool, len(stored))
	entries := make([]domain.RecentArchive, 0, MaxEntries)
	for _, entry := range stored {
		if entry.Path == "" || seen[entry.Path] {
			continue
		}
		seen[entry.Path] = true
		if entry.Name == "" {
			entry.Name = DisplayName(entry.Path)
		}
		entries = append(entries, entry)
		if len(entries) == MaxEntries {
			break
		}
	}
	return entries
}
