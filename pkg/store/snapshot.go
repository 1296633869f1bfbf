package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/recordfile"
)

// snapshot is a parsed copy of one backing file, tagged with the (modtime,
// size) pair of the file version it was parsed from. A snapshot is only
// trusted while the backing file still matches that pair, so external edits
// to the file are picked up on the next read. Snapshots are cached as JSON
// strings so every cache backend can hold them.
type snapshot[T any] struct {
	ModTime int64 `json:"modTime"`
	Size    int64 `json:"size"`
	Records []T   `json:"records"`
}

// cachedRecords returns the cached snapshot for key if it matches the current
// file version. Any cache failure is treated as a miss.
func cachedRecords[T any](ctx context.Context, c cache.Cache, key string, modTime time.Time, size int64) ([]T, bool) {
	val, err := c.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	raw, ok := val.(string)
	if !ok {
		return nil, false
	}

	var snap snapshot[T]
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false
	}
	if snap.ModTime != modTime.UnixNano() || snap.Size != size {
		return nil, false
	}
	return snap.Records, true
}

// cacheRecords stores a snapshot under key. Failures are logged and ignored;
// the next read simply re-parses the file.
func cacheRecords[T any](ctx context.Context, c cache.Cache, key string, modTime time.Time, size int64, records []T) {
	snap := snapshot[T]{
		ModTime: modTime.UnixNano(),
		Size:    size,
		Records: records,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Logger(ctx).WithError(err).WithField("key", key).Warn("failed to marshal snapshot")
		return
	}
	if err := c.Set(ctx, key, string(data), cache.NoExpiration); err != nil {
		logger.Logger(ctx).WithError(err).WithField("key", key).Warn("failed to cache snapshot")
	}
}

// refreshSnapshot re-stats the backing file after a successful write and
// caches the given records as the current snapshot.
func refreshSnapshot[T any](ctx context.Context, c cache.Cache, key string, f *recordfile.File, records []T) {
	modTime, size, err := f.Stat()
	if err != nil {
		dropSnapshot(ctx, c, key)
		return
	}
	cacheRecords(ctx, c, key, modTime, size, records)
}

// dropSnapshot invalidates the cached snapshot so the next read re-parses
// the backing file. Used after failed writes, when on-disk state is unknown.
func dropSnapshot(ctx context.Context, c cache.Cache, key string) {
	if err := c.Delete(ctx, key); err != nil {
		logger.Logger(ctx).WithError(err).WithField("key", key).Warn("failed to drop snapshot")
	}
}

// loadRecords reads the current records of a backing file, serving from the
// snapshot cache when the file is unchanged. parse converts one data line
// into a record; it returns false to skip the line (logging is the parser's
// responsibility).
func loadRecords[T any](ctx context.Context, c cache.Cache, key string, f *recordfile.File,
	parse func(ctx context.Context, line string) (T, bool)) ([]T, error) {

	modTime, size, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if records, ok := cachedRecords[T](ctx, c, key, modTime, size); ok {
		return records, nil
	}

	lines, err := f.ReadLines()
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(lines))
	for _, line := range lines {
		if rec, ok := parse(ctx, line); ok {
			records = append(records, rec)
		}
	}

	cacheRecords(ctx, c, key, modTime, size, records)
	return records, nil
}
