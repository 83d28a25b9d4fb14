// Package cache memoizes deterministic fetch-by-parameters operations in
// a bbolt database that survives process restarts. Values are stored as
// JSON under a canonicalized fingerprint of the operation identity and
// its arguments. Writes are transactional, so two identical concurrent
// misses racing to populate the same key cannot corrupt the store.
//
// Caching is best-effort throughout: a failed write is swallowed and a
// corrupt or stale entry reads as a miss. The cache never causes the
// wrapped operation to fail.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// maxKeyLen caps fingerprints so oversized queries cannot produce
// unbounded storage keys.
const maxKeyLen = 200

var bucketResponses = []byte("responses")

// keySanitizer replaces characters that are awkward in storage keys.
var keySanitizer = strings.NewReplacer(" ", "_", "/", "_")

// Store is a persistent response cache backed by bbolt.
type Store struct {
	db  *bolt.DB
	log *slog.Logger
}

// envelope wraps a cached value with the time it was recorded, so reads
// can treat entries older than the configured TTL as misses.
type envelope struct {
	RecordedAt time.Time       `json:"recorded_at"`
	Data       json.RawMessage `json:"data"`
}

// NewStore opens (or creates) the cache database at the given path,
// creating parent directories as needed.
func NewStore(path string, log *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached bytes for key. Absent, unreadable and stale
// entries all read as a miss. A non-positive maxAge disables the
// freshness check and entries persist indefinitely.
func (s *Store) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketResponses)
		if bucket == nil {
			return nil
		}
		if val := bucket.Get([]byte(key)); val != nil {
			raw = make([]byte, len(val))
			copy(raw, val)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		// Corrupt entry reads as a miss, never as an error.
		s.log.WarnContext(ctx, "Discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}

	if maxAge > 0 && time.Since(env.RecordedAt) > maxAge {
		s.log.DebugContext(ctx, "Cache entry is stale", "key", key, "recorded_at", env.RecordedAt)
		return nil, false
	}

	return env.Data, true
}

// Put stores data under key, overwriting any previous entry.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	raw, err := json.Marshal(envelope{RecordedAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal cache envelope: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket, berr := tx.CreateBucketIfNotExists(bucketResponses)
		if berr != nil {
			return berr
		}
		return bucket.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	s.log.DebugContext(ctx, "Cached response", "key", key, "bytes", len(raw))
	return nil
}

// Key identifies one invocation of a cacheable operation: the operation
// name, its positional arguments in call order, and its keyword
// arguments.
type Key struct {
	Op   string
	Args []any
	KW   map[string]any
}

// Fingerprint derives the deterministic storage key. Positional
// arguments keep their call order; keyword arguments are canonicalized
// by sorting on key, so two logically identical calls always hit the
// same entry regardless of how the caller assembled the map. Spaces and
// path separators are replaced and the result is length-capped.
func (k Key) Fingerprint() string {
	parts := make([]string, 0, 2+len(k.Args))
	parts = append(parts, k.Op)
	for _, arg := range k.Args {
		parts = append(parts, fmt.Sprint(arg))
	}

	if len(k.KW) > 0 {
		names := make([]string, 0, len(k.KW))
		for name := range k.KW {
			names = append(names, name)
		}
		sort.Strings(names)

		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s:%v", name, k.KW[name]))
		}
		parts = append(parts, strings.Join(pairs, "_"))
	}

	fingerprint := keySanitizer.Replace(strings.Join(parts, "_"))
	if len(fingerprint) > maxKeyLen {
		fingerprint = fingerprint[:maxKeyLen]
	}

	return fingerprint
}

// Do memoizes fn under the given key. On a hit the stored result is
// decoded and fn never runs. On a miss fn runs once, its result is
// stored best-effort, and the fresh result is returned. The second
// return value reports whether the call was served from the cache.
//
// fn's error is returned untouched; nothing is cached on failure.
func Do[T any](
	ctx context.Context,
	store *Store,
	key Key,
	ttl time.Duration,
	fn func(context.Context) (T, error),
) (T, bool, error) {
	var result T

	fingerprint := key.Fingerprint()
	if data, ok := store.Get(ctx, fingerprint, ttl); ok {
		if err := json.Unmarshal(data, &result); err == nil {
			return result, true, nil
		}
		// A payload that no longer decodes into T is treated as a miss.
		store.log.WarnContext(ctx, "Cached payload does not decode, recomputing", "key", fingerprint)
	}

	result, err := fn(ctx)
	if err != nil {
		return result, false, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		store.log.WarnContext(ctx, "Failed to marshal result for caching", "key", fingerprint, "error", err)
		return result, false, nil
	}
	if err = store.Put(ctx, fingerprint, data); err != nil {
		// Best-effort: a failed write never fails the primary operation.
		store.log.WarnContext(ctx, "Failed to store cache entry", "key", fingerprint, "error", err)
	}

	return result, false, nil
}
