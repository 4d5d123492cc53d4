package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/sofmeright/coffeefreight/src/config"
)

// storeSchema versions the persisted entry layout. Stores stamped with a
// different major or minor version are cleared on open.
const storeSchema = "1.0.0"

const defaultMemoryEntries = 4096

// Store holds derived artifacts keyed by fingerprint. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Clear() error
	Close() error
}

// OpenStore returns the store selected by opts. Without Persist, artifacts
// live in memory for as long as the store is open, which still serves
// rebuilds in watch mode.
func OpenStore(opts config.Options, rootDir string, logger zerolog.Logger) (Store, error) {
	if !opts.Persist {
		return NewMemoryStore(defaultMemoryEntries)
	}
	dir := opts.CacheDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootDir, dir)
	}
	switch opts.CacheBackend {
	case config.CacheBackendBadger:
		return OpenBadgerStore(filepath.Join(dir, "badger"), logger)
	default:
		return OpenDirStore(filepath.Join(dir, "artifacts"), logger)
	}
}

// compatibleSchema reports whether a store stamped with stamp can be read by
// this build.
func compatibleSchema(stamp string) bool {
	have, err := semver.NewVersion(strings.TrimSpace(stamp))
	if err != nil {
		return false
	}
	want, err := semver.NewConstraint("~" + storeSchema)
	if err != nil {
		return false
	}
	return want.Check(have)
}

// DirStore keeps one file per artifact under a directory.
type DirStore struct {
	dir string
}

// OpenDirStore opens (creating if needed) a directory store. An existing store
// with an incompatible schema stamp is cleared.
func OpenDirStore(dir string, logger zerolog.Logger) (*DirStore, error) {
	s := &DirStore{dir: dir}
	stampPath := filepath.Join(dir, "SCHEMA")

	stamp, err := os.ReadFile(stampPath)
	if err == nil && compatibleSchema(string(stamp)) {
		return s, nil
	}
	if err == nil {
		logger.Info().Str("found", strings.TrimSpace(string(stamp))).Str("want", storeSchema).
			Msg("artifact cache schema changed, clearing")
	}
	if err := s.Clear(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(stampPath, []byte(storeSchema+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("stamping cache dir: %w", err)
	}
	return s, nil
}

// Get retrieves a cached artifact. Returns nil, false on cache miss.
func (s *DirStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores an artifact. The write goes through a temp file so concurrent
// readers never see a partial entry.
func (s *DirStore) Put(key string, value []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Clear removes the entire cache directory.
func (s *DirStore) Clear() error {
	return os.RemoveAll(s.dir)
}

func (s *DirStore) Close() error { return nil }

// path returns the filesystem path for a cache key.
// Keys share the build-wide prefix, so the shard comes from the tail.
func (s *DirStore) path(key string) string {
	shard := "00"
	if len(key) >= 2 {
		shard = key[len(key)-2:]
	}
	return filepath.Join(s.dir, shard, key+".json")
}

// MemoryStore is a bounded in-process LRU of artifacts.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore returns a store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(key string) ([]byte, bool) { return s.cache.Get(key) }

func (s *MemoryStore) Put(key string, value []byte) error {
	s.cache.Add(key, value)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.cache.Purge()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
