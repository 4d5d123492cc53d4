package filter

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const (
	badgerSchemaKey      = "meta/schema"
	badgerArtifactPrefix = "artifact/"
)

// BadgerStore keeps artifacts in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if needed) a BadgerDB at dir. An empty dir
// opens an in-memory database. An incompatible schema stamp drops all data.
func OpenBadgerStore(dir string, logger zerolog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	s := &BadgerStore{db: db}

	stamp, ok := s.get(badgerSchemaKey)
	if ok && compatibleSchema(string(stamp)) {
		return s, nil
	}
	if ok {
		logger.Info().Str("found", string(stamp)).Str("want", storeSchema).
			Msg("artifact cache schema changed, clearing")
	}
	if err := s.Clear(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.set(badgerSchemaKey, []byte(storeSchema)); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BadgerStore) Get(key string) ([]byte, bool) {
	return s.get(badgerArtifactPrefix + key)
}

func (s *BadgerStore) Put(key string, value []byte) error {
	return s.set(badgerArtifactPrefix+key, value)
}

// Clear drops every key, including the schema stamp.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return value, true
}

func (s *BadgerStore) set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger put %s: %w", key, err)
	}
	return nil
}

// badgerLogger routes BadgerDB's internal logging to zerolog. Info and debug
// chatter is demoted to trace.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(f string, v ...any) {
	l.logger.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l *badgerLogger) Warningf(f string, v ...any) {
	l.logger.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l *badgerLogger) Infof(f string, v ...any) {
	l.logger.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l *badgerLogger) Debugf(f string, v ...any) {
	l.logger.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}
