package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/austincho/crystal-protocol/option"
	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for a BadgerDB backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is
	// true.
	Path string

	// InMemory keeps the database in memory only.
	InMemory bool

	// SyncWrites syncs every write to disk before it is acknowledged.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs. If nil they are discarded.
	Logger *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

var _ option.Store = &Badger{}

// Badger is a store persisting the record in BadgerDB.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens the BadgerDB database described by the config. The
// caller must call Close when done.
func OpenBadger(c BadgerConfig) (*Badger, error) {
	if !c.InMemory && c.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if c.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		err := os.MkdirAll(c.Path, 0750)
		if err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", c.Path, err)
		}
		opts = badger.DefaultOptions(c.Path)
	}
	opts = opts.WithSyncWrites(c.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if c.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: c.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) Load(ctx context.Context) (option.Record, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = get(txn, Key)
		return err
	})
	if err != nil {
		return option.Record{}, err
	}
	return decodeRecord(value)
}

// Save writes the record and the current contract info in a single
// transaction.
func (b *Badger) Save(ctx context.Context, r option.Record) error {
	record, info, err := encode(r)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(Key), record); err != nil {
			return err
		}
		return txn.Set([]byte(InfoKey), info)
	})
	if err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// ContractInfo returns the contract info saved with the record.
func (b *Badger) ContractInfo(ctx context.Context) (option.ContractInfo, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = get(txn, InfoKey)
		return err
	})
	if err != nil {
		return option.ContractInfo{}, err
	}
	return decodeInfo(value)
}

func get(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("reading %s: %w", key, option.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}
