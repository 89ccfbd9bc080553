// Package badger_engine implements the database engine on top of
// badger. Buckets are emulated with key prefixes: every bucket gets a
// numeric id on creation, its keys are stored as
//
//	dataPrefix | id (8 bytes) | key
//
// Deleting a bucket only removes its catalog entry, the data is dropped
// after the transaction committed and all read transactions that
// started before the commit have ended.
package badger_engine

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.DatabaseEngine = (*DB)(nil)

type DB struct {
	db     *badger.DB
	logger *slog.Logger
	// serializes writers, every write touches the bucket catalog and
	// concurrent transactions would fail with a conflict
	mu      sync.Mutex
	readers readers
}

// Open opens the badger database in the given directory. An
// empty path opens an in memory database.
func Open(path string, logger *slog.Logger) (*DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		logger = slog.Default()
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &DB{db: db, logger: logger}, nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	db.dropUnused()
	db.mu.Unlock()
	return db.db.Close()
}

func (db *DB) ReadTransaction(fn func(tx port.EngineReadTransaction) error) error {
	epoch := db.readers.acquire()
	defer db.releaseReader(epoch)

	return db.db.View(func(txn *badger.Txn) error {
		tx := newReadTransaction(txn)
		defer tx.closeCursors()
		return fn(tx)
	})
}

func (db *DB) WriteTransaction(fn func(tx port.EngineWriteTransaction) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var dropped [][]byte
	err := db.db.Update(func(txn *badger.Txn) error {
		tx := newWriteTransaction(txn)
		defer tx.closeCursors()
		err := fn(tx)
		dropped = tx.dropped
		return err
	})
	if err != nil {
		return err
	}

	if len(dropped) > 0 {
		db.readers.deleted(dropped)
	}
	db.dropUnused()
	return nil
}

func (db *DB) Snapshot() (port.EngineSnapshot, error) {
	epoch := db.readers.acquire()
	txn := db.db.NewTransaction(false)
	return &Snapshot{
		ReadTransaction: newReadTransaction(txn),
		db:              db,
		epoch:           epoch,
	}, nil
}

var _ port.EngineSnapshot = (*Snapshot)(nil)

// Snapshot is a read transaction that is discarded on close.
type Snapshot struct {
	*ReadTransaction
	db     *DB
	epoch  uint64
	closed bool
}

func (s *Snapshot) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.closeCursors()
	s.txn.Discard()
	s.db.releaseReader(s.epoch)
	return nil
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
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
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
