package bbolt_engine

import (
	"time"

	"github.com/goydb/goyview/pkg/port"
	"go.etcd.io/bbolt"
)

var _ port.DatabaseEngine = (*DB)(nil)

type DB struct {
	db *bbolt.DB
}

// initialMmapSize avoids remapping the file while small databases
// grow, remapping waits for all open snapshots.
const initialMmapSize = 64 << 20

func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{
		Timeout:         time.Second,
		InitialMmapSize: initialMmapSize,
	})
	if err != nil {
		return nil, err
	}
	return &DB{
		db: db,
	}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) Path() string {
	return db.db.Path()
}

func (db *DB) ReadTransaction(fn func(tx port.EngineReadTransaction) error) error {
	return db.db.View(func(btx *bbolt.Tx) error {
		return fn(NewReadTransaction(btx))
	})
}

// WriteTransaction executes the given function in a bbolt update
// transaction. Writes are visible to reads of the same transaction,
// readers of other transactions see all or nothing of it. bbolt
// allows only one writer at a time, which serializes all updates.
func (db *DB) WriteTransaction(fn func(tx port.EngineWriteTransaction) error) error {
	return db.db.Update(func(btx *bbolt.Tx) error {
		return fn(NewWriteTransaction(btx))
	})
}

// Snapshot begins a read-only transaction, it has to be closed
// otherwise the database can not grow.
func (db *DB) Snapshot() (port.EngineSnapshot, error) {
	btx, err := db.db.Begin(false)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ReadTransaction: ReadTransaction{tx: btx}}, nil
}
