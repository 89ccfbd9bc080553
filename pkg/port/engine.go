package port

import (
	"github.com/goydb/goyview/pkg/model"
)

type DatabaseEngine interface {
	ReadTransaction(fn func(tx EngineReadTransaction) error) error
	WriteTransaction(fn func(tx EngineWriteTransaction) error) error
	// Snapshot opens a read transaction that stays valid until it is
	// closed, used by lazy iterators.
	Snapshot() (EngineSnapshot, error)
	Close() error
}

// KeyWithSeq should return a new key based on the given
// key and a sequence
type KeyWithSeq func(key []byte, seq uint64) []byte

type EngineWriteTransaction interface {
	EnsureBucket(bucket []byte) error
	DeleteBucket(bucket []byte) error
	Put(bucket, k, v []byte) error
	// PutWithSequence will get the next sequence for the bucket
	// and then call the fn func using the passed key and seq to
	// generate the final key
	PutWithSequence(bucket, k, v []byte, fn KeyWithSeq) (uint64, error)
	Delete(bucket, k []byte) error
	EngineReadTransaction
}

type EngineReadTransaction interface {
	BucketStats(bucket []byte) *model.IndexStats
	Cursor(bucket []byte) EngineCursor
	Get(bucket, key []byte) ([]byte, error)
	Sequence(bucket []byte) uint64
}

// EngineSnapshot is a read transaction that has to be closed.
type EngineSnapshot interface {
	EngineReadTransaction
	Close() error
}

// EngineCursor iterates the keys of a bucket in byte order. A nil key
// signals the end. Returned keys and values are only valid until the
// next cursor movement.
type EngineCursor interface {
	First() (key []byte, value []byte)
	Last() (key []byte, value []byte)
	Next() (key []byte, value []byte)
	Prev() (key []byte, value []byte)
	Seek(seek []byte) (key []byte, value []byte)
}

// EmptyCursor is the cursor of a bucket that doesn't exist
type EmptyCursor struct{}

func (EmptyCursor) First() ([]byte, []byte)      { return nil, nil }
func (EmptyCursor) Last() ([]byte, []byte)       { return nil, nil }
func (EmptyCursor) Next() ([]byte, []byte)       { return nil, nil }
func (EmptyCursor) Prev() ([]byte, []byte)       { return nil, nil }
func (EmptyCursor) Seek([]byte) ([]byte, []byte) { return nil, nil }
