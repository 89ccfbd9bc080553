package bbolt_engine

import (
	"fmt"

	"github.com/goydb/goyview/pkg/port"
	"go.etcd.io/bbolt"
)

var _ port.EngineWriteTransaction = (*WriteTransaction)(nil)

// WriteTransaction applies all writes directly to the
// bbolt update transaction.
type WriteTransaction struct {
	ReadTransaction
}

func NewWriteTransaction(tx *bbolt.Tx) *WriteTransaction {
	return &WriteTransaction{
		ReadTransaction: ReadTransaction{
			tx: tx,
		},
	}
}

func (t *WriteTransaction) EnsureBucket(bucket []byte) error {
	_, err := t.tx.CreateBucketIfNotExists(bucket)
	return err
}

func (t *WriteTransaction) DeleteBucket(bucket []byte) error {
	err := t.tx.DeleteBucket(bucket)
	if err == bbolt.ErrBucketNotFound {
		return nil
	}
	return err
}

func (t *WriteTransaction) Put(bucket, k, v []byte) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return fmt.Errorf("failed to put %q to bucket %q: %w", string(k), string(bucket), port.ErrUnknownBucket)
	}
	return b.Put(k, v)
}

func (t *WriteTransaction) PutWithSequence(bucket, k, v []byte, fn port.KeyWithSeq) (uint64, error) {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return 0, fmt.Errorf("failed to put %q to bucket %q: %w", string(k), string(bucket), port.ErrUnknownBucket)
	}
	seq, err := b.NextSequence()
	if err != nil {
		return 0, err
	}
	return seq, b.Put(fn(k, seq), v)
}

func (t *WriteTransaction) Delete(bucket, k []byte) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil
	}
	return b.Delete(k)
}
