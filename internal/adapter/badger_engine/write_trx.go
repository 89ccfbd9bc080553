package badger_engine

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.EngineWriteTransaction = (*WriteTransaction)(nil)

type WriteTransaction struct {
	*ReadTransaction
	// prefixes of buckets deleted in this transaction
	dropped [][]byte
}

func newWriteTransaction(txn *badger.Txn) *WriteTransaction {
	tx := newReadTransaction(txn)
	tx.update = true
	return &WriteTransaction{ReadTransaction: tx}
}

func (t *WriteTransaction) EnsureBucket(bucket []byte) error {
	if t.bucket(bucket) != nil {
		return nil
	}
	id, err := nextBucketID(t.txn)
	if err != nil {
		return err
	}
	info := &bucketInfo{ID: id}
	err = storeBucket(t.txn, bucket, info)
	if err != nil {
		return err
	}
	t.buckets[string(bucket)] = info
	return nil
}

func (t *WriteTransaction) DeleteBucket(bucket []byte) error {
	info := t.bucket(bucket)
	if info == nil {
		return nil
	}
	err := t.txn.Delete(catalogKey(bucket))
	if err != nil {
		return err
	}
	t.buckets[string(bucket)] = nil
	t.dropped = append(t.dropped, bucketPrefix(info.ID))
	return nil
}

func (t *WriteTransaction) Put(bucket, k, v []byte) error {
	info := t.bucket(bucket)
	if info == nil {
		return fmt.Errorf("failed to put %q to bucket %q: %w", string(k), string(bucket), port.ErrUnknownBucket)
	}
	return t.txn.Set(dataKey(info.ID, k), v)
}

func (t *WriteTransaction) PutWithSequence(bucket, k, v []byte, fn port.KeyWithSeq) (uint64, error) {
	info := t.bucket(bucket)
	if info == nil {
		return 0, fmt.Errorf("failed to put %q to bucket %q: %w", string(k), string(bucket), port.ErrUnknownBucket)
	}
	info.Seq++
	err := storeBucket(t.txn, bucket, info)
	if err != nil {
		return 0, err
	}
	return info.Seq, t.txn.Set(dataKey(info.ID, fn(k, info.Seq)), v)
}

func (t *WriteTransaction) Delete(bucket, k []byte) error {
	info := t.bucket(bucket)
	if info == nil {
		return nil
	}
	err := t.txn.Delete(dataKey(info.ID, k))
	if err == badger.ErrKeyNotFound {
		return nil
	}
	return err
}
