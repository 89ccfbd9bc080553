package badger_engine

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.EngineReadTransaction = (*ReadTransaction)(nil)

type ReadTransaction struct {
	txn     *badger.Txn
	buckets map[string]*bucketInfo
	cursors []*Cursor
	// update transactions allow only one open iterator
	update bool
}

func newReadTransaction(txn *badger.Txn) *ReadTransaction {
	return &ReadTransaction{
		txn:     txn,
		buckets: make(map[string]*bucketInfo),
	}
}

// bucket returns the catalog entry or nil if the bucket doesn't exist
func (tx *ReadTransaction) bucket(name []byte) *bucketInfo {
	info, ok := tx.buckets[string(name)]
	if ok {
		return info
	}
	info, err := loadBucket(tx.txn, name)
	if err != nil {
		return nil
	}
	tx.buckets[string(name)] = info
	return info
}

func (tx *ReadTransaction) BucketStats(bucket []byte) *model.IndexStats {
	info := tx.bucket(bucket)
	if info == nil {
		return &model.IndexStats{}
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = bucketPrefix(info.ID)
	it := tx.newIterator(opts)
	defer it.Close()

	var stats model.IndexStats
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		stats.Keys++
		stats.Used += uint64(item.EstimatedSize())
	}
	stats.Documents = stats.Keys
	stats.Allocated = stats.Used
	return &stats
}

func (tx *ReadTransaction) Get(bucket, key []byte) ([]byte, error) {
	info := tx.bucket(bucket)
	if info == nil {
		return nil, port.ErrNotFound
	}
	item, err := tx.txn.Get(dataKey(info.ID, key))
	if err == badger.ErrKeyNotFound {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (tx *ReadTransaction) Cursor(bucket []byte) port.EngineCursor {
	info := tx.bucket(bucket)
	if info == nil {
		return port.EmptyCursor{}
	}
	c := &Cursor{
		tx:     tx,
		prefix: bucketPrefix(info.ID),
	}
	tx.cursors = append(tx.cursors, c)
	return c
}

func (tx *ReadTransaction) Sequence(bucket []byte) uint64 {
	info := tx.bucket(bucket)
	if info == nil {
		return 0
	}
	return info.Seq
}

func (tx *ReadTransaction) closeCursors() {
	for _, c := range tx.cursors {
		c.close()
	}
	tx.cursors = nil
}

func (tx *ReadTransaction) newIterator(opts badger.IteratorOptions) *badger.Iterator {
	if tx.update {
		for _, c := range tx.cursors {
			c.close()
		}
	}
	return tx.txn.NewIterator(opts)
}
