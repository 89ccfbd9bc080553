package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.ViewIndex = (*ViewIndex)(nil)

var indexInvalidationBucketSuffix = []byte(":invalidation")

// ViewIndex stores the rows emitted by a map function. A document
// may emit the same key multiple times, rows are made unique by
// appending the document id and the position of the emission to the
// encoded key.
//
// The invalidation bucket maps every document id to the keys of its
// rows, so that they can be removed once the document changes.
type ViewIndex struct {
	ddfn *model.DesignDocFn
	gen  uint64

	bucketName, indexInvalidationBucket []byte
}

// NewViewIndex returns the index of the given build generation of a view.
func NewViewIndex(ddfn *model.DesignDocFn, gen uint64) *ViewIndex {
	bucket := ddfn.GenerationBucket(gen)
	return &ViewIndex{
		ddfn:                    ddfn,
		gen:                     gen,
		bucketName:              bucket,
		indexInvalidationBucket: append(append([]byte{}, bucket...), indexInvalidationBucketSuffix...),
	}
}

func (i *ViewIndex) String() string {
	return fmt.Sprintf("<ViewIndex name=%q gen=%d>", i.ddfn, i.gen)
}

func (i *ViewIndex) Ensure(ctx context.Context, tx port.EngineWriteTransaction) error {
	// regular bucket (keys >= documents)
	err := tx.EnsureBucket(i.bucketName)
	if err != nil {
		return err
	}

	// invalidation bucket
	return tx.EnsureBucket(i.indexInvalidationBucket)
}

func (i *ViewIndex) Remove(ctx context.Context, tx port.EngineWriteTransaction) error {
	err := tx.DeleteBucket(i.bucketName)
	if err != nil {
		return err
	}
	return tx.DeleteBucket(i.indexInvalidationBucket)
}

func (i *ViewIndex) Stats(ctx context.Context, tx port.EngineReadTransaction) (*model.IndexStats, error) {
	s := tx.BucketStats(i.bucketName)
	return s.WithInvalidation(tx.BucketStats(i.indexInvalidationBucket)), nil
}

func (i *ViewIndex) Reindex(ctx context.Context, tx port.EngineWriteTransaction, docID string, emissions []model.Emission) error {
	// 1. remove all old rows from the index
	err := i.removeRows(tx, docID)
	if err != nil {
		return err
	}
	if len(emissions) == 0 {
		return nil
	}

	// 2. add new rows and the invalidation record
	keys := make([][]byte, 0, len(emissions))
	for n, e := range emissions {
		encKey, err := collate.Encode(e.Key)
		if err != nil {
			return fmt.Errorf("encode key of document %q: %w", docID, err)
		}
		value, err := encodeRow(docID, e)
		if err != nil {
			return fmt.Errorf("encode value of document %q: %w", docID, err)
		}
		k := rowKey(encKey, docID, n)
		err = tx.Put(i.bucketName, k, value)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}

	inv, err := encodeKeys(keys)
	if err != nil {
		return err
	}
	return tx.Put(i.indexInvalidationBucket, []byte(docID), inv)
}

func (i *ViewIndex) removeRows(tx port.EngineWriteTransaction, docID string) error {
	raw, err := tx.Get(i.indexInvalidationBucket, []byte(docID))
	if errors.Is(err, port.ErrNotFound) {
		return nil // never indexed
	}
	if err != nil {
		return err
	}
	keys, err := decodeKeys(raw)
	if err != nil {
		return fmt.Errorf("invalid invalidation record of %q: %w", docID, err)
	}

	for _, k := range keys {
		err = tx.Delete(i.bucketName, k)
		if err != nil {
			return err
		}
	}
	return tx.Delete(i.indexInvalidationBucket, []byte(docID))
}

func (i *ViewIndex) RangeScan(ctx context.Context, tx port.EngineReadTransaction, opts *model.IteratorOptions) (port.RowIterator, error) {
	r := &rangeBounds{
		descending:     opts.Descending,
		inclusiveStart: opts.InclusiveStart,
		inclusiveEnd:   opts.InclusiveEnd,
	}
	var err error
	if opts.HasStartKey {
		r.start, err = collate.Encode(opts.StartKey)
		if err != nil {
			return nil, &port.InvalidQuerySpecError{Param: "start_key", Reason: err.Error()}
		}
	}
	if opts.HasEndKey {
		r.end, err = collate.Encode(opts.EndKey)
		if err != nil {
			return nil, &port.InvalidQuerySpecError{Param: "end_key", Reason: err.Error()}
		}
	}

	return newRangeIterator(ctx, tx.Cursor(i.bucketName), r), nil
}

func (i *ViewIndex) PointLookup(ctx context.Context, tx port.EngineReadTransaction, keys []interface{}, descending bool) (port.RowIterator, error) {
	ranges := make([]*rangeBounds, len(keys))
	for n, key := range keys {
		encKey, err := collate.Encode(key)
		if err != nil {
			return nil, &port.InvalidQuerySpecError{Param: "keys", Reason: err.Error()}
		}
		ranges[n] = &rangeBounds{
			start:          encKey,
			end:            encKey,
			descending:     descending,
			inclusiveStart: true,
			inclusiveEnd:   true,
		}
	}

	return &chainIterator{
		ctx:    ctx,
		cursor: tx.Cursor(i.bucketName),
		ranges: ranges,
	}, nil
}
