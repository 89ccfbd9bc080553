package index

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

const (
	ChangesIndexName             = "_changes"
	ChangesIndexInvalidationName = "_changes:invalidation"
)

var (
	changesBucket             = []byte(ChangesIndexName)
	changesInvalidationBucket = []byte(ChangesIndexInvalidationName)
)

// ChangesIndex keeps the local sequence of the last change of every
// document. The changes bucket maps sequence to document id, the
// invalidation bucket document id to sequence, so that only the
// last change of a document remains.
type ChangesIndex struct{}

func NewChangesIndex() *ChangesIndex {
	return &ChangesIndex{}
}

func (i *ChangesIndex) String() string {
	return fmt.Sprintf("<ChangesIndex name=%q>", ChangesIndexName)
}

func (i *ChangesIndex) Ensure(ctx context.Context, tx port.EngineWriteTransaction) error {
	err := tx.EnsureBucket(changesBucket)
	if err != nil {
		return err
	}
	return tx.EnsureBucket(changesInvalidationBucket)
}

func (i *ChangesIndex) Remove(ctx context.Context, tx port.EngineWriteTransaction) error {
	err := tx.DeleteBucket(changesBucket)
	if err != nil {
		return err
	}
	return tx.DeleteBucket(changesInvalidationBucket)
}

func (i *ChangesIndex) Stats(ctx context.Context, tx port.EngineReadTransaction) (*model.IndexStats, error) {
	s := tx.BucketStats(changesBucket)
	return s.WithInvalidation(tx.BucketStats(changesInvalidationBucket)), nil
}

// DocumentStored records a change of the document and sets its
// local sequence.
func (i *ChangesIndex) DocumentStored(ctx context.Context, tx port.EngineWriteTransaction, doc *model.Document) error {
	if doc == nil {
		return nil
	}

	// only the latest change of a document is kept
	old, err := tx.Get(changesInvalidationBucket, []byte(doc.ID))
	if err == nil {
		err = tx.Delete(changesBucket, old)
		if err != nil {
			return err
		}
	} else if !errors.Is(err, port.ErrNotFound) {
		return err
	}

	seq, err := tx.PutWithSequence(changesBucket, nil, []byte(doc.ID), func(_ []byte, seq uint64) []byte {
		return uint64ToKey(seq)
	})
	if err != nil {
		return err
	}
	doc.LocalSeq = seq

	return tx.Put(changesInvalidationBucket, []byte(doc.ID), uint64ToKey(seq))
}

// Since calls fn with the document id of every change after
// the given sequence, in sequence order. Iteration stops after
// limit changes if limit is positive.
func (i *ChangesIndex) Since(ctx context.Context, tx port.EngineReadTransaction, since uint64, limit int, fn func(seq uint64, docID string) error) error {
	c := tx.Cursor(changesBucket)
	n := 0
	for k, v := c.Seek(uint64ToKey(since + 1)); k != nil; k, v = c.Next() {
		if limit > 0 && n >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(binary.BigEndian.Uint64(k), string(v))
		if err != nil {
			return err
		}
		n++
	}
	return nil
}

// Sequence returns the sequence of the last change
func (i *ChangesIndex) Sequence(tx port.EngineReadTransaction) uint64 {
	return tx.Sequence(changesBucket)
}

// LocalSeq will add the local sequence of the document to the document
func LocalSeq(ctx context.Context, tx port.EngineReadTransaction, doc *model.Document) error {
	realKey, err := tx.Get(changesInvalidationBucket, []byte(doc.ID))
	if err != nil {
		return err
	}
	doc.LocalSeq = binary.BigEndian.Uint64(realKey)
	return nil
}
