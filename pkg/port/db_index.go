package port

import (
	"context"

	"github.com/goydb/goyview/pkg/model"
)

// ViewIndex stores the rows emitted by a map function ordered by key.
//
// All rows of a document are replaced at once by Reindex. Readers using
// an engine snapshot never observe a partially replaced document.
type ViewIndex interface {
	// Ensure creates the buckets of the index
	Ensure(ctx context.Context, tx EngineWriteTransaction) error

	// Remove deletes the index and all related data
	Remove(ctx context.Context, tx EngineWriteTransaction) error

	// Stats returns statistics related to the index
	Stats(ctx context.Context, tx EngineReadTransaction) (*model.IndexStats, error)

	// Reindex removes all rows previously stored for the document
	// and inserts the new emissions.
	Reindex(ctx context.Context, tx EngineWriteTransaction, docID string, emissions []model.Emission) error

	// RangeScan iterates the rows of the index in key order
	RangeScan(ctx context.Context, tx EngineReadTransaction, opts *model.IteratorOptions) (RowIterator, error)

	// PointLookup iterates the rows for the given keys in the given order
	PointLookup(ctx context.Context, tx EngineReadTransaction, keys []interface{}, descending bool) (RowIterator, error)
}
