package port

import "github.com/goydb/goyview/pkg/model"

// RowIterator iterates view rows lazily.
//
//	for row := iter.First(); iter.Continue(); row = iter.Next() {
//	}
//
// First can be called again to restart the iteration. The iterator
// holds a snapshot of the index until Close is called.
type RowIterator interface {
	First() *model.Row
	Next() *model.Row
	Continue() bool
	// Err returns the first decoding error
	Err() error
	Close() error
}
