package storage

import (
	"context"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// Changes returns the latest revision of all documents changed after
// options.Since ordered by their local sequence, deleted documents
// are returned as tombstones.
func (d *Database) Changes(ctx context.Context, options *model.ChangesOptions) ([]*model.Document, error) {
	var docs []*model.Document
	err := d.db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		return d.changes.Since(ctx, tx, options.Since, options.Limit, func(seq uint64, docID string) error {
			doc, err := getDocument(tx, docID)
			if err != nil {
				return err
			}
			doc.LocalSeq = seq
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (d *Database) Sequence(ctx context.Context) (uint64, error) {
	var seq uint64
	err := d.db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		seq = d.changes.Sequence(tx)
		return nil
	})
	return seq, err
}

func (d *Database) DocCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		stats, err := d.changes.Stats(ctx, tx)
		if err != nil {
			return err
		}
		count = int(stats.Keys)
		return nil
	})
	return count, err
}
