package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.Database = (*Database)(nil)

var docsBucket = model.DocsBucket

type Database struct {
	name   string
	engine string
	db     port.DatabaseEngine

	changes *index.ChangesIndex
	logger  *slog.Logger

	// serializes document writes with the notification of the
	// listeners, so that listeners see changes in commit order
	writeMu  sync.Mutex
	listener sync.Map
}

func (d *Database) Name() string {
	return d.name
}

func (d *Database) Engine() port.DatabaseEngine {
	return d.db
}

// EngineName returns the name of the storage engine, bbolt or badger
func (d *Database) EngineName() string {
	return d.engine
}

func (d *Database) String() string {
	stats, err := d.Stats(context.Background())
	if err == nil {
		return fmt.Sprintf("<Database name=%q engine=%s stats=%+v>", d.name, d.engine, stats)
	}

	return fmt.Sprintf("<Database name=%q engine=%s stats=%v>", d.name, d.engine, err)
}

// Stats returns the statistics of the documents bucket
func (d *Database) Stats(ctx context.Context) (*model.IndexStats, error) {
	var stats *model.IndexStats
	err := d.db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		stats = tx.BucketStats(docsBucket)
		return nil
	})
	return stats, err
}

func (d *Database) Close() error {
	d.listener.Range(func(k, value interface{}) bool {
		value.(*changeListener).stop()
		d.listener.Delete(k)
		return true
	})
	return d.db.Close()
}
