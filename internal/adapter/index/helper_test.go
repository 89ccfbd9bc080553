package index_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goydb/goyview/internal/adapter/badger_engine"
	"github.com/goydb/goyview/internal/adapter/bbolt_engine"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"github.com/stretchr/testify/require"
)

// WithTestEngines runs fn once for every database engine
func WithTestEngines(t *testing.T, fn func(t *testing.T, ctx context.Context, engine port.DatabaseEngine)) {
	t.Run("bbolt", func(t *testing.T) {
		db, err := bbolt_engine.Open(filepath.Join(t.TempDir(), "test.bbolt"))
		require.NoError(t, err)
		defer db.Close()
		fn(t, context.Background(), db)
	})
	t.Run("badger", func(t *testing.T) {
		db, err := badger_engine.Open("", nil)
		require.NoError(t, err)
		defer db.Close()
		fn(t, context.Background(), db)
	})
}

func collect(t *testing.T, iter port.RowIterator) []*model.Row {
	var rows []*model.Row
	for row := iter.First(); iter.Continue(); row = iter.Next() {
		rows = append(rows, row)
	}
	require.NoError(t, iter.Err())
	require.NoError(t, iter.Close())
	return rows
}

func keys(rows []*model.Row) []interface{} {
	out := make([]interface{}, len(rows))
	for i, row := range rows {
		out[i] = row.Key
	}
	return out
}

func ids(rows []*model.Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.ID
	}
	return out
}
