package controller

import (
	"context"
	"fmt"
	"testing"

	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/adapter/view/funcview"
	"github.com/goydb/goyview/pkg/model"
	"github.com/stretchr/testify/require"
)

// WithTestEngine runs fn with a fresh database and view engine
// for every storage engine
func WithTestEngine(t *testing.T, fn func(t *testing.T, ctx context.Context, db *storage.Database, e *ViewEngine), opts ...Option) {
	for _, engine := range []string{storage.EngineBbolt, storage.EngineBadger} {
		t.Run(engine, func(t *testing.T) {
			ctx := context.Background()

			s, err := storage.Open(t.TempDir(), storage.WithEngine(engine))
			require.NoError(t, err)
			defer s.Close()

			db, err := s.CreateDatabase(ctx, "test")
			require.NoError(t, err)

			e, err := NewViewEngine(db, opts...)
			require.NoError(t, err)
			defer e.Close()

			fn(t, ctx, db, e)
		})
	}
}

// keyMap emits the key field of a document with value 1
var keyMap = funcview.MapFunc(func(doc *model.DocumentView, emit funcview.Emitter) error {
	if doc.Has("key") {
		emit.Emit(doc.Get("key"), 1)
	}
	return nil
})

// putKeyDocs stores one document per key with id "doc-<key>"
func putKeyDocs(t *testing.T, ctx context.Context, db *storage.Database, keys ...interface{}) {
	for _, key := range keys {
		_, err := db.PutDocument(ctx, &model.Document{
			ID:   fmt.Sprintf("doc-%v", key),
			Data: map[string]interface{}{"key": key},
		})
		require.NoError(t, err)
	}
}

func query(t *testing.T, ctx context.Context, e *ViewEngine, name string, q *model.ViewQuery) *model.ViewResult {
	res, err := e.Query(ctx, name, q)
	require.NoError(t, err)
	return res
}

func ids(res *model.ViewResult) []string {
	ids := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		ids[i] = row.ID
	}
	return ids
}
