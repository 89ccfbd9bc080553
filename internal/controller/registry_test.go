package controller

import (
	"context"
	"testing"

	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	db, err := s.CreateDatabase(ctx, "a")
	require.NoError(t, err)
	_, err = db.PutDocument(ctx, &model.Document{
		ID: "_design/d",
		Data: map[string]interface{}{
			"views": map[string]interface{}{
				"v": map[string]interface{}{"map": `function(doc) { emit(doc._id) }`},
			},
		},
	})
	require.NoError(t, err)

	r := NewRegistry(ctx, s)
	defer r.Close()
	require.NoError(t, r.Start(ctx))

	e, err := r.Engine(ctx, "a")
	require.NoError(t, err)
	same, err := r.Engine(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, e, same)

	// design documents are loaded on start
	_, err = e.View("d/v")
	assert.NoError(t, err)

	_, err = r.Engine(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, r.DeleteDatabase(ctx, "a"))
	_, err = r.Engine(ctx, "a")
	assert.ErrorIs(t, err, port.ErrNotFound)
}
