package index_test

import (
	"context"
	"testing"

	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbersIndex(t *testing.T, ctx context.Context, engine port.DatabaseEngine) *index.ViewIndex {
	ddfn := model.NewViewFn("numbers", "by_name")
	vi := index.NewViewIndex(&ddfn, 1)
	err := engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
		err := vi.Ensure(ctx, tx)
		require.NoError(t, err)
		for id, name := range map[string]string{
			"1": "one", "2": "two", "3": "three", "4": "four", "5": "five",
		} {
			err = vi.Reindex(ctx, tx, id, []model.Emission{{Key: name, Value: 1.0}})
			require.NoError(t, err)
		}
		return nil
	})
	require.NoError(t, err)
	return vi
}

func scan(t *testing.T, ctx context.Context, engine port.DatabaseEngine, vi *index.ViewIndex, opts *model.IteratorOptions) []*model.Row {
	var rows []*model.Row
	err := engine.ReadTransaction(func(tx port.EngineReadTransaction) error {
		iter, err := vi.RangeScan(ctx, tx, opts)
		require.NoError(t, err)
		rows = collect(t, iter)
		return nil
	})
	require.NoError(t, err)
	return rows
}

func TestViewIndex_RangeScan(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		vi := numbersIndex(t, ctx, engine)

		cases := map[string]struct {
			opts     *model.IteratorOptions
			expected []interface{}
		}{
			"full": {
				opts:     &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true},
				expected: []interface{}{"five", "four", "one", "three", "two"},
			},
			"start and end": {
				opts: &model.IteratorOptions{
					StartKey: "a", HasStartKey: true,
					EndKey: "one", HasEndKey: true,
					InclusiveStart: true, InclusiveEnd: true,
				},
				expected: []interface{}{"five", "four", "one"},
			},
			"exclusive end": {
				opts: &model.IteratorOptions{
					StartKey: "a", HasStartKey: true,
					EndKey: "one", HasEndKey: true,
					InclusiveStart: true,
				},
				expected: []interface{}{"five", "four"},
			},
			"exclusive start": {
				opts: &model.IteratorOptions{
					StartKey: "four", HasStartKey: true,
					InclusiveEnd: true,
				},
				expected: []interface{}{"one", "three", "two"},
			},
			"descending": {
				opts:     &model.IteratorOptions{Descending: true, InclusiveStart: true, InclusiveEnd: true},
				expected: []interface{}{"two", "three", "one", "four", "five"},
			},
			"descending with bounds": {
				opts: &model.IteratorOptions{
					StartKey: "o", HasStartKey: true,
					EndKey: "five", HasEndKey: true,
					Descending:     true,
					InclusiveStart: true, InclusiveEnd: true,
				},
				expected: []interface{}{"four", "five"},
			},
			"descending exclusive end": {
				opts: &model.IteratorOptions{
					StartKey: "o", HasStartKey: true,
					EndKey: "five", HasEndKey: true,
					Descending:     true,
					InclusiveStart: true,
				},
				expected: []interface{}{"four"},
			},
			"descending start on key": {
				opts: &model.IteratorOptions{
					StartKey: "three", HasStartKey: true,
					Descending:     true,
					InclusiveStart: true, InclusiveEnd: true,
				},
				expected: []interface{}{"three", "one", "four", "five"},
			},
			"descending exclusive start": {
				opts: &model.IteratorOptions{
					StartKey: "three", HasStartKey: true,
					Descending:   true,
					InclusiveEnd: true,
				},
				expected: []interface{}{"one", "four", "five"},
			},
			"descending start after all keys": {
				opts: &model.IteratorOptions{
					StartKey: "zzz", HasStartKey: true,
					Descending:     true,
					InclusiveStart: true, InclusiveEnd: true,
				},
				expected: []interface{}{"two", "three", "one", "four", "five"},
			},
			"empty range": {
				opts: &model.IteratorOptions{
					StartKey: "p", HasStartKey: true,
					EndKey: "q", HasEndKey: true,
					InclusiveStart: true, InclusiveEnd: true,
				},
				expected: []interface{}{},
			},
		}

		for name, c := range cases {
			t.Run(name, func(t *testing.T) {
				rows := scan(t, ctx, engine, vi, c.opts)
				assert.Equal(t, c.expected, append([]interface{}{}, keys(rows)...))
			})
		}
	})
}

func TestViewIndex_TieBreak(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		ddfn := model.NewViewFn("test", "ties")
		vi := index.NewViewIndex(&ddfn, 1)
		err := engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
			require.NoError(t, vi.Ensure(ctx, tx))
			require.NoError(t, vi.Reindex(ctx, tx, "b", []model.Emission{
				{Key: 1.0, Value: "b1"}, {Key: 1.0, Value: "b2"},
			}))
			require.NoError(t, vi.Reindex(ctx, tx, "a", []model.Emission{
				{Key: 1.0, Value: "a1"}, {Key: nil, Omitted: true},
			}))
			return nil
		})
		require.NoError(t, err)

		rows := scan(t, ctx, engine, vi, &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true})
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"a", "a", "b", "b"}, ids(rows))
		assert.Nil(t, rows[0].Key)
		assert.True(t, rows[0].Omitted)
		assert.Equal(t, "a1", rows[1].Value)
		assert.Equal(t, "b1", rows[2].Value)
		assert.Equal(t, "b2", rows[3].Value)

		rows = scan(t, ctx, engine, vi, &model.IteratorOptions{Descending: true, InclusiveStart: true, InclusiveEnd: true})
		assert.Equal(t, []string{"b", "b", "a", "a"}, ids(rows))
		assert.Equal(t, "b2", rows[0].Value)
	})
}

func TestViewIndex_Reindex(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		vi := numbersIndex(t, ctx, engine)

		err := engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
			// "1" changes its key, "2" emits nothing anymore
			require.NoError(t, vi.Reindex(ctx, tx, "1", []model.Emission{
				{Key: []interface{}{"a", 1.0}, Value: map[string]interface{}{"x": 1}},
			}))
			require.NoError(t, vi.Reindex(ctx, tx, "2", nil))
			// unknown document without rows
			require.NoError(t, vi.Reindex(ctx, tx, "unknown", nil))
			return nil
		})
		require.NoError(t, err)

		rows := scan(t, ctx, engine, vi, &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true})
		assert.Equal(t, []interface{}{"five", "four", "three", []interface{}{"a", 1.0}}, keys(rows))
		assert.Equal(t, map[string]interface{}{"x": 1.0}, rows[3].Value)

		err = engine.ReadTransaction(func(tx port.EngineReadTransaction) error {
			stats, err := vi.Stats(ctx, tx)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), stats.Documents)
			assert.Equal(t, uint64(4), stats.Keys)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestViewIndex_PointLookup(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		vi := numbersIndex(t, ctx, engine)
		err := engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
			return vi.Reindex(ctx, tx, "6", []model.Emission{{Key: "two", Value: 2.0}})
		})
		require.NoError(t, err)

		err = engine.ReadTransaction(func(tx port.EngineReadTransaction) error {
			iter, err := vi.PointLookup(ctx, tx, []interface{}{"two", "missing", "four"}, false)
			require.NoError(t, err)
			rows := collect(t, iter)
			assert.Equal(t, []interface{}{"two", "two", "four"}, keys(rows))
			assert.Equal(t, []string{"2", "6", "4"}, ids(rows))

			iter, err = vi.PointLookup(ctx, tx, []interface{}{"two"}, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"6", "2"}, ids(collect(t, iter)))

			iter, err = vi.PointLookup(ctx, tx, []interface{}{}, false)
			require.NoError(t, err)
			assert.Empty(t, collect(t, iter))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestViewIndex_SnapshotIsolation(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		vi := numbersIndex(t, ctx, engine)

		snap, err := engine.Snapshot()
		require.NoError(t, err)
		iter, err := vi.RangeScan(ctx, snap, &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true})
		require.NoError(t, err)

		err = engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
			return vi.Reindex(ctx, tx, "1", nil)
		})
		require.NoError(t, err)

		assert.Len(t, collect(t, iter), 5)
		require.NoError(t, snap.Close())

		assert.Len(t, scan(t, ctx, engine, vi, &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true}), 4)
	})
}

func TestViewIndex_Remove(t *testing.T) {
	WithTestEngines(t, func(t *testing.T, ctx context.Context, engine port.DatabaseEngine) {
		vi := numbersIndex(t, ctx, engine)
		err := engine.WriteTransaction(func(tx port.EngineWriteTransaction) error {
			return vi.Remove(ctx, tx)
		})
		require.NoError(t, err)
		assert.Empty(t, scan(t, ctx, engine, vi, &model.IteratorOptions{InclusiveStart: true, InclusiveEnd: true}))
	})
}
