package reducer

import (
	"context"
	"fmt"

	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize number of values passed to one reduce call
	DefaultChunkSize = 100
	// DefaultConcurrency number of chunks reduced at the same time
	DefaultConcurrency = 4
)

// Aggregator reduces rows hierarchically: rows are reduced in chunks
// of ChunkSize, the partial results are rereduced in chunks until
// one value remains. This relies on the reducer being associative
// under rereduce.
type Aggregator struct {
	Reducer     port.Reducer
	ChunkSize   int
	Concurrency int
}

func NewAggregator(r port.Reducer) *Aggregator {
	return &Aggregator{
		Reducer:     r,
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
}

// Reduce folds all rows into one value. Reducing no rows
// calls the reducer with empty input.
func (a *Aggregator) Reduce(ctx context.Context, rows []*model.Row) (interface{}, error) {
	keys := make([]interface{}, len(rows))
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		keys[i] = []interface{}{row.Key, row.ID}
		values[i] = row.Value
	}

	partials, err := a.reduceChunks(ctx, keys, values, false)
	if err != nil {
		return nil, err
	}
	for len(partials) > 1 {
		partials, err = a.reduceChunks(ctx, nil, partials, true)
		if err != nil {
			return nil, err
		}
	}

	result := partials[0]
	if f, ok := a.Reducer.(Finalizer); ok {
		return f.Finalize(result)
	}
	return result, nil
}

// reduceChunks reduces the values in chunks, the results keep
// the order of the chunks.
func (a *Aggregator) reduceChunks(ctx context.Context, keys, values []interface{}, rereduce bool) ([]interface{}, error) {
	chunkSize := a.chunkSize()
	if rereduce && chunkSize < 2 {
		chunkSize = 2 // otherwise partials never get fewer
	}
	n := (len(values) + chunkSize - 1) / chunkSize
	if n == 0 {
		n = 1
	}
	results := make([]interface{}, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i := 0; i < n; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(values))
		var chunkKeys []interface{}
		if !rereduce {
			chunkKeys = keys[start:end]
		}
		chunkValues := values[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := safeReduce(gctx, a.Reducer, chunkKeys, chunkValues, rereduce)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ReduceGroups reduces every group of consecutive rows with equal group
// keys to one row. The rows have to be sorted by key. A level of 0
// groups by the full key, otherwise array keys are truncated to
// their first level elements.
func (a *Aggregator) ReduceGroups(ctx context.Context, rows []*model.Row, level int) ([]*model.Row, error) {
	var result []*model.Row
	for start := 0; start < len(rows); {
		key := GroupKey(rows[start].Key, level)
		end := start + 1
		for end < len(rows) && collate.Equal(key, GroupKey(rows[end].Key, level)) {
			end++
		}

		value, err := a.Reduce(ctx, rows[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, &model.Row{Key: key, Value: value})
		start = end
	}
	return result, nil
}

// GroupKey returns the key the row is grouped by
func GroupKey(key interface{}, level int) interface{} {
	if level <= 0 {
		return key
	}
	arr, ok := key.([]interface{})
	if !ok || len(arr) <= level {
		return key
	}
	return arr[:level]
}

func (a *Aggregator) chunkSize() int {
	if a.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return a.ChunkSize
}

func (a *Aggregator) concurrency() int {
	if a.Concurrency <= 0 {
		return 1
	}
	return a.Concurrency
}

// safeReduce converts a panic of the reduce function into an error
func safeReduce(ctx context.Context, r port.Reducer, keys, values []interface{}, rereduce bool) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("reduce function panicked: %v", p)
		}
	}()
	return r.Reduce(ctx, keys, values, rereduce)
}
