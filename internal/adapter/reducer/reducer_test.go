package reducer

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(values ...interface{}) []*model.Row {
	out := make([]*model.Row, len(values))
	for i, v := range values {
		out[i] = &model.Row{ID: fmt.Sprintf("doc%03d", i), Key: float64(i % 7), Value: v}
	}
	return out
}

func numbers(n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"_sum", "_count", "_stats", "_approx_count_distinct", " _sum "} {
		r, ok := Builtin(name)
		assert.True(t, ok, name)
		assert.NotNil(t, r, name)
	}
	_, ok := Builtin("_unknown")
	assert.False(t, ok)
	assert.True(t, IsBuiltin("_sum"))
	assert.False(t, IsBuiltin("function(keys, values) {}"))
}

func TestSum(t *testing.T) {
	ctx := context.Background()
	r := &Sum{}

	v, err := r.Reduce(ctx, nil, []interface{}{1.0, 2.5}, false)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	v, err = r.Reduce(ctx, nil, []interface{}{
		[]interface{}{1.0, 2.0}, []interface{}{1.0}, []interface{}{1.0, 1.0, 1.0},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{3.0, 3.0, 1.0}, v)

	_, err = r.Reduce(ctx, nil, []interface{}{"a"}, false)
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	r := &Count{}

	v, err := r.Reduce(ctx, nil, []interface{}{"a", nil, 3.0}, false)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = r.Reduce(ctx, nil, []interface{}{3.0, 4.0}, true)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	r := &Stats{}

	v, err := r.Reduce(ctx, nil, []interface{}{1.0, 2.0, 3.0}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"sum": 6.0, "min": 1.0, "max": 3.0, "count": 3.0, "sumsqr": 14.0,
	}, v)

	_, err = r.Reduce(ctx, nil, []interface{}{"x"}, false)
	assert.Error(t, err)
}

// every builtin has to give the same result no matter how
// the rows are chunked
func TestAggregator_RereduceAssociativity(t *testing.T) {
	ctx := context.Background()
	input := rows(numbers(250)...)

	for _, name := range []string{"_sum", "_count", "_stats", "_approx_count_distinct"} {
		t.Run(name, func(t *testing.T) {
			r, _ := Builtin(name)
			whole := &Aggregator{Reducer: r, ChunkSize: len(input), Concurrency: 1}
			expected, err := whole.Reduce(ctx, input)
			require.NoError(t, err)

			for _, chunk := range []int{1, 2, 3, 7, 100} {
				a := &Aggregator{Reducer: r, ChunkSize: chunk, Concurrency: 4}
				got, err := a.Reduce(ctx, input)
				require.NoError(t, err)
				assert.Equal(t, expected, got, "chunk size %d", chunk)
			}
		})
	}
}

func TestAggregator_Values(t *testing.T) {
	ctx := context.Background()
	input := rows(numbers(250)...)

	r, _ := Builtin("_sum")
	v, err := NewAggregator(r).Reduce(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 31375.0, v)

	r, _ = Builtin("_approx_count_distinct")
	v, err = NewAggregator(r).Reduce(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestAggregator_ChunkCalls(t *testing.T) {
	var calls, rereduces int32
	r := port.ReducerFunc(func(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		if rereduce {
			atomic.AddInt32(&rereduces, 1)
			assert.Nil(t, keys)
		} else {
			assert.Len(t, keys, len(values))
			pair := keys[0].([]interface{})
			assert.Len(t, pair, 2)
		}
		return float64(len(values)), nil
	})

	a := &Aggregator{Reducer: r, ChunkSize: 100, Concurrency: 2}
	_, err := a.Reduce(context.Background(), rows(numbers(250)...))
	require.NoError(t, err)
	// 3 reduce calls, one rereduce
	assert.Equal(t, int32(4), calls)
	assert.Equal(t, int32(1), rereduces)
}

func TestAggregator_Error(t *testing.T) {
	r := port.ReducerFunc(func(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
		return nil, fmt.Errorf("boom")
	})
	_, err := NewAggregator(r).Reduce(context.Background(), rows(1.0))
	assert.EqualError(t, err, "boom")
}

func TestAggregator_Panic(t *testing.T) {
	r := port.ReducerFunc(func(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
		var m map[string]interface{}
		m["sum"] = values[0]
		return m, nil
	})
	a := &Aggregator{Reducer: r, ChunkSize: 1, Concurrency: 2}
	_, err := a.Reduce(context.Background(), rows(1.0, 2.0, 3.0))
	assert.ErrorContains(t, err, "reduce function panicked")
}

func TestAggregator_ReduceGroups(t *testing.T) {
	ctx := context.Background()
	input := []*model.Row{
		{ID: "1", Key: []interface{}{"a", 1.0}, Value: 1.0},
		{ID: "2", Key: []interface{}{"a", 1.0}, Value: 2.0},
		{ID: "3", Key: []interface{}{"a", 2.0}, Value: 3.0},
		{ID: "4", Key: []interface{}{"b", 1.0}, Value: 4.0},
		{ID: "5", Key: "c", Value: 5.0},
	}
	a := NewAggregator(&Sum{})

	groups, err := a.ReduceGroups(ctx, input, 0)
	require.NoError(t, err)
	assert.Equal(t, []*model.Row{
		{Key: []interface{}{"a", 1.0}, Value: 3.0},
		{Key: []interface{}{"a", 2.0}, Value: 3.0},
		{Key: []interface{}{"b", 1.0}, Value: 4.0},
		{Key: "c", Value: 5.0},
	}, groups)

	groups, err = a.ReduceGroups(ctx, input, 1)
	require.NoError(t, err)
	assert.Equal(t, []*model.Row{
		{Key: []interface{}{"a"}, Value: 6.0},
		{Key: []interface{}{"b"}, Value: 4.0},
		{Key: "c", Value: 5.0},
	}, groups)

	groups, err = a.ReduceGroups(ctx, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
