package reducer

import (
	"context"
	"fmt"

	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/port"
)

var (
	_ port.Reducer = (*DistinctCount)(nil)
	_ Finalizer    = (*DistinctCount)(nil)
)

// DistinctCount implements _approx_count_distinct. The count is
// exact, partial results are the sorted distinct keys.
type DistinctCount struct{}

func (r *DistinctCount) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	var distinct []interface{}
	if !rereduce {
		for _, k := range keys {
			pair, ok := k.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("_approx_count_distinct: invalid key %v", k)
			}
			distinct = append(distinct, pair[0])
		}
	} else {
		for _, v := range values {
			partial, ok := v.([]interface{})
			if !ok {
				return nil, fmt.Errorf("_approx_count_distinct: invalid partial result %v (%T)", v, v)
			}
			distinct = append(distinct, partial...)
		}
	}
	return dedupe(collate.Sort(distinct)), nil
}

// Finalize returns the number of distinct keys
func (r *DistinctCount) Finalize(v interface{}) (interface{}, error) {
	keys, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("_approx_count_distinct: invalid result %v (%T)", v, v)
	}
	return float64(len(keys)), nil
}

// dedupe removes equal neighbours of a sorted list
func dedupe(sorted []interface{}) []interface{} {
	out := make([]interface{}, 0, len(sorted))
	for _, v := range sorted {
		if len(out) > 0 && collate.Equal(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
