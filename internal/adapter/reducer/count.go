package reducer

import (
	"context"
	"fmt"

	"github.com/goydb/goyview/pkg/port"
)

var _ port.Reducer = (*Count)(nil)

// Count implements _count
type Count struct{}

func (r *Count) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	if !rereduce {
		return float64(len(values)), nil
	}

	var count float64
	for _, v := range values {
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("_count: invalid partial count %v (%T)", v, v)
		}
		count += n
	}
	return count, nil
}
