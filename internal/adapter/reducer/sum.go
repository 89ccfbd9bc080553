package reducer

import (
	"context"
	"fmt"

	"github.com/goydb/goyview/pkg/port"
)

var _ port.Reducer = (*Sum)(nil)

// Sum implements _sum, values are numbers or arrays of numbers.
// Arrays are summed element wise, shorter arrays are padded with 0.
type Sum struct{}

func (r *Sum) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	var result interface{} = float64(0)
	for _, v := range values {
		var err error
		result, err = add(result, v)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func add(a, b interface{}) (interface{}, error) {
	switch bv := b.(type) {
	case float64:
		switch av := a.(type) {
		case float64:
			return av + bv, nil
		case []interface{}:
			return addArrays(av, []interface{}{bv})
		}
	case []interface{}:
		switch av := a.(type) {
		case float64:
			return addArrays([]interface{}{av}, bv)
		case []interface{}:
			return addArrays(av, bv)
		}
	}
	return nil, fmt.Errorf("_sum: invalid value %v (%T)", b, b)
}

func addArrays(a, b []interface{}) (interface{}, error) {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]interface{}, len(a))
	for i := range a {
		av, ok := a[i].(float64)
		if !ok {
			return nil, fmt.Errorf("_sum: invalid array element %v (%T)", a[i], a[i])
		}
		if i < len(b) {
			bv, ok := b[i].(float64)
			if !ok {
				return nil, fmt.Errorf("_sum: invalid array element %v (%T)", b[i], b[i])
			}
			av += bv
		}
		out[i] = av
	}
	return out, nil
}
