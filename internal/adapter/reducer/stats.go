package reducer

import (
	"context"
	"fmt"
	"math"

	"github.com/goydb/goyview/pkg/port"
)

var _ port.Reducer = (*Stats)(nil)

// Stats implements _stats, values are numbers and the result is an
// object with sum, min, max, count and sumsqr.
type Stats struct{}

func (r *Stats) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	if len(values) == 0 {
		return statsResult{}.toMap(), nil
	}
	acc := statsResult{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range values {
		if rereduce {
			partial, err := parseStats(v)
			if err != nil {
				return nil, err
			}
			acc.merge(partial)
			continue
		}

		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("_stats: invalid value %v (%T)", v, v)
		}
		acc.merge(statsResult{sum: n, min: n, max: n, count: 1, sumsqr: n * n})
	}
	return acc.toMap(), nil
}

type statsResult struct {
	sum, min, max, count, sumsqr float64
}

func (s *statsResult) merge(o statsResult) {
	s.sum += o.sum
	s.min = math.Min(s.min, o.min)
	s.max = math.Max(s.max, o.max)
	s.count += o.count
	s.sumsqr += o.sumsqr
}

func (s statsResult) toMap() map[string]interface{} {
	return map[string]interface{}{
		"sum":    s.sum,
		"min":    s.min,
		"max":    s.max,
		"count":  s.count,
		"sumsqr": s.sumsqr,
	}
}

func parseStats(v interface{}) (statsResult, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return statsResult{}, fmt.Errorf("_stats: invalid partial result %v (%T)", v, v)
	}
	var s statsResult
	for name, dst := range map[string]*float64{
		"sum": &s.sum, "min": &s.min, "max": &s.max, "count": &s.count, "sumsqr": &s.sumsqr,
	} {
		n, ok := m[name].(float64)
		if !ok {
			return statsResult{}, fmt.Errorf("_stats: partial result lacks %q", name)
		}
		*dst = n
	}
	return s, nil
}
