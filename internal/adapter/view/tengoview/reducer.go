package tengoview

import (
	"context"

	"github.com/d5/tengo/v2"
	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.Reducer = (*Reducer)(nil)

// Reducer executes tengo reduce functions:
//
//	func(keys, values, rereduce) { return len(values) }
type Reducer struct {
	compiled *tengo.Compiled
}

func NewReducer(fn string) (port.Reducer, error) {
	src := `reduceFn := ` + fn + `
_result := reduceFn(keys, values, rereduce)
`
	compiled, err := compile(src, map[string]interface{}{
		"keys":     nil,
		"values":   []interface{}{},
		"rereduce": false,
	})
	if err != nil {
		return nil, err
	}
	return &Reducer{compiled: compiled}, nil
}

func (r *Reducer) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	c := r.compiled.Clone()
	var tkeys interface{}
	if keys != nil {
		tkeys = keys
	}
	for name, value := range map[string]interface{}{
		"keys":     tkeys,
		"values":   values,
		"rereduce": rereduce,
	} {
		err := c.Set(name, value)
		if err != nil {
			return nil, err
		}
	}

	err := c.RunContext(ctx)
	if err != nil {
		return nil, err
	}
	return collate.Normalize(c.Get("_result").Value())
}
