package gojaview

import (
	"context"

	"github.com/goydb/goyview/pkg/port"
)

var _ port.Reducer = (*Reducer)(nil)

// Reducer executes javascript reduce functions of the form
// function(keys, values, rereduce).
type Reducer struct {
	pool *runtimePool
}

func NewReducer(source string) (port.Reducer, error) {
	pool, err := newRuntimePool("reduce.js", source)
	if err != nil {
		return nil, err
	}
	return &Reducer{pool: pool}, nil
}

func (r *Reducer) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	rt, err := r.pool.get()
	if err != nil {
		return nil, err
	}
	defer r.pool.put(rt)

	var jsKeys interface{}
	if keys != nil {
		jsKeys = keys
	}
	result, err := rt.call(ctx,
		rt.vm.ToValue(jsKeys),
		rt.vm.ToValue(values),
		rt.vm.ToValue(rereduce),
	)
	if err != nil {
		return nil, err
	}
	return export(result)
}
