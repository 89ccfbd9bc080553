// Package funcview adapts Go functions to map and reduce functions.
package funcview

import (
	"context"
	"fmt"

	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// Emitter collects the rows of a document.
type Emitter interface {
	// Emit adds a row with key and value
	Emit(key, value interface{})
	// EmitKey adds a row without value
	EmitKey(key interface{})
}

// MapFunc is a map function written in Go. The document is a
// read-only copy.
type MapFunc func(doc *model.DocumentView, emit Emitter) error

// ReduceFunc is a reduce function written in Go.
type ReduceFunc func(keys, values []interface{}, rereduce bool) (interface{}, error)

var _ port.Mapper = MapFunc(nil)

func (fn MapFunc) Map(ctx context.Context, doc *model.Document) ([]model.Emission, error) {
	view, err := model.NewDocumentView(doc)
	if err != nil {
		return nil, err
	}

	var e emitter
	err = fn(view, &e)
	if err != nil {
		return nil, err
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.emissions, nil
}

var _ port.Reducer = ReduceFunc(nil)

func (fn ReduceFunc) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	result, err := fn(keys, values, rereduce)
	if err != nil {
		return nil, err
	}
	return collate.Normalize(result)
}

type emitter struct {
	emissions []model.Emission
	err       error
}

func (e *emitter) Emit(key, value interface{}) {
	e.add(key, value, false)
}

func (e *emitter) EmitKey(key interface{}) {
	e.add(key, nil, true)
}

func (e *emitter) add(key, value interface{}, omitted bool) {
	if e.err != nil {
		return
	}
	k, err := collate.Normalize(key)
	if err != nil {
		e.err = fmt.Errorf("emitted key: %w", err)
		return
	}
	v, err := collate.Normalize(value)
	if err != nil {
		e.err = fmt.Errorf("emitted value: %w", err)
		return
	}
	e.emissions = append(e.emissions, model.Emission{Key: k, Value: v, Omitted: omitted})
}
