package gojaview

import (
	"context"

	"github.com/dop251/goja"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.Mapper = (*ViewServer)(nil)

// ViewServer executes javascript map functions. Documents are passed
// as copies, changes of the map function are not persisted.
type ViewServer struct {
	pool *runtimePool
}

type mapState struct {
	emissions []model.Emission
	err       error
}

func NewViewServer(fn string) (port.Mapper, error) {
	pool, err := newRuntimePool("map.js", fn)
	if err != nil {
		return nil, err
	}
	return &ViewServer{pool: pool}, nil
}

func (s *ViewServer) Map(ctx context.Context, doc *model.Document) ([]model.Emission, error) {
	view, err := model.NewDocumentView(doc)
	if err != nil {
		return nil, err
	}

	rt, err := s.pool.get()
	if err != nil {
		return nil, err
	}
	defer s.pool.put(rt)

	var state mapState
	err = rt.vm.Set("emit", func(call goja.FunctionCall) goja.Value {
		if state.err != nil {
			return goja.Undefined()
		}
		var e model.Emission
		e.Key, state.err = export(call.Argument(0))
		if len(call.Arguments) < 2 || goja.IsUndefined(call.Argument(1)) {
			e.Omitted = true
		} else if state.err == nil {
			e.Value, state.err = export(call.Argument(1))
		}
		state.emissions = append(state.emissions, e)
		return goja.Undefined()
	})
	if err != nil {
		return nil, err
	}

	_, err = rt.call(ctx, rt.vm.ToValue(view.Fields()))
	if err != nil {
		return nil, err
	}
	if state.err != nil {
		return nil, state.err
	}
	return state.emissions, nil
}
