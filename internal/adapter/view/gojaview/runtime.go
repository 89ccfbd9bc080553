package gojaview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dop251/goja"
	"github.com/goydb/goyview/pkg/collate"
)

// helpers available to all map and reduce functions
const prelude = `
function sum(values) {
	var _sum = 0;
	values.forEach(function (value) {
		_sum += value
	});
	return _sum;
}
function toJSON(obj) {
	return JSON.stringify(obj);
}
function isArray(obj) {
	return Array.isArray(obj);
}`

var preludeProgram = goja.MustCompile("prelude.js", prelude, false)

// runtime is a javascript vm with a compiled function. A vm is not
// safe for concurrent use, runtimes are pooled instead.
type runtime struct {
	vm *goja.Runtime
	fn goja.Callable
}

type runtimePool struct {
	program *goja.Program
	pool    sync.Pool
}

func newRuntimePool(name, source string) (*runtimePool, error) {
	program, err := goja.Compile(name, "("+source+")", false)
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", source, err)
	}
	p := &runtimePool{program: program}

	// make sure the source evaluates to a function
	rt, err := p.newRuntime()
	if err != nil {
		return nil, err
	}
	p.put(rt)
	return p, nil
}

func (p *runtimePool) newRuntime() (*runtime, error) {
	vm := goja.New()
	_, err := vm.RunProgram(preludeProgram)
	if err != nil {
		return nil, err
	}
	err = vm.Set("log", func(msg goja.Value) {
		slog.Debug("view log", slog.String("message", msg.String()))
	})
	if err != nil {
		return nil, err
	}

	v, err := vm.RunProgram(p.program)
	if err != nil {
		return nil, fmt.Errorf("script error: %w", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("script error: expected a function got %s", v.ExportType())
	}

	return &runtime{vm: vm, fn: fn}, nil
}

func (p *runtimePool) get() (*runtime, error) {
	if rt, ok := p.pool.Get().(*runtime); ok {
		return rt, nil
	}
	return p.newRuntime()
}

func (p *runtimePool) put(rt *runtime) {
	p.pool.Put(rt)
}

// call executes the function, the execution is interrupted
// if the context is done.
func (rt *runtime) call(ctx context.Context, args ...goja.Value) (goja.Value, error) {
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		rt.vm.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		// an interrupt still in flight would hit the next call
		if !stop() {
			<-interrupted
		}
		rt.vm.ClearInterrupt()
	}()

	return rt.fn(goja.Undefined(), args...)
}

func export(v goja.Value) (interface{}, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return collate.Normalize(v.Export())
}
