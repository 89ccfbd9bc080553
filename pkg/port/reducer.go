package port

import "context"

// Reducer aggregates values.
//
// Without rereduce keys[i] is the [key, docID] pair of values[i].
// With rereduce the values are results of previous Reduce calls and
// keys is nil. Reducing the reduced results of any partition of the
// rows must give the same result as reducing all rows at once.
//
// Implementations must be safe for concurrent use.
type Reducer interface {
	Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error)
}

// ReducerFunc adapts a function to the Reducer interface
type ReducerFunc func(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error)

func (f ReducerFunc) Reduce(ctx context.Context, keys, values []interface{}, rereduce bool) (interface{}, error) {
	return f(ctx, keys, values, rereduce)
}

// ReducerEngines maps languages to reducer builders
type ReducerEngines map[string]ReducerServerBuilder

// ReducerServerBuilder creates a reducer from source code
type ReducerServerBuilder func(fn string) (Reducer, error)
