package reducer

import (
	"strings"

	"github.com/goydb/goyview/pkg/port"
)

// Finalizer is implemented by reducers whose partial results
// differ from the final result.
type Finalizer interface {
	Finalize(v interface{}) (interface{}, error)
}

// IsBuiltin reports whether the reduce source names a builtin reducer
func IsBuiltin(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), "_")
}

// Builtin returns the builtin reducer with the given name
func Builtin(name string) (port.Reducer, bool) {
	switch strings.TrimSpace(name) {
	case "_sum":
		return &Sum{}, true
	case "_count":
		return &Count{}, true
	case "_stats":
		return &Stats{}, true
	case "_approx_count_distinct":
		return &DistinctCount{}, true
	}
	return nil, false
}
