package port

import (
	"context"

	"github.com/goydb/goyview/pkg/model"
)

// Mapper runs the map function of a view for a single document.
//
// Implementations must be safe for concurrent use. The map function
// is assumed to be pure, the index is only consistent if the same
// document always produces the same emissions.
type Mapper interface {
	Map(ctx context.Context, doc *model.Document) ([]model.Emission, error)
}

// MapperFunc adapts a function to the Mapper interface
type MapperFunc func(ctx context.Context, doc *model.Document) ([]model.Emission, error)

func (f MapperFunc) Map(ctx context.Context, doc *model.Document) ([]model.Emission, error) {
	return f(ctx, doc)
}

// ViewServerBuilder creates a mapper from source code
type ViewServerBuilder func(fn string) (Mapper, error)

// ViewEngines maps languages to view server builders
type ViewEngines map[string]ViewServerBuilder
