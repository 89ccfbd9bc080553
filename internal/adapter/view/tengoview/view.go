package tengoview

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.Mapper = (*ViewServer)(nil)

// ViewServer executes tengo map functions:
//
//	func(doc) { emit(doc.name, 1) }
//
// emit called with only a key emits a row without value.
type ViewServer struct {
	compiled *tengo.Compiled
}

func NewViewServer(fn string) (port.Mapper, error) {
	src := `_result := []
emit := func(key, ...value) {
	if len(value) == 0 {
		_result = append(_result, [key, undefined, true])
	} else {
		_result = append(_result, [key, value[0], false])
	}
}
docFn := ` + fn + `
docFn(doc)
`
	compiled, err := compile(src, map[string]interface{}{
		"doc": map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}

	return &ViewServer{
		compiled: compiled,
	}, nil
}

func (s *ViewServer) Map(ctx context.Context, doc *model.Document) ([]model.Emission, error) {
	view, err := model.NewDocumentView(doc)
	if err != nil {
		return nil, err
	}

	// every execution needs its own globals
	c := s.compiled.Clone()
	err = c.Set("doc", view.Fields())
	if err != nil {
		return nil, err
	}

	err = c.RunContext(ctx)
	if err != nil {
		return nil, err
	}

	resultData := c.Get("_result").Array()
	if len(resultData) == 0 {
		return nil, nil
	}
	result := make([]model.Emission, len(resultData))
	for i, rd := range resultData {
		row, ok := rd.([]interface{})
		if !ok || len(row) != 3 {
			return nil, fmt.Errorf("invalid emit result %v", rd)
		}
		key, err := collate.Normalize(row[0])
		if err != nil {
			return nil, err
		}
		omitted, _ := row[2].(bool)
		var value interface{}
		if !omitted {
			value, err = collate.Normalize(row[1])
			if err != nil {
				return nil, err
			}
		}
		result[i] = model.Emission{
			Key:     key,
			Value:   value,
			Omitted: omitted,
		}
	}

	return result, nil
}
