package model

import (
	"sort"

	"github.com/mitchellh/mapstructure"
)

const (
	LanguageJavaScript = "javascript"
	LanguageTengo      = "tengo"
)

// DesignDoc is a design document which stores
// map/reduce function definitions.
type DesignDoc struct {
	Language string                `mapstructure:"language"`
	Views    map[string]ViewSource `mapstructure:"views"`
}

// ViewSource holds the source code of a single view.
type ViewSource struct {
	Map    string `mapstructure:"map"`
	Reduce string `mapstructure:"reduce"`
}

type ViewFunctions struct {
	Name     string
	Language string
	MapFn    string
	ReduceFn string
}

// DesignDoc decodes the design document fields.
func (doc Document) DesignDoc() (*DesignDoc, error) {
	var dd DesignDoc
	err := mapstructure.Decode(doc.Data, &dd)
	if err != nil {
		return nil, err
	}
	if dd.Language == "" {
		dd.Language = LanguageJavaScript
	}
	return &dd, nil
}

// ViewFunctions returns the views of the design document sorted by
// name, views without map function are ignored.
func (doc Document) ViewFunctions() []*ViewFunctions {
	dd, err := doc.DesignDoc()
	if err != nil {
		return nil
	}

	var vfn []*ViewFunctions
	for name, view := range dd.Views {
		if view.Map == "" {
			continue
		}

		vfn = append(vfn, &ViewFunctions{
			Name:     name,
			Language: dd.Language,
			MapFn:    view.Map,
			ReduceFn: view.Reduce,
		})
	}

	sort.Slice(vfn, func(i, j int) bool {
		return vfn[i].Name < vfn[j].Name
	})

	return vfn
}
