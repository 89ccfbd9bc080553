package model

import (
	"encoding/json"
	"fmt"
)

// Emission is a key value pair emitted by a map function
// for one document.
type Emission struct {
	Key   interface{}
	Value interface{}
	// Omitted is set if the map function emitted a key without
	// a value, which is different from emitting null.
	Omitted bool
}

// Row is a single entry of a view index or a view result.
type Row struct {
	ID      string
	Key     interface{}
	Value   interface{}
	Omitted bool

	// Doc is only set if the query requested documents
	Doc *Document
}

func (r Row) String() string {
	return fmt.Sprintf("<Row id=%q key=%v value=%v>", r.ID, r.Key, r.Value)
}

type jsonRow struct {
	ID    string                 `json:"id,omitempty"`
	Key   interface{}            `json:"key"`
	Value *interface{}           `json:"value,omitempty"`
	Doc   map[string]interface{} `json:"doc,omitempty"`
}

func (r Row) MarshalJSON() ([]byte, error) {
	jr := jsonRow{
		ID:  r.ID,
		Key: r.Key,
	}
	if !r.Omitted {
		v := r.Value
		jr.Value = &v
	}
	if r.Doc != nil {
		jr.Doc = r.Doc.Body()
	}
	return json.Marshal(jr)
}
