package model

import (
	"strings"

	"github.com/goydb/goyview/pkg/collate"
)

// DocumentView is the read-only representation of a document
// handed to map functions. All fields are normalized (numbers are
// float64, objects map[string]interface{}) and every accessor returns
// a copy, so a map function can not change the stored document.
type DocumentView struct {
	id, rev string
	fields  map[string]interface{}
}

// NewDocumentView normalizes the document body, _id and _rev are
// part of the fields.
func NewDocumentView(doc *Document) (*DocumentView, error) {
	body, err := collate.Normalize(doc.Body())
	if err != nil {
		return nil, err
	}
	return &DocumentView{
		id:     doc.ID,
		rev:    doc.Rev,
		fields: body.(map[string]interface{}),
	}, nil
}

func (v *DocumentView) ID() string {
	return v.id
}

func (v *DocumentView) Rev() string {
	return v.rev
}

// Get returns a copy of the top level field or nil.
func (v *DocumentView) Get(name string) interface{} {
	return deepCopy(v.fields[name])
}

// Has reports whether the top level field exists (even if null).
func (v *DocumentView) Has(name string) bool {
	_, ok := v.fields[name]
	return ok
}

// Field returns a copy of the field at the dotted path or nil.
func (v *DocumentView) Field(path string) interface{} {
	var cur interface{} = v.fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return deepCopy(cur)
}

// Fields returns a copy of all fields.
func (v *DocumentView) Fields() map[string]interface{} {
	return deepCopy(v.fields).(map[string]interface{})
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
