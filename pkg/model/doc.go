package model

import (
	"encoding/binary"
	"reflect"
	"strconv"
	"strings"
)

const (
	DesignDocPrefix = "_design/"
	LocalDocPrefix  = "_local/"
)

// DocsBucket is the engine bucket the primary store keeps documents in
var DocsBucket = []byte("docs")

type Document struct {
	ID       string                 `json:"_id,omitempty"`
	Rev      string                 `json:"_rev,omitempty"`
	Deleted  bool                   `json:"_deleted,omitempty"`
	LocalSeq uint64                 `json:"_local_seq,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func (doc Document) ValidUpdateRevision(newDoc *Document) bool {
	oldRev, ok := doc.Revision()
	if ok {
		newRev, ok := newDoc.Revision()
		if !ok || newRev != oldRev {
			// update without correct rev forbidden if
			// document already exists
			return false
		}
	}
	return true
}

func (doc Document) Revision() (string, bool) {
	if doc.Rev != "" {
		return doc.Rev, true
	}
	rev, ok := doc.Data["_rev"].(string)
	return rev, ok && rev != ""
}

func (doc Document) NextSequence() int {
	rev, ok := doc.Revision()
	if !ok {
		return 1
	}

	i := strings.Index(rev, "-")
	if i < 0 {
		return 1
	}
	val, err := strconv.ParseInt(rev[:i], 10, 64)
	if err != nil {
		return 1 // this should never happen, but if so fallback to 1
	}
	return int(val) + 1
}

func FormatLocalSeq(seq uint64) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return string(b)
}

func (doc Document) FormatLocalSeq() string {
	return FormatLocalSeq(doc.LocalSeq)
}

func (doc Document) Language() string {
	v, ok := doc.Data["language"].(string)
	if ok {
		return v
	}
	return "" // default
}

func (doc Document) IsDesignDoc() bool {
	return strings.HasPrefix(doc.ID, DesignDocPrefix)
}

func (doc Document) IsLocalDoc() bool {
	return strings.HasPrefix(doc.ID, LocalDocPrefix)
}

// Indexable reports whether the document is passed to map functions,
// design and local documents never are.
func (doc Document) Indexable() bool {
	return !doc.Deleted && !doc.IsDesignDoc() && !doc.IsLocalDoc()
}

// Body returns the document data including the
// _id and _rev fields.
func (doc Document) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(doc.Data)+2)
	for k, v := range doc.Data {
		body[k] = v
	}
	body["_id"] = doc.ID
	if doc.Rev != "" {
		body["_rev"] = doc.Rev
	}
	if doc.Deleted {
		body["_deleted"] = true
	}
	return body
}

func (doc *Document) Field(path string) interface{} {
	parts := strings.Split(path, ".")
	v := reflect.ValueOf(doc.Data)
	if v.IsZero() {
		return nil
	}

	// walk the path
	for _, part := range parts {
		// not a map return nil
		if v.Kind() != reflect.Map {
			return nil
		}

		value := v.MapIndex(reflect.ValueOf(part))
		if !value.IsValid() {
			return nil
		}
		if value.Kind() == reflect.Interface && value.IsNil() {
			return nil
		}
		v = reflect.ValueOf(value.Interface())
	}

	return v.Interface()
}

func (doc *Document) Exists(path string) bool {
	return doc.Field(path) != nil
}
