package index

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
)

// storedRow is the value of an index record
type storedRow struct {
	ID      string      `cbor:"1,keyasint"`
	Key     interface{} `cbor:"2,keyasint"`
	Value   interface{} `cbor:"3,keyasint,omitempty"`
	Omitted bool        `cbor:"4,keyasint,omitempty"`
}

var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func encodeRow(docID string, e model.Emission) ([]byte, error) {
	return cbor.Marshal(storedRow{
		ID:      docID,
		Key:     e.Key,
		Value:   e.Value,
		Omitted: e.Omitted,
	})
}

func decodeRow(data []byte) (*model.Row, error) {
	var sr storedRow
	err := decMode.Unmarshal(data, &sr)
	if err != nil {
		return nil, err
	}
	key, err := collate.Normalize(sr.Key)
	if err != nil {
		return nil, err
	}
	value, err := collate.Normalize(sr.Value)
	if err != nil {
		return nil, err
	}
	return &model.Row{
		ID:      sr.ID,
		Key:     key,
		Value:   value,
		Omitted: sr.Omitted,
	}, nil
}

func encodeKeys(keys [][]byte) ([]byte, error) {
	return cbor.Marshal(keys)
}

func decodeKeys(data []byte) ([][]byte, error) {
	var keys [][]byte
	err := cbor.Unmarshal(data, &keys)
	return keys, err
}
