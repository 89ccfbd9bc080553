package collate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// ErrUnsupportedType is returned if a value can not be
// represented as a key or value of a view.
var ErrUnsupportedType = errors.New("unsupported type")

// Normalize converts v into the canonical representation used
// by the view engine:
//
//	nil, bool, float64, string, []interface{}, map[string]interface{}
//
// All integer and float widths become float64, json.Number is parsed,
// maps with interface keys (as produced by cbor) get string keys and
// typed slices and maps are converted element by element. NaN and
// infinite numbers become nil, the same way JSON serializes them.
func Normalize(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case string:
		return validString(t)
	case float64:
		return normalizeFloat(t), nil
	case float32:
		return normalizeFloat(float64(t)), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return normalizeFloat(f), nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			if _, err := validString(k); err != nil {
				return nil, err
			}
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: object key of type %T", ErrUnsupportedType, k)
			}
			if _, err := validString(ks); err != nil {
				return nil, err
			}
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	}

	return normalizeReflect(reflect.ValueOf(v))
}

// MustNormalize is like Normalize but panics on unsupported types.
func MustNormalize(v interface{}) interface{} {
	n, err := Normalize(v)
	if err != nil {
		panic(err)
	}
	return n
}

// validString rejects strings that are not valid UTF-8, they can not
// be stored in an index row.
func validString(s string) (interface{}, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8 string %q", ErrUnsupportedType, s)
	}
	return s, nil
}

func normalizeFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f == 0 {
		return float64(0) // drop negative zero
	}
	return f
}

func normalizeReflect(rv reflect.Value) (interface{}, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return validString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key %s", ErrUnsupportedType, rv.Type().Key())
		}
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := validString(iter.Key().String())
			if err != nil {
				return nil, err
			}
			n, err := Normalize(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[k.(string)] = n
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
}
