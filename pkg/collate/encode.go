package collate

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

const (
	terminator byte = 0x00
	escape     byte = 0xFF
	stringEnd  byte = 0x01
)

// Encode returns an order preserving binary representation of v:
// for any two values bytes.Compare(Encode(a), Encode(b)) has the same
// sign as Compare(a, b). The encoding is self delimiting, therefore
// encoded keys can be concatenated with other data and still compare
// by key first.
func Encode(v interface{}) ([]byte, error) {
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	encode(&buf, n)
	return buf.Bytes(), nil
}

// MustEncode is like Encode but panics on unsupported types.
func MustEncode(v interface{}) []byte {
	b, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}

// EncodeString encodes a plain string, used for document ids.
func EncodeString(s string) []byte {
	var buf bytes.Buffer
	encodeString(&buf, s)
	return buf.Bytes()
}

func encode(buf *bytes.Buffer, v interface{}) {
	switch t := v.(type) {
	case nil:
		buf.WriteByte(rankNull)
	case bool:
		if t {
			buf.WriteByte(rankTrue)
		} else {
			buf.WriteByte(rankFalse)
		}
	case float64:
		buf.WriteByte(rankNumber)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], floatBits(t))
		buf.Write(b[:])
	case string:
		encodeString(buf, t)
	case []interface{}:
		buf.WriteByte(rankArray)
		for _, e := range t {
			encode(buf, e)
		}
		buf.WriteByte(terminator)
	case map[string]interface{}:
		buf.WriteByte(rankObject)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(len(t)))
		buf.Write(b[:])
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			encodeString(buf, k)
		}
		for _, k := range keys {
			encode(buf, t[k])
		}
	}
}

// encodeString escapes 0x00 as 0x00 0xFF and terminates
// the string with 0x00 0x01.
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte(rankString)
	for i := 0; i < len(s); i++ {
		c := s[i]
		buf.WriteByte(c)
		if c == terminator {
			buf.WriteByte(escape)
		}
	}
	buf.WriteByte(terminator)
	buf.WriteByte(stringEnd)
}

// floatBits maps a float64 to an uint64 that sorts
// in the same order as the float.
func floatBits(f float64) uint64 {
	u := math.Float64bits(f)
	if u&(1<<63) != 0 {
		return ^u
	}
	return u | 1<<63
}
