package index

import (
	"encoding/binary"

	"github.com/goydb/goyview/pkg/collate"
)

// rowKey builds the index key of an emission:
//
//	enc(key) | enc(docID) | emission index (4 bytes) | len(enc(key)) (4 bytes)
//
// The collation encoding is self delimiting, so rows are sorted by key,
// then by document id, then by emission order.
func rowKey(encKey []byte, docID string, n int) []byte {
	id := collate.EncodeString(docID)
	lkey := len(encKey)
	mk := make([]byte, lkey+len(id)+4+4)
	copy(mk, encKey)
	copy(mk[lkey:], id)
	binary.BigEndian.PutUint32(mk[lkey+len(id):], uint32(n))
	binary.BigEndian.PutUint32(mk[len(mk)-4:], uint32(lkey))
	return mk
}

func keyLen(key []byte) uint32 {
	return binary.BigEndian.Uint32(key[len(key)-4:])
}

// keyPart returns the encoded emitted key of a row key
func keyPart(key []byte) []byte {
	if len(key) < 4 {
		return nil
	}
	l := keyLen(key)
	if int(l) > len(key)-4 {
		return nil
	}
	return key[:l]
}

// uint64ToKey big endian bytes of passed v
func uint64ToKey(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
