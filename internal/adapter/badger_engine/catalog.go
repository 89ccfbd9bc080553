package badger_engine

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

const (
	catalogPrefix byte = 0x00
	dataPrefix    byte = 0x01
	nextIDKey     byte = 0x02
)

// bucketInfo is the catalog entry of a bucket
type bucketInfo struct {
	ID  uint64 `cbor:"1,keyasint"`
	Seq uint64 `cbor:"2,keyasint"`
}

func catalogKey(bucket []byte) []byte {
	return append([]byte{catalogPrefix}, bucket...)
}

func bucketPrefix(id uint64) []byte {
	p := make([]byte, 9)
	p[0] = dataPrefix
	binary.BigEndian.PutUint64(p[1:], id)
	return p
}

func dataKey(id uint64, key []byte) []byte {
	return append(bucketPrefix(id), key...)
}

func loadBucket(txn *badger.Txn, bucket []byte) (*bucketInfo, error) {
	item, err := txn.Get(catalogKey(bucket))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var info bucketInfo
	err = cbor.Unmarshal(raw, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func storeBucket(txn *badger.Txn, bucket []byte, info *bucketInfo) error {
	raw, err := cbor.Marshal(info)
	if err != nil {
		return err
	}
	return txn.Set(catalogKey(bucket), raw)
}

func nextBucketID(txn *badger.Txn) (uint64, error) {
	var id uint64
	item, err := txn.Get([]byte{nextIDKey})
	switch err {
	case nil:
		err = item.Value(func(val []byte) error {
			id = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	case badger.ErrKeyNotFound:
	default:
		return 0, err
	}
	id++
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return id, txn.Set([]byte{nextIDKey}, b[:])
}
