package bbolt_engine_test

import (
	"path/filepath"
	"testing"

	"github.com/goydb/goyview/internal/adapter/bbolt_engine"
	"github.com/goydb/goyview/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine(t *testing.T) {
	db, err := bbolt_engine.Open(filepath.Join(t.TempDir(), "test.bbolt"))
	require.NoError(t, err)
	defer db.Close()

	bucket := []byte("test")

	err = db.WriteTransaction(func(tx port.EngineWriteTransaction) error {
		err := tx.Put(bucket, []byte("a"), []byte("1"))
		assert.ErrorIs(t, err, port.ErrUnknownBucket)

		require.NoError(t, tx.EnsureBucket(bucket))
		require.NoError(t, tx.Put(bucket, []byte("b"), []byte("2")))
		require.NoError(t, tx.Put(bucket, []byte("a"), []byte("1")))

		// writes are visible in the same transaction
		v, err := tx.Get(bucket, []byte("b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), v)

		seq, err := tx.PutWithSequence(bucket, []byte("c"), []byte("3"), func(key []byte, seq uint64) []byte {
			return append(key, byte(seq))
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), seq)
		return nil
	})
	require.NoError(t, err)

	err = db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		assert.Equal(t, uint64(1), tx.Sequence(bucket))
		assert.Equal(t, uint64(3), tx.BucketStats(bucket).Keys)

		_, err := tx.Get(bucket, []byte("x"))
		assert.ErrorIs(t, err, port.ErrNotFound)

		c := tx.Cursor(bucket)
		var keys []string
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		assert.Equal(t, []string{"a", "b", "c\x01"}, keys)

		k, _ := c.Last()
		assert.Equal(t, "c\x01", string(k))
		k, _ = c.Prev()
		assert.Equal(t, "b", string(k))

		k, _ = tx.Cursor([]byte("unknown")).First()
		assert.Nil(t, k)
		return nil
	})
	require.NoError(t, err)

	err = db.WriteTransaction(func(tx port.EngineWriteTransaction) error {
		require.NoError(t, tx.Delete(bucket, []byte("a")))
		require.NoError(t, tx.DeleteBucket(bucket))
		return tx.DeleteBucket([]byte("unknown"))
	})
	require.NoError(t, err)

	snap, err := db.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.BucketStats(bucket).Keys)
	require.NoError(t, snap.Close())
}
