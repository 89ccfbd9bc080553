package badger_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaders_Droppable(t *testing.T) {
	var r readers

	old := r.acquire()
	r.deleted([][]byte{[]byte("a")})
	newer := r.acquire()

	// the old reader can still see a
	assert.Empty(t, r.droppable())

	r.deleted([][]byte{[]byte("b")})
	r.release(old)
	assert.Equal(t, [][]byte{[]byte("a")}, r.droppable())

	r.release(newer)
	assert.Equal(t, [][]byte{[]byte("b")}, r.droppable())
	assert.Empty(t, r.droppable())
	assert.Empty(t, r.active)
}

func TestDB_DropsAfterLastReader(t *testing.T) {
	db, err := Open("", nil)
	require.NoError(t, err)
	defer db.Close()

	snap, err := db.Snapshot()
	require.NoError(t, err)
	db.readers.deleted([][]byte{bucketPrefix(99)})

	db.mu.Lock()
	db.dropUnused()
	db.mu.Unlock()
	assert.Len(t, db.readers.pending, 1)

	assert.NoError(t, snap.Close())
	assert.Empty(t, db.readers.pending)
}
