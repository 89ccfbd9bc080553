package badger_engine

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// readers tracks the open read transactions. DropPrefix removes keys
// for every transaction, including those that started before the
// bucket was deleted, so the data of a deleted bucket is only dropped
// once all readers that could still see it are gone.
type readers struct {
	mu sync.Mutex
	// epoch is increased by every commit that deletes buckets
	epoch   uint64
	active  map[uint64]int
	pending []pendingDrop
}

type pendingDrop struct {
	prefixes [][]byte
	// readers with a smaller epoch can still see the data
	epoch uint64
}

// acquire registers a reader, it has to be called before the badger
// transaction is opened.
func (r *readers) acquire() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[uint64]int)
	}
	r.active[r.epoch]++
	return r.epoch
}

func (r *readers) release(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[epoch]--
	if r.active[epoch] <= 0 {
		delete(r.active, epoch)
	}
}

// deleted records the prefixes of buckets deleted by a committed
// transaction.
func (r *readers) deleted(prefixes [][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.pending = append(r.pending, pendingDrop{prefixes: prefixes, epoch: r.epoch})
}

// droppable removes and returns the prefixes no reader can see anymore
func (r *readers) droppable() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldest := uint64(math.MaxUint64)
	for epoch := range r.active {
		oldest = min(oldest, epoch)
	}

	var prefixes [][]byte
	keep := r.pending[:0]
	for _, p := range r.pending {
		if oldest >= p.epoch {
			prefixes = append(prefixes, p.prefixes...)
		} else {
			keep = append(keep, p)
		}
	}
	r.pending = keep
	return prefixes
}

// dropUnused drops the data of deleted buckets without readers, the
// write lock has to be held.
func (db *DB) dropUnused() {
	prefixes := db.readers.droppable()
	if len(prefixes) == 0 {
		return
	}
	err := db.db.DropPrefix(prefixes...)
	if err != nil && !errors.Is(err, badger.ErrBlockedWrites) {
		db.logger.Warn("failed to drop bucket data", slog.String("error", err.Error()))
	}
}

// releaseReader is called when a read transaction ends. If no writer
// is active the data it kept alive is dropped now, otherwise the
// writer drops it after its commit.
func (db *DB) releaseReader(epoch uint64) {
	db.readers.release(epoch)
	if db.mu.TryLock() {
		defer db.mu.Unlock()
		db.dropUnused()
	}
}
