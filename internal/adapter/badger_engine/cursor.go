package badger_engine

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"
	"github.com/goydb/goyview/pkg/port"
)

var _ port.EngineCursor = (*Cursor)(nil)

// Cursor implements a bidirectional cursor over a bucket, badger
// iterators only go into one direction, so the iterator is replaced
// when the direction changes.
type Cursor struct {
	tx      *ReadTransaction
	prefix  []byte
	it      *badger.Iterator
	reverse bool
	// current key (without prefix), nil if the cursor is not positioned
	key []byte
}

func (c *Cursor) First() ([]byte, []byte) {
	c.open(false)
	c.it.Seek(c.prefix)
	return c.current()
}

func (c *Cursor) Last() ([]byte, []byte) {
	c.open(true)
	c.it.Seek(c.upperBound())
	return c.current()
}

func (c *Cursor) Next() ([]byte, []byte) {
	if c.key == nil {
		return nil, nil
	}
	if c.it == nil || c.reverse {
		key := c.key
		c.open(false)
		c.it.Seek(append(c.prefixCopy(), key...))
		if c.valid() && bytes.Equal(c.userKey(), key) {
			c.it.Next()
		}
	} else {
		c.it.Next()
	}
	return c.current()
}

func (c *Cursor) Prev() ([]byte, []byte) {
	if c.key == nil {
		return nil, nil
	}
	if c.it == nil || !c.reverse {
		key := c.key
		c.open(true)
		c.it.Seek(append(c.prefixCopy(), key...))
		if c.valid() && bytes.Equal(c.userKey(), key) {
			c.it.Next()
		}
	} else {
		c.it.Next()
	}
	return c.current()
}

func (c *Cursor) Seek(seek []byte) ([]byte, []byte) {
	c.open(false)
	c.it.Seek(append(c.prefixCopy(), seek...))
	return c.current()
}

func (c *Cursor) open(reverse bool) {
	c.close()
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = c.prefix
	c.it = c.tx.newIterator(opts)
	c.reverse = reverse
}

func (c *Cursor) close() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
}

func (c *Cursor) valid() bool {
	return c.it.ValidForPrefix(c.prefix)
}

func (c *Cursor) userKey() []byte {
	return c.it.Item().Key()[len(c.prefix):]
}

func (c *Cursor) current() ([]byte, []byte) {
	if !c.valid() {
		c.key = nil
		return nil, nil
	}
	item := c.it.Item()
	c.key = item.KeyCopy(nil)[len(c.prefix):]
	value, err := item.ValueCopy(nil)
	if err != nil {
		c.key = nil
		return nil, nil
	}
	return c.key, value
}

// upperBound returns the prefix of the next bucket id, it is greater
// than every key of this bucket.
func (c *Cursor) upperBound() []byte {
	ub := c.prefixCopy()
	for i := len(ub) - 1; i >= 0; i-- {
		ub[i]++
		if ub[i] != 0 {
			break
		}
	}
	return ub
}

func (c *Cursor) prefixCopy() []byte {
	p := make([]byte, len(c.prefix), len(c.prefix)+32)
	copy(p, c.prefix)
	return p
}
