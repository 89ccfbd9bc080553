package index

import (
	"bytes"
	"context"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// rangeBounds are the encoded bounds of a scan, nil means unbounded.
// For descending scans start is the upper bound.
type rangeBounds struct {
	start, end                   []byte
	descending                   bool
	inclusiveStart, inclusiveEnd bool
}

// seek positions the cursor on the first row of the range
func (r *rangeBounds) seek(c port.EngineCursor) ([]byte, []byte) {
	var k, v []byte
	if !r.descending {
		if r.start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(r.start)
		}
		for k != nil && !r.inclusiveStart && r.start != nil && bytes.Equal(keyPart(k), r.start) {
			k, v = c.Next()
		}
		return k, v
	}

	if r.start == nil {
		k, v = c.Last()
	} else {
		// 0xFF is greater than the tag of every encoded document
		// id, the seek lands behind all rows of the start key
		k, v = c.Seek(append(append([]byte{}, r.start...), 0xFF))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
	}
	for k != nil && r.start != nil && r.beyondStart(keyPart(k)) {
		k, v = c.Prev()
	}
	return k, v
}

func (r *rangeBounds) beyondStart(kp []byte) bool {
	cmp := bytes.Compare(kp, r.start)
	if r.inclusiveStart {
		return cmp > 0
	}
	return cmp >= 0
}

// inRange reports whether the row has not passed the end bound
func (r *rangeBounds) inRange(k []byte) bool {
	if r.end == nil {
		return true
	}
	cmp := bytes.Compare(keyPart(k), r.end)
	if r.descending {
		cmp = -cmp
	}
	if r.inclusiveEnd {
		return cmp <= 0
	}
	return cmp < 0
}

func (r *rangeBounds) advance(c port.EngineCursor) ([]byte, []byte) {
	if r.descending {
		return c.Prev()
	}
	return c.Next()
}

var _ port.RowIterator = (*rangeIterator)(nil)

type rangeIterator struct {
	ctx    context.Context
	cursor port.EngineCursor
	bounds *rangeBounds
	row    *model.Row
	err    error
}

func newRangeIterator(ctx context.Context, c port.EngineCursor, bounds *rangeBounds) *rangeIterator {
	return &rangeIterator{
		ctx:    ctx,
		cursor: c,
		bounds: bounds,
	}
}

func (i *rangeIterator) First() *model.Row {
	i.err = nil
	k, v := i.bounds.seek(i.cursor)
	return i.set(k, v)
}

func (i *rangeIterator) Next() *model.Row {
	if i.row == nil {
		return nil
	}
	k, v := i.bounds.advance(i.cursor)
	return i.set(k, v)
}

func (i *rangeIterator) set(k, v []byte) *model.Row {
	i.row = nil
	if k == nil || !i.bounds.inRange(k) {
		return nil
	}
	if err := i.ctx.Err(); err != nil {
		i.err = err
		return nil
	}
	row, err := decodeRow(v)
	if err != nil {
		i.err = err
		return nil
	}
	i.row = row
	return row
}

func (i *rangeIterator) Continue() bool {
	return i.row != nil
}

func (i *rangeIterator) Err() error {
	return i.err
}

func (i *rangeIterator) Close() error {
	i.row = nil
	return nil
}

var _ port.RowIterator = (*chainIterator)(nil)

// chainIterator iterates multiple ranges one after another, used
// for key lookups.
type chainIterator struct {
	ctx    context.Context
	cursor port.EngineCursor
	ranges []*rangeBounds
	pos    int
	cur    *rangeIterator
	row    *model.Row
	err    error
}

func (i *chainIterator) First() *model.Row {
	i.pos = -1
	i.err = nil
	return i.nextRange()
}

func (i *chainIterator) Next() *model.Row {
	if i.row == nil {
		return nil
	}
	i.row = i.cur.Next()
	if i.row != nil {
		return i.row
	}
	if i.err = i.cur.Err(); i.err != nil {
		return nil
	}
	return i.nextRange()
}

func (i *chainIterator) nextRange() *model.Row {
	for i.pos+1 < len(i.ranges) {
		i.pos++
		i.cur = newRangeIterator(i.ctx, i.cursor, i.ranges[i.pos])
		i.row = i.cur.First()
		if i.row != nil {
			return i.row
		}
		if i.err = i.cur.Err(); i.err != nil {
			return nil
		}
	}
	i.row = nil
	return nil
}

func (i *chainIterator) Continue() bool {
	return i.row != nil
}

func (i *chainIterator) Err() error {
	return i.err
}

func (i *chainIterator) Close() error {
	i.row = nil
	return nil
}
