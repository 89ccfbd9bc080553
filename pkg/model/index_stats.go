package model

import "fmt"

// IndexStats describes the size of a bucket or an index. For view
// indices Keys counts the rows and Documents the documents with at
// least one row, a document may emit many rows.
type IndexStats struct {
	Documents uint64
	Keys      uint64
	// Used bytes in use, Allocated bytes reserved by the engine
	Used      uint64
	Allocated uint64
}

// WithInvalidation adds the size of the invalidation bucket of an
// index. The invalidation bucket has one key per indexed document.
func (s *IndexStats) WithInvalidation(inv *IndexStats) *IndexStats {
	s.Documents = inv.Keys
	s.Used += inv.Used
	s.Allocated += inv.Allocated
	return s
}

func (s IndexStats) String() string {
	return fmt.Sprintf("<Stats docs=%d rows=%d used=%d allocated=%d>",
		s.Documents, s.Keys, s.Used, s.Allocated)
}
