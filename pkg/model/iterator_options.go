package model

// IteratorOptions restrict a range scan over a view index.
type IteratorOptions struct {
	StartKey    interface{}
	EndKey      interface{}
	HasStartKey bool
	HasEndKey   bool

	InclusiveStart bool
	InclusiveEnd   bool

	Descending bool
}

// IteratorOptions returns the range options of the query.
func (q *ViewQuery) IteratorOptions() *IteratorOptions {
	return &IteratorOptions{
		StartKey:       q.StartKey,
		EndKey:         q.EndKey,
		HasStartKey:    q.HasStartKey,
		HasEndKey:      q.HasEndKey,
		InclusiveStart: q.InclusiveStart,
		InclusiveEnd:   q.InclusiveEnd,
		Descending:     q.Descending,
	}
}
