package model

// UpdateMode controls if a view is brought up to date before
// it is queried.
type UpdateMode string

const (
	// UpdateTrue updates the view before the query (default)
	UpdateTrue UpdateMode = "true"
	// UpdateFalse queries the index as it is, a view that was never
	// built is still built before it is queried
	UpdateFalse UpdateMode = "false"
	// UpdateLazy queries the index as it is and updates the
	// view in the background afterwards
	UpdateLazy UpdateMode = "lazy"
)

// ViewQuery describes a view query.
//
// A query either selects rows by a set of keys (Keys != nil) or by a key
// range (StartKey, EndKey). If both are given, the key set wins. Descending
// reverses the traversal, the scan begins at StartKey and proceeds towards
// EndKey.
//
// Skip and Limit are applied to the selected rows in scan order before they
// are reduced: a reduced query with Skip or Limit reduces only the rows of
// the requested page.
//
// Use NewViewQuery to get a query with the default options, the zero
// value has exclusive bounds.
type ViewQuery struct {
	StartKey       interface{}
	EndKey         interface{}
	HasStartKey    bool
	HasEndKey      bool
	InclusiveStart bool
	InclusiveEnd   bool

	// Keys selects rows with the given keys, a non nil empty
	// slice selects nothing
	Keys []interface{}
	// KeysInRequestOrder returns the rows in the order of Keys instead
	// of the collation order, duplicated keys return their rows multiple times
	KeysInRequestOrder bool

	// Limit is the maximum number of rows, -1 means no limit
	Limit int
	Skip  int

	Descending bool

	// Reduce overrides the default (reduce if the view has a reduce function)
	Reduce     *bool
	Group      bool
	GroupLevel int

	IncludeDocs bool
	Update      UpdateMode
}

// NewViewQuery returns a query over the full key range with
// inclusive bounds and no limit.
func NewViewQuery() *ViewQuery {
	return &ViewQuery{
		InclusiveStart: true,
		InclusiveEnd:   true,
		Limit:          -1,
		Update:         UpdateTrue,
	}
}

// SetStartKey sets the key the scan begins with.
func (q *ViewQuery) SetStartKey(key interface{}) *ViewQuery {
	q.StartKey = key
	q.HasStartKey = true
	return q
}

// SetEndKey sets the key the scan ends with.
func (q *ViewQuery) SetEndKey(key interface{}) *ViewQuery {
	q.EndKey = key
	q.HasEndKey = true
	return q
}

// SetKeys switches the query to key set mode.
func (q *ViewQuery) SetKeys(keys ...interface{}) *ViewQuery {
	if keys == nil {
		keys = []interface{}{}
	}
	q.Keys = keys
	return q
}

// SetReduce overrides the reduce default.
func (q *ViewQuery) SetReduce(reduce bool) *ViewQuery {
	q.Reduce = &reduce
	return q
}

// IsKeySet reports whether the query selects rows by keys.
func (q *ViewQuery) IsKeySet() bool {
	return q.Keys != nil
}

// EffectiveReduce resolves the reduce flag for a view
// with or without reduce function.
func (q *ViewQuery) EffectiveReduce(hasReducer bool) bool {
	if q.Reduce != nil {
		return *q.Reduce
	}
	return hasReducer
}

// Grouped reports whether reduced rows are grouped by key.
func (q *ViewQuery) Grouped() bool {
	return q.Group || q.GroupLevel > 0
}
