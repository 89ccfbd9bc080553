package model

// ViewResult is the result of a view query.
//
// For raw queries TotalRows is the number of rows selected by the key
// range or key set before skip and limit are applied. Reduced queries
// report the number of reduced rows returned.
type ViewResult struct {
	TotalRows int    `json:"total_rows"`
	Offset    int    `json:"offset"`
	Rows      []*Row `json:"rows"`
}

// Keys returns the keys of all result rows.
func (r *ViewResult) Keys() []interface{} {
	keys := make([]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		keys[i] = row.Key
	}
	return keys
}
