package model

// ViewDefinition describes a registered view.
type ViewDefinition struct {
	// Name of the view, views of design documents are named "ddoc/view"
	Name string
	// Version changes whenever the map or reduce function changes
	Version string
	// Language of the functions, empty for Go functions
	Language string
	// HasReducer is set if the view has a reduce function
	HasReducer bool
	// DesignDocID is set for views defined by design documents
	DesignDocID string
}

// ViewInfo describes the state of a view index.
type ViewInfo struct {
	ViewDefinition
	Meta  ViewMeta
	Stats IndexStats
	// UpdateSeq is the sequence of the last change of the database
	UpdateSeq uint64
}

// Pending returns the number of changes the index is behind
func (i ViewInfo) Pending() uint64 {
	if i.UpdateSeq < i.Meta.Seq {
		return 0
	}
	return i.UpdateSeq - i.Meta.Seq
}
