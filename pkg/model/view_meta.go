package model

import "fmt"

// ViewMeta is the persisted state of a view index.
type ViewMeta struct {
	// Version is the version token of the view definition
	// the index was built with
	Version string
	// Generation identifies the bucket holding the rows
	Generation uint64
	// Seq is the changes sequence the index is up to date with
	Seq uint64
	// Built is set after the first full build of the generation completed
	Built bool
}

func (m ViewMeta) String() string {
	return fmt.Sprintf("<ViewMeta version=%q gen=%d seq=%d built=%t>",
		m.Version, m.Generation, m.Seq, m.Built)
}
