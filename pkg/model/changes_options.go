package model

type ChangesOptions struct {
	// Since returns changes with a sequence greater than Since
	Since uint64
	// Limit of changes returned, 0 means no limit
	Limit int
}
