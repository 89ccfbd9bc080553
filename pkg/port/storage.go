package port

import (
	"context"

	"github.com/goydb/goyview/pkg/model"
)

// Database is the primary document store the views are built from.
type Database interface {
	Name() string
	String() string
	Engine() DatabaseEngine

	PutDocument(ctx context.Context, doc *model.Document) (string, error)
	GetDocument(ctx context.Context, docID string) (*model.Document, error)
	DeleteDocument(ctx context.Context, docID, rev string) (*model.Document, error)

	// Changes returns the latest revision of every document changed
	// after options.Since in sequence order
	Changes(ctx context.Context, options *model.ChangesOptions) ([]*model.Document, error)
	// Sequence returns the sequence of the last change
	Sequence(ctx context.Context) (uint64, error)
	// DocCount returns the number of documents changes reports
	DocCount(ctx context.Context) (int, error)

	// AddListener registers a change listener, listeners are called
	// in commit order until their context is done
	AddListener(ctx context.Context, cl ChangeListener) error
}

type ChangeListener interface {
	DocumentChanged(ctx context.Context, doc *model.Document) error
}

type ChangeListenerFunc func(ctx context.Context, doc *model.Document) error

func (f ChangeListenerFunc) DocumentChanged(ctx context.Context, doc *model.Document) error {
	return f(ctx, doc)
}
