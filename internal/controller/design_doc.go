package controller

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goydb/goyview/internal/adapter/reducer"
	"github.com/goydb/goyview/internal/adapter/view/gojaview"
	"github.com/goydb/goyview/internal/adapter/view/tengoview"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"golang.org/x/crypto/blake2b"
)

func DefaultViewEngines() port.ViewEngines {
	return port.ViewEngines{
		model.LanguageJavaScript: gojaview.NewViewServer,
		model.LanguageTengo:      tengoview.NewViewServer,
	}
}

func DefaultReducerEngines() port.ReducerEngines {
	return port.ReducerEngines{
		model.LanguageJavaScript: gojaview.NewReducer,
		model.LanguageTengo:      tengoview.NewReducer,
	}
}

type compiledView struct {
	def     model.ViewDefinition
	mapper  port.Mapper
	reducer port.Reducer
}

// ValidateDesignDoc compiles all functions of the design document.
func (e *ViewEngine) ValidateDesignDoc(doc *model.Document) error {
	if doc.Deleted {
		return nil
	}
	_, err := e.compileDesignDoc(doc)
	return err
}

// ApplyDesignDoc registers the views of the design document, views
// removed from the document are deleted. Views whose functions didn't
// change keep their index.
func (e *ViewEngine) ApplyDesignDoc(ctx context.Context, doc *model.Document) error {
	if !doc.IsDesignDoc() {
		return fmt.Errorf("document %q is not a design document", doc.ID)
	}

	var views []*compiledView
	if !doc.Deleted {
		var err error
		views, err = e.compileDesignDoc(doc)
		if err != nil {
			return err
		}
	}

	keep := make(map[string]bool, len(views))
	for _, cv := range views {
		keep[cv.def.Name] = true

		old, err := e.View(cv.def.Name)
		if err == nil && *old == cv.def {
			continue
		}
		err = e.setView(cv.def, cv.mapper, cv.reducer)
		if err != nil {
			return err
		}
	}

	for _, def := range e.Views() {
		if def.DesignDocID != doc.ID || keep[def.Name] {
			continue
		}
		err := e.DeleteView(ctx, def.Name)
		if err != nil && !errors.Is(err, port.ErrViewNotFound) {
			return err
		}
	}

	e.logger.Debug("design document applied",
		slog.String("docid", doc.ID), slog.Int("views", len(views)), slog.Bool("deleted", doc.Deleted))
	return nil
}

// LoadDesignDocs registers the views of all stored design documents
func (e *ViewEngine) LoadDesignDocs(ctx context.Context) error {
	var since uint64
	for {
		docs, err := e.db.Changes(ctx, &model.ChangesOptions{
			Since: since,
			Limit: e.batchSize,
		})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		for _, doc := range docs {
			if !doc.IsDesignDoc() || doc.Deleted {
				continue
			}
			err = e.ApplyDesignDoc(ctx, doc)
			if err != nil {
				e.logger.Error("failed to load design document",
					slog.String("docid", doc.ID), slog.Any("error", err))
			}
		}
		since = docs[len(docs)-1].LocalSeq
	}
}

func (e *ViewEngine) compileDesignDoc(doc *model.Document) ([]*compiledView, error) {
	dd, err := doc.DesignDoc()
	if err != nil {
		return nil, fmt.Errorf("invalid design document %q: %w", doc.ID, err)
	}

	buildMapper, ok := e.viewEngines[dd.Language]
	if !ok {
		return nil, fmt.Errorf("design document %q: unsupported language %q", doc.ID, dd.Language)
	}

	var views []*compiledView
	var errs []error
	for _, fns := range doc.ViewFunctions() {
		ddfn := model.NewViewFn(doc.ID, fns.Name)
		name := ddfn.ViewName()

		mapper, err := buildMapper(fns.MapFn)
		if err != nil {
			errs = append(errs, fmt.Errorf("map function of view %q: %w", name, err))
			continue
		}

		var r port.Reducer
		if fns.ReduceFn != "" {
			r, err = e.buildReducer(dd.Language, fns.ReduceFn)
			if err != nil {
				errs = append(errs, fmt.Errorf("reduce function of view %q: %w", name, err))
				continue
			}
		}

		views = append(views, &compiledView{
			def: model.ViewDefinition{
				Name:        name,
				Version:     signature(fns),
				Language:    fns.Language,
				HasReducer:  r != nil,
				DesignDocID: doc.ID,
			},
			mapper:  mapper,
			reducer: r,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return views, nil
}

func (e *ViewEngine) buildReducer(language, source string) (port.Reducer, error) {
	if reducer.IsBuiltin(source) {
		r, ok := reducer.Builtin(source)
		if !ok {
			return nil, fmt.Errorf("unknown builtin reducer %q", source)
		}
		return r, nil
	}

	build, ok := e.reducerEngines[language]
	if !ok {
		return nil, fmt.Errorf("unsupported reduce language %q", language)
	}
	return build(source)
}

// signature changes only if the functions of the view change
func signature(fns *model.ViewFunctions) string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{fns.Language, fns.MapFn, fns.ReduceFn} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
