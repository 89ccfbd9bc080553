package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fxamacker/cbor/v2"
	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"golang.org/x/sync/errgroup"
)

// metaBucket maps view names to their model.ViewMeta
var metaBucket = []byte("_view_meta")

// Update indexes all documents changed since the last indexing pass.
// If the index was never built or the view version changed, the
// index is rebuilt instead.
func (e *ViewEngine) Update(ctx context.Context, name string) error {
	if _, err := e.view(name); err != nil {
		return err
	}

	unlock := e.lockView(name)
	defer unlock()

	// the view may have been redefined or deleted while waiting
	v, err := e.view(name)
	if err != nil {
		return err
	}

	meta, err := e.meta(name)
	if err != nil {
		return err
	}
	if !meta.Built || meta.Version != v.def.Version {
		return e.rebuild(ctx, v, meta)
	}

	return e.catchUp(ctx, v, meta)
}

// Rebuild builds the index of the view from scratch. Concurrent
// calls for the same view share one build.
func (e *ViewEngine) Rebuild(ctx context.Context, name string) error {
	if _, err := e.view(name); err != nil {
		return err
	}

	_, err, _ := e.rebuilds.Do(name, func() (interface{}, error) {
		unlock := e.lockView(name)
		defer unlock()

		v, err := e.view(name)
		if err != nil {
			return nil, err
		}
		meta, err := e.meta(name)
		if err != nil {
			return nil, err
		}
		return nil, e.rebuild(ctx, v, meta)
	})
	return err
}

// ensureBuilt builds the index if it was never built or the
// version changed, but doesn't catch up otherwise.
func (e *ViewEngine) ensureBuilt(ctx context.Context, v *view) error {
	meta, err := e.meta(v.def.Name)
	if err != nil {
		return err
	}
	if meta.Built && meta.Version == v.def.Version {
		return nil
	}
	return e.Rebuild(ctx, v.def.Name)
}

// rebuild indexes all documents into a new generation and replaces
// the active generation once done. Readers keep using the old
// generation until then.
func (e *ViewEngine) rebuild(ctx context.Context, v *view, old *model.ViewMeta) error {
	name := v.def.Name
	meta := &model.ViewMeta{
		Version:    v.def.Version,
		Generation: old.Generation + 1,
	}
	idx := index.NewViewIndex(&v.ddfn, meta.Generation)

	e.logger.Info("rebuilding view",
		slog.String("view", name), slog.Uint64("generation", meta.Generation))
	e.metrics.rebuilds.WithLabelValues(name).Inc()

	total, err := e.db.DocCount(ctx)
	if err != nil {
		return err
	}
	task := e.tasks.start(model.ActionRebuildView, e.db.Name(), name, total)
	defer e.tasks.done(task)

	err = e.db.Engine().WriteTransaction(func(tx port.EngineWriteTransaction) error {
		// leftovers of an aborted build
		err := idx.Remove(ctx, tx)
		if err != nil {
			return err
		}
		return idx.Ensure(ctx, tx)
	})
	if err != nil {
		return err
	}

	err = e.indexChanges(ctx, v, idx, meta, task, nil)
	if err != nil {
		// the incomplete generation is removed by the next build
		return err
	}

	meta.Built = true
	err = e.db.Engine().WriteTransaction(func(tx port.EngineWriteTransaction) error {
		err := e.storeMeta(tx, name, meta)
		if err != nil {
			return err
		}
		if old.Generation == 0 {
			return nil
		}
		oldIdx := index.NewViewIndex(&v.ddfn, old.Generation)
		return oldIdx.Remove(ctx, tx)
	})
	if err != nil {
		return err
	}

	e.logger.Info("view rebuilt",
		slog.String("view", name), slog.Uint64("generation", meta.Generation), slog.Uint64("seq", meta.Seq))
	return nil
}

// catchUp indexes the changes since meta.Seq into the active generation
func (e *ViewEngine) catchUp(ctx context.Context, v *view, meta *model.ViewMeta) error {
	seq, err := e.db.Sequence(ctx)
	if err != nil {
		return err
	}
	if seq <= meta.Seq {
		return nil
	}

	task := e.tasks.start(model.ActionUpdateView, e.db.Name(), v.def.Name, int(seq-meta.Seq))
	defer e.tasks.done(task)

	idx := index.NewViewIndex(&v.ddfn, meta.Generation)
	// progress is stored with every batch
	return e.indexChanges(ctx, v, idx, meta, task, func(tx port.EngineWriteTransaction) error {
		return e.storeMeta(tx, v.def.Name, meta)
	})
}

// indexChanges maps the documents changed after meta.Seq in batches,
// every batch is written in one transaction. meta.Seq is advanced
// with each batch, commit is called in the batch transaction.
func (e *ViewEngine) indexChanges(ctx context.Context, v *view, idx *index.ViewIndex, meta *model.ViewMeta, task *model.Task, commit func(tx port.EngineWriteTransaction) error) error {
	for {
		docs, err := e.db.Changes(ctx, &model.ChangesOptions{
			Since: meta.Seq,
			Limit: e.batchSize,
		})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		emissions, err := e.mapDocs(ctx, v, docs)
		if err != nil {
			return err
		}

		lastSeq := docs[len(docs)-1].LocalSeq
		err = e.db.Engine().WriteTransaction(func(tx port.EngineWriteTransaction) error {
			for i, doc := range docs {
				err := idx.Reindex(ctx, tx, doc.ID, emissions[i])
				if err != nil {
					return err
				}
			}
			if commit == nil {
				return nil
			}
			meta.Seq = lastSeq
			return commit(tx)
		})
		if err != nil {
			return err
		}
		meta.Seq = lastSeq

		e.tasks.progress(task, len(docs))
		e.logger.Debug("indexed batch",
			slog.String("view", v.def.Name), slog.Int("docs", len(docs)), slog.Uint64("seq", lastSeq))

		if len(docs) < e.batchSize {
			return nil
		}
	}
}

// mapDocs runs the map function for every document of the batch. A
// failing map function is reported and the document has no rows.
func (e *ViewEngine) mapDocs(ctx context.Context, v *view, docs []*model.Document) ([][]model.Emission, error) {
	emissions := make([][]model.Emission, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, doc := range docs {
		if !doc.Indexable() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := safeMap(gctx, v.mapper, doc)
			if err == nil {
				result, err = normalizeEmissions(result)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.mapError(&port.MapExecutionError{
					View:  v.def.Name,
					DocID: doc.ID,
					Err:   err,
				})
				return nil
			}
			emissions[i] = result
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	e.metrics.docsIndexed.WithLabelValues(v.def.Name).Add(float64(len(docs)))
	return emissions, nil
}

// safeMap converts a panic of the map function into an error
func safeMap(ctx context.Context, mapper port.Mapper, doc *model.Document) (emissions []model.Emission, err error) {
	defer func() {
		if r := recover(); r != nil {
			emissions = nil
			err = fmt.Errorf("map function panicked: %v", r)
		}
	}()
	return mapper.Map(ctx, doc)
}

func (e *ViewEngine) mapError(err *port.MapExecutionError) {
	e.logger.Warn("map function failed",
		slog.String("view", err.View), slog.String("docid", err.DocID), slog.Any("error", err.Err))
	e.metrics.mapErrors.WithLabelValues(err.View).Inc()
	if e.onMapError != nil {
		e.onMapError(err)
	}
}

func normalizeEmissions(emissions []model.Emission) ([]model.Emission, error) {
	for i, em := range emissions {
		key, err := collate.Normalize(em.Key)
		if err != nil {
			return nil, fmt.Errorf("emitted key: %w", err)
		}
		value, err := collate.Normalize(em.Value)
		if err != nil {
			return nil, fmt.Errorf("emitted value: %w", err)
		}
		emissions[i].Key = key
		emissions[i].Value = value
	}
	return emissions, nil
}

// dropIndex removes the active generation and the meta data of the view
func (e *ViewEngine) dropIndex(ctx context.Context, tx port.EngineWriteTransaction, v *view) error {
	meta, err := loadMeta(tx, v.def.Name)
	if err != nil {
		return err
	}
	if meta.Generation > 0 {
		err = index.NewViewIndex(&v.ddfn, meta.Generation).Remove(ctx, tx)
		if err != nil {
			return err
		}
	}
	return tx.Delete(metaBucket, []byte(v.def.Name))
}

func (e *ViewEngine) meta(name string) (*model.ViewMeta, error) {
	var meta *model.ViewMeta
	err := e.db.Engine().ReadTransaction(func(tx port.EngineReadTransaction) error {
		var err error
		meta, err = loadMeta(tx, name)
		return err
	})
	return meta, err
}

func loadMeta(tx port.EngineReadTransaction, name string) (*model.ViewMeta, error) {
	data, err := tx.Get(metaBucket, []byte(name))
	if errors.Is(err, port.ErrNotFound) {
		return &model.ViewMeta{}, nil
	}
	if err != nil {
		return nil, err
	}

	var meta model.ViewMeta
	err = cbor.Unmarshal(data, &meta)
	if err != nil {
		return nil, fmt.Errorf("invalid meta data of view %q: %w", name, err)
	}
	return &meta, nil
}

func (e *ViewEngine) storeMeta(tx port.EngineWriteTransaction, name string, meta *model.ViewMeta) error {
	data, err := cbor.Marshal(meta)
	if err != nil {
		return err
	}
	return tx.Put(metaBucket, []byte(name), data)
}
