package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/internal/adapter/reducer"
	"github.com/goydb/goyview/pkg/collate"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// ValidateQuery rejects queries that can not be evaluated for a view
// with or without reduce function.
func ValidateQuery(q *model.ViewQuery, hasReducer bool) error {
	if q.Skip < 0 {
		return &port.InvalidQuerySpecError{Param: "skip", Reason: "must not be negative"}
	}
	if q.Limit < -1 {
		return &port.InvalidQuerySpecError{Param: "limit", Reason: "must not be negative"}
	}
	if q.GroupLevel < 0 {
		return &port.InvalidQuerySpecError{Param: "group_level", Reason: "must not be negative"}
	}

	switch q.Update {
	case "", model.UpdateTrue, model.UpdateFalse, model.UpdateLazy:
	default:
		return &port.InvalidQuerySpecError{Param: "update", Reason: "must be one of true, false or lazy"}
	}

	reduce := q.EffectiveReduce(hasReducer)
	if reduce && !hasReducer {
		return &port.InvalidQuerySpecError{Param: "reduce", Reason: "view has no reduce function"}
	}
	if q.Grouped() && !reduce {
		return &port.InvalidQuerySpecError{Param: "group", Reason: "only valid for reduce queries"}
	}
	if q.IncludeDocs && reduce {
		return &port.InvalidQuerySpecError{Param: "include_docs", Reason: "only valid for queries without reduce"}
	}

	if q.HasStartKey {
		if _, err := collate.Normalize(q.StartKey); err != nil {
			return &port.InvalidQuerySpecError{Param: "start_key", Reason: err.Error()}
		}
	}
	if q.HasEndKey {
		if _, err := collate.Normalize(q.EndKey); err != nil {
			return &port.InvalidQuerySpecError{Param: "end_key", Reason: err.Error()}
		}
	}
	for _, key := range q.Keys {
		if _, err := collate.Normalize(key); err != nil {
			return &port.InvalidQuerySpecError{Param: "keys", Reason: err.Error()}
		}
	}

	return nil
}

// Query evaluates the query against the view. Depending on the update
// mode of the query the index is brought up to date before.
func (e *ViewEngine) Query(ctx context.Context, name string, q *model.ViewQuery) (*model.ViewResult, error) {
	v, err := e.view(name)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = model.NewViewQuery()
	}

	query, err := prepareQuery(q, v.reducer != nil)
	if err != nil {
		return nil, err
	}
	reduce := query.EffectiveReduce(v.reducer != nil)

	defer func(start time.Time) {
		e.metrics.queryDuration.WithLabelValues(name, strconv.FormatBool(reduce)).
			Observe(time.Since(start).Seconds())
	}(time.Now())

	err = e.refresh(ctx, v, query.Update)
	if err != nil {
		return nil, err
	}

	result, err := e.evaluate(ctx, v, query, reduce)
	if err != nil {
		return nil, err
	}

	if query.Update == model.UpdateLazy {
		go func() {
			err := e.Update(context.WithoutCancel(ctx), name)
			if err != nil {
				e.logger.Error("failed to update view after query",
					slog.String("view", name), slog.Any("error", err))
			}
		}()
	}

	return result, nil
}

// prepareQuery returns a validated copy of the query with normalized keys
func prepareQuery(q *model.ViewQuery, hasReducer bool) (*model.ViewQuery, error) {
	err := ValidateQuery(q, hasReducer)
	if err != nil {
		return nil, err
	}

	query := *q
	if query.Update == "" {
		query.Update = model.UpdateTrue
	}
	if query.HasStartKey {
		query.StartKey = collate.MustNormalize(query.StartKey)
	}
	if query.HasEndKey {
		query.EndKey = collate.MustNormalize(query.EndKey)
	}
	if query.Keys != nil {
		keys := make([]interface{}, len(query.Keys))
		for i, key := range query.Keys {
			keys[i] = collate.MustNormalize(key)
		}
		query.Keys = keys
	}
	return &query, nil
}

func (e *ViewEngine) refresh(ctx context.Context, v *view, mode model.UpdateMode) error {
	var err error
	if mode == model.UpdateTrue {
		err = e.Update(ctx, v.def.Name)
	} else {
		err = e.ensureBuilt(ctx, v)
	}
	if err == nil || errors.Is(err, port.ErrViewNotFound) {
		return err
	}
	return &port.IndexUnavailableError{View: v.def.Name, Err: err}
}

func (e *ViewEngine) evaluate(ctx context.Context, v *view, q *model.ViewQuery, reduce bool) (*model.ViewResult, error) {
	snapshot, err := e.db.Engine().Snapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Close()

	meta, err := loadMeta(snapshot, v.def.Name)
	if err != nil {
		return nil, err
	}
	if !meta.Built {
		// the view was deleted or redefined concurrently
		return nil, &port.IndexUnavailableError{View: v.def.Name, Err: errors.New("index is not built")}
	}

	idx := index.NewViewIndex(&v.ddfn, meta.Generation)
	iter, err := rowIterator(ctx, idx, snapshot, q)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	total, rows, err := collectRows(ctx, iter, q.Skip, q.Limit)
	if err != nil {
		return nil, err
	}

	if reduce {
		return e.reduce(ctx, v, q, rows)
	}

	if q.IncludeDocs {
		err = e.includeDocs(ctx, rows)
		if err != nil {
			return nil, err
		}
	}

	return &model.ViewResult{
		TotalRows: total,
		Offset:    q.Skip,
		Rows:      rows,
	}, nil
}

func rowIterator(ctx context.Context, idx port.ViewIndex, tx port.EngineReadTransaction, q *model.ViewQuery) (port.RowIterator, error) {
	if !q.IsKeySet() {
		return idx.RangeScan(ctx, tx, q.IteratorOptions())
	}

	keys := q.Keys
	if !q.KeysInRequestOrder {
		keys = collate.Sort(slices.Clone(keys))
		keys = slices.CompactFunc(keys, collate.Equal)
		if q.Descending {
			slices.Reverse(keys)
		}
	}
	return idx.PointLookup(ctx, tx, keys, q.Descending)
}

// collectRows counts all rows of the iterator and returns the rows
// after skip and limit are applied.
func collectRows(ctx context.Context, iter port.RowIterator, skip, limit int) (int, []*model.Row, error) {
	total := 0
	rows := []*model.Row{}
	for row := iter.First(); iter.Continue(); row = iter.Next() {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		total++
		if total <= skip || (limit >= 0 && len(rows) >= limit) {
			continue
		}
		rows = append(rows, row)
	}
	if err := iter.Err(); err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}

func (e *ViewEngine) reduce(ctx context.Context, v *view, q *model.ViewQuery, rows []*model.Row) (*model.ViewResult, error) {
	if len(rows) == 0 {
		return &model.ViewResult{Rows: []*model.Row{}}, nil
	}

	agg := &reducer.Aggregator{
		Reducer:     v.reducer,
		ChunkSize:   e.chunkSize,
		Concurrency: e.concurrency,
	}

	var result []*model.Row
	if q.Grouped() {
		groups, err := agg.ReduceGroups(ctx, rows, q.GroupLevel)
		if err != nil {
			return nil, reduceError(ctx, v, err)
		}
		result = groups
	} else {
		value, err := agg.Reduce(ctx, rows)
		if err != nil {
			return nil, reduceError(ctx, v, err)
		}
		result = []*model.Row{{Key: nil, Value: value}}
	}

	return &model.ViewResult{
		TotalRows: len(result),
		Rows:      result,
	}, nil
}

func reduceError(ctx context.Context, v *view, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &port.ReduceExecutionError{View: v.def.Name, Err: err}
}

// includeDocs attaches the current revision of the documents, rows
// of deleted documents have no document
func (e *ViewEngine) includeDocs(ctx context.Context, rows []*model.Row) error {
	for _, row := range rows {
		doc, err := e.db.GetDocument(ctx, row.ID)
		if errors.Is(err, port.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		row.Doc = doc
	}
	return nil
}
