package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// ViewEngine builds, maintains and queries the views of one database.
// All state is owned by the engine, multiple engines can be used
// side by side.
type ViewEngine struct {
	db     port.Database
	logger *slog.Logger

	batchSize     int
	chunkSize     int
	concurrency   int
	indexInterval time.Duration
	onMapError    MapErrorHandler

	registerer     prometheus.Registerer
	metrics        *metrics
	viewEngines    port.ViewEngines
	reducerEngines port.ReducerEngines

	mu    sync.RWMutex
	views map[string]*view

	// one indexing pass per view name at a time
	locks    sync.Map
	rebuilds singleflight.Group
	tasks    taskList
}

// view is a registered view with its functions
type view struct {
	def     model.ViewDefinition
	ddfn    model.DesignDocFn
	mapper  port.Mapper
	reducer port.Reducer
}

func NewViewEngine(db port.Database, opts ...Option) (*ViewEngine, error) {
	e := &ViewEngine{
		db:    db,
		views: make(map[string]*view),
	}
	defaults(e)
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("db", db.Name()))

	reg := e.registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(prometheus.WrapRegistererWith(prometheus.Labels{"db": db.Name()}, reg))
	if err != nil {
		return nil, err
	}
	e.metrics = m

	err = db.Engine().WriteTransaction(func(tx port.EngineWriteTransaction) error {
		return tx.EnsureBucket(metaBucket)
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}

// SetMap defines a view without reduce function. The index is
// rebuilt on the next use if the version differs from the version
// the index was built with.
func (e *ViewEngine) SetMap(name string, mapper port.Mapper, version string) error {
	return e.SetMapReduce(name, mapper, nil, version)
}

// SetMapReduce defines a view with an optional reduce function.
func (e *ViewEngine) SetMapReduce(name string, mapper port.Mapper, reducer port.Reducer, version string) error {
	return e.setView(model.ViewDefinition{
		Name:       name,
		Version:    version,
		HasReducer: reducer != nil,
	}, mapper, reducer)
}

func (e *ViewEngine) setView(def model.ViewDefinition, mapper port.Mapper, reducer port.Reducer) error {
	if def.Name == "" {
		return fmt.Errorf("view name is required")
	}
	if mapper == nil {
		return fmt.Errorf("view %q: map function is required", def.Name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.views[def.Name] = &view{
		def:     def,
		ddfn:    viewFn(def.Name),
		mapper:  mapper,
		reducer: reducer,
	}
	e.logger.Debug("view defined", slog.String("view", def.Name), slog.String("version", def.Version))
	return nil
}

// DeleteView removes the view and its index.
func (e *ViewEngine) DeleteView(ctx context.Context, name string) error {
	unlock := e.lockView(name)
	defer unlock()

	e.mu.Lock()
	v, ok := e.views[name]
	delete(e.views, name)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("view %q: %w", name, port.ErrViewNotFound)
	}

	err := e.db.Engine().WriteTransaction(func(tx port.EngineWriteTransaction) error {
		return e.dropIndex(ctx, tx, v)
	})
	if err != nil {
		return err
	}
	e.logger.Debug("view deleted", slog.String("view", name))
	return nil
}

// View returns the definition of the view.
func (e *ViewEngine) View(name string) (*model.ViewDefinition, error) {
	v, err := e.view(name)
	if err != nil {
		return nil, err
	}
	def := v.def
	return &def, nil
}

// Views returns the definitions of all views sorted by name.
func (e *ViewEngine) Views() []*model.ViewDefinition {
	e.mu.RLock()
	defer e.mu.RUnlock()

	defs := make([]*model.ViewDefinition, 0, len(e.views))
	for _, v := range e.views {
		def := v.def
		defs = append(defs, &def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// ActiveTasks returns the running indexing passes.
func (e *ViewEngine) ActiveTasks() []*model.Task {
	return e.tasks.list()
}

// Close unregisters the engine metrics. Running indexing passes are
// stopped by canceling their context.
func (e *ViewEngine) Close() error {
	e.metrics.unregister()
	return nil
}

func (e *ViewEngine) lockView(name string) func() {
	mu, _ := e.locks.LoadOrStore(name, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

func (e *ViewEngine) view(name string) (*view, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.views[name]
	if !ok {
		return nil, fmt.Errorf("view %q: %w", name, port.ErrViewNotFound)
	}
	return v, nil
}

// viewFn names the buckets of the view
func viewFn(name string) model.DesignDocFn {
	ddfn, err := model.ParseViewName(name)
	if err != nil {
		return model.DesignDocFn{Type: model.ViewFn, FnName: name}
	}
	return *ddfn
}

// Info returns the index state of the view.
func (e *ViewEngine) Info(ctx context.Context, name string) (*model.ViewInfo, error) {
	v, err := e.view(name)
	if err != nil {
		return nil, err
	}

	info := &model.ViewInfo{ViewDefinition: v.def}
	err = e.db.Engine().ReadTransaction(func(tx port.EngineReadTransaction) error {
		meta, err := loadMeta(tx, name)
		if err != nil {
			return err
		}
		info.Meta = *meta
		if meta.Generation == 0 {
			return nil
		}
		stats, err := index.NewViewIndex(&v.ddfn, meta.Generation).Stats(ctx, tx)
		if err != nil {
			return err
		}
		info.Stats = *stats
		return nil
	})
	if err != nil {
		return nil, err
	}

	info.UpdateSeq, err = e.db.Sequence(ctx)
	if err != nil {
		return nil, err
	}
	return info, nil
}
