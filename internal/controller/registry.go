package controller

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/pkg/model"
)

// Registry starts a view engine for every database of the storage
// on first use. The engines index in the background until the
// database is deleted or the registry is closed.
type Registry struct {
	Storage *storage.Storage

	ctx     context.Context
	opts    []Option
	mu      sync.Mutex
	engines map[string]*runningEngine
}

type runningEngine struct {
	engine *ViewEngine
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry returns a registry, the background indexers stop
// once ctx is done.
func NewRegistry(ctx context.Context, s *storage.Storage, opts ...Option) *Registry {
	return &Registry{
		Storage: s,
		ctx:     ctx,
		opts:    opts,
		engines: make(map[string]*runningEngine),
	}
}

// Start starts the engines of all existing databases.
func (r *Registry) Start(ctx context.Context) error {
	names, err := r.Storage.Databases(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		_, err := r.Engine(ctx, name)
		if err != nil {
			return err
		}
	}
	return nil
}

// Engine returns the view engine of the database.
func (r *Registry) Engine(ctx context.Context, dbName string) (*ViewEngine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if re, ok := r.engines[dbName]; ok {
		return re.engine, nil
	}

	db, err := r.Storage.Database(ctx, dbName)
	if err != nil {
		return nil, err
	}
	engine, err := NewViewEngine(db, r.opts...)
	if err != nil {
		return nil, err
	}
	err = engine.LoadDesignDocs(ctx)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(r.ctx)
	re := &runningEngine{
		engine: engine,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(re.done)
		err := engine.Run(runCtx)
		if err != nil {
			engine.logger.Error("view engine stopped", slog.Any("error", err))
		}
	}()
	r.engines[dbName] = re

	return engine, nil
}

// DeleteDatabase stops the engine of the database and deletes it.
func (r *Registry) DeleteDatabase(ctx context.Context, dbName string) error {
	r.stop(dbName)
	return r.Storage.DeleteDatabase(ctx, dbName)
}

func (r *Registry) stop(dbName string) {
	r.mu.Lock()
	re, ok := r.engines[dbName]
	delete(r.engines, dbName)
	r.mu.Unlock()
	if !ok {
		return
	}

	re.cancel()
	<-re.done
	_ = re.engine.Close()
}

// Close stops all engines, the storage is not closed.
func (r *Registry) Close() error {
	r.mu.Lock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	r.mu.Unlock()

	for _, name := range names {
		r.stop(name)
	}
	return nil
}

// ActiveTasks returns the running indexing passes of all databases
func (r *Registry) ActiveTasks() []*model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []*model.Task
	for _, re := range r.engines {
		tasks = append(tasks, re.engine.ActiveTasks()...)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].DBName != tasks[j].DBName {
			return tasks[i].DBName < tasks[j].DBName
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}
