package controller

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// taskList tracks the running indexing passes
type taskList struct {
	mu     sync.Mutex
	nextID uint64
	tasks  map[uint64]*model.Task
}

func (l *taskList) start(action model.TaskAction, dbName, view string, total int) *model.Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tasks == nil {
		l.tasks = make(map[uint64]*model.Task)
	}
	l.nextID++
	now := time.Now()
	t := &model.Task{
		ID:              l.nextID,
		ActiveSince:     now,
		UpdatedAt:       now,
		Action:          action,
		DBName:          dbName,
		View:            view,
		ProcessingTotal: total,
	}
	l.tasks[t.ID] = t
	return t
}

func (l *taskList) progress(t *model.Task, processed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t.Processed += processed
	if t.Processed > t.ProcessingTotal {
		t.ProcessingTotal = t.Processed
	}
	t.UpdatedAt = time.Now()
}

func (l *taskList) done(t *model.Task) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tasks, t.ID)
}

func (l *taskList) list() []*model.Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks := make([]*model.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		c := *t
		tasks = append(tasks, &c)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Run keeps all views up to date until the context is done. Design
// documents are applied as soon as they are stored, other changes
// are indexed every index interval.
func (e *ViewEngine) Run(ctx context.Context) error {
	var dirty atomic.Bool
	dirty.Store(true)

	err := e.db.AddListener(ctx, port.ChangeListenerFunc(func(ctx context.Context, doc *model.Document) error {
		if doc.IsDesignDoc() {
			err := e.ApplyDesignDoc(ctx, doc)
			if err != nil {
				e.logger.Error("failed to apply design document",
					slog.String("docid", doc.ID), slog.Any("error", err))
			}
		}
		dirty.Store(true)
		return nil
	}))
	if err != nil {
		return err
	}

	t := time.NewTicker(e.indexInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if !dirty.Swap(false) {
				continue
			}
			e.UpdateAll(ctx)
		}
	}
}

// UpdateAll brings all views up to date, failures are logged.
func (e *ViewEngine) UpdateAll(ctx context.Context) {
	for _, def := range e.Views() {
		err := e.Update(ctx, def.Name)
		if err != nil && ctx.Err() == nil {
			e.logger.Error("failed to update view",
				slog.String("view", def.Name), slog.Any("error", err))
		}
	}
}
