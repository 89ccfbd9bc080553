package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"sync"

	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

// changeListener delivers the changes to a listener in its own
// goroutine, changes are queued so writers never wait for listeners.
type changeListener struct {
	key    [12]byte
	ctx    context.Context
	cancel context.CancelFunc
	cl     port.ChangeListener

	mu     sync.Mutex
	queue  []*model.Document
	signal chan struct{}
}

// AddListener add a change listener to the database changes (document updates)
// the listener will stay registered as long as the context is valid
func (d *Database) AddListener(ctx context.Context, cl port.ChangeListener) error {
	l := &changeListener{
		cl:     cl,
		signal: make(chan struct{}, 1),
	}
	_, err := rand.Read(l.key[:])
	if err != nil {
		return err
	}
	l.ctx, l.cancel = context.WithCancel(ctx)

	d.listener.Store(l.key, l)
	go func() {
		l.run(d.logger)
		d.listener.Delete(l.key)
	}()
	return nil
}

// NotifyDocumentUpdate queues the change of the passed document
// for all listeners
func (d *Database) NotifyDocumentUpdate(doc *model.Document) {
	d.listener.Range(func(k, value interface{}) bool {
		cp := *doc
		value.(*changeListener).enqueue(&cp)
		return true
	})
}

func (l *changeListener) enqueue(doc *model.Document) {
	l.mu.Lock()
	l.queue = append(l.queue, doc)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default: // already signaled
	}
}

func (l *changeListener) stop() {
	l.cancel()
}

func (l *changeListener) run(logger *slog.Logger) {
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.signal:
		}

		l.mu.Lock()
		docs := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, doc := range docs {
			err := l.cl.DocumentChanged(l.ctx, doc)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if err != nil {
				logger.Warn("failed to update change listener, removing", slog.String("error", err.Error()))
				return
			}
		}
	}
}
