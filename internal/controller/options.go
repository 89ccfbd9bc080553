package controller

import (
	"log/slog"
	"time"

	"github.com/goydb/goyview/internal/adapter/reducer"
	"github.com/goydb/goyview/pkg/port"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBatchSize     = 1000
	DefaultIndexInterval = 500 * time.Millisecond
)

// MapErrorHandler is called for every document a map function failed on
type MapErrorHandler func(err *port.MapExecutionError)

type Option func(e *ViewEngine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *ViewEngine) {
		e.logger = logger
	}
}

// WithBatchSize sets the number of documents indexed per write transaction
func WithBatchSize(n int) Option {
	return func(e *ViewEngine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithChunkSize sets the number of values per reduce call
func WithChunkSize(n int) Option {
	return func(e *ViewEngine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithConcurrency limits the number of concurrent map and reduce calls
func WithConcurrency(n int) Option {
	return func(e *ViewEngine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithIndexInterval sets how often the background indexer
// updates views after changes
func WithIndexInterval(d time.Duration) Option {
	return func(e *ViewEngine) {
		if d > 0 {
			e.indexInterval = d
		}
	}
}

func WithMapErrorHandler(fn MapErrorHandler) Option {
	return func(e *ViewEngine) {
		e.onMapError = fn
	}
}

// WithRegisterer registers the engine metrics, a database label is added
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *ViewEngine) {
		e.registerer = reg
	}
}

// WithViewEngines sets the languages design documents can use
func WithViewEngines(ve port.ViewEngines, re port.ReducerEngines) Option {
	return func(e *ViewEngine) {
		e.viewEngines = ve
		e.reducerEngines = re
	}
}

func defaults(e *ViewEngine) {
	e.logger = slog.Default()
	e.batchSize = DefaultBatchSize
	e.chunkSize = reducer.DefaultChunkSize
	e.concurrency = reducer.DefaultConcurrency
	e.indexInterval = DefaultIndexInterval
	e.viewEngines = DefaultViewEngines()
	e.reducerEngines = DefaultReducerEngines()
}
