package goydb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/controller"
	"github.com/goydb/goyview/internal/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Goydb is a running server: the storage, the view engines of all
// databases and the http handler serving both.
type Goydb struct {
	*storage.Storage
	Views    *controller.Registry
	Metrics  *prometheus.Registry
	Handler  http.Handler
	Logger   *slog.Logger
	shutdown context.CancelFunc
}

// BuildDatabase opens the storage and starts the view engines of
// all existing databases.
func (c *Config) BuildDatabase(ctx context.Context, logger *slog.Logger) (*Goydb, error) {
	s, err := storage.Open(c.DataDir,
		storage.WithEngine(c.Engine),
		storage.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, cancel := context.WithCancel(ctx)
	opts := append(c.ViewOptions(logger), controller.WithRegisterer(reg))
	views := controller.NewRegistry(ctx, s, opts...)
	err = views.Start(ctx)
	if err != nil {
		cancel()
		return nil, errors.Join(err, views.Close(), s.Close())
	}

	r := mux.NewRouter()
	err = handler.Router{
		Base: handler.Base{
			Storage: s,
			Views:   views,
		},
		Gatherer: reg,
	}.Build(r)
	if err != nil {
		cancel()
		return nil, errors.Join(err, views.Close(), s.Close())
	}

	return &Goydb{
		Storage:  s,
		Views:    views,
		Metrics:  reg,
		Handler:  r,
		Logger:   logger,
		shutdown: cancel,
	}, nil
}

// Close stops the view engines and closes all databases
func (gdb *Goydb) Close() error {
	gdb.shutdown()
	return errors.Join(gdb.Views.Close(), gdb.Storage.Close())
}
