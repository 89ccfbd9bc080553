package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/goydb/goyview/internal/handler"
	"github.com/goydb/goyview/pkg/goydb"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	cfg, err := goydb.NewConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	err = rootCmd(cfg).ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd(cfg *goydb.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "goyview",
		Short:        "Document database with incremental map/reduce views",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.ListenAddress, "addr", cfg.ListenAddress, "address to listen on")
	flags.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory of the databases")
	flags.StringVar(&cfg.Engine, "engine", cfg.Engine, "storage engine of new databases (bbolt or badger)")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "documents indexed per transaction")
	flags.IntVar(&cfg.ReduceChunk, "reduce-chunk", cfg.ReduceChunk, "values per reduce call (0 for default)")
	flags.IntVar(&cfg.ReduceConcurrency, "reduce-concurrency", cfg.ReduceConcurrency, "concurrent map and reduce calls (0 for default)")
	flags.DurationVar(&cfg.IndexInterval, "index-interval", cfg.IndexInterval, "delay of background view updates")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	return cmd
}

func serve(ctx context.Context, cfg *goydb.Config) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler.Version = version
	gdb, err := cfg.BuildDatabase(ctx, logger)
	if err != nil {
		return err
	}
	defer gdb.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handlers.LoggingHandler(os.Stdout, gdb.Handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	logger.Info("listening", slog.String("addr", cfg.ListenAddress),
		slog.String("data", cfg.DataDir), slog.String("engine", cfg.Engine))
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
