package goydb

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/controller"
)

// Config of the server, all values can be set via environment
type Config struct {
	ListenAddress string `env:"GOYVIEW_ADDR" envDefault:":7070"`
	DataDir       string `env:"GOYVIEW_DATA" envDefault:"./data"`
	// Engine used for new databases (bbolt or badger)
	Engine string `env:"GOYVIEW_ENGINE" envDefault:"bbolt"`

	BatchSize         int           `env:"GOYVIEW_BATCH_SIZE" envDefault:"1000"`
	ReduceChunk       int           `env:"GOYVIEW_REDUCE_CHUNK" envDefault:"0"`
	ReduceConcurrency int           `env:"GOYVIEW_REDUCE_CONCURRENCY" envDefault:"0"`
	IndexInterval     time.Duration `env:"GOYVIEW_INDEX_INTERVAL" envDefault:"500ms"`

	LogLevel string `env:"GOYVIEW_LOG_LEVEL" envDefault:"info"`
}

// NewConfig reads the configuration from the environment
func NewConfig() (*Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Engine != storage.EngineBbolt && c.Engine != storage.EngineBadger {
		return fmt.Errorf("unknown engine %q, expected %s or %s", c.Engine, storage.EngineBbolt, storage.EngineBadger)
	}
	if c.BatchSize < 0 || c.ReduceChunk < 0 || c.ReduceConcurrency < 0 {
		return fmt.Errorf("batch size, reduce chunk and reduce concurrency must not be negative")
	}
	if c.IndexInterval <= 0 {
		return fmt.Errorf("index interval must be positive, got %s", c.IndexInterval)
	}
	_, err := c.Level()
	return err
}

// Level returns the parsed log level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ViewOptions translates the configuration into view engine options,
// zero values keep the defaults.
func (c *Config) ViewOptions(logger *slog.Logger) []controller.Option {
	opts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithIndexInterval(c.IndexInterval),
	}
	if c.BatchSize > 0 {
		opts = append(opts, controller.WithBatchSize(c.BatchSize))
	}
	if c.ReduceChunk > 0 {
		opts = append(opts, controller.WithChunkSize(c.ReduceChunk))
	}
	if c.ReduceConcurrency > 0 {
		opts = append(opts, controller.WithConcurrency(c.ReduceConcurrency))
	}
	return opts
}
