package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	EngineBbolt  = "bbolt"
	EngineBadger = "badger"

	badgerSuffix = ".badger"
)

// Storage manages the databases stored in one directory. Every
// database has its own engine instance, bbolt databases are single
// files, badger databases directories.
type Storage struct {
	path   string
	engine string
	logger *slog.Logger

	dbs map[string]*Database
	mu  sync.RWMutex
}

type Option func(s *Storage)

// WithEngine selects the engine new databases are created with
func WithEngine(engine string) Option {
	return func(s *Storage) {
		s.engine = engine
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

func Open(path string, opts ...Option) (*Storage, error) {
	s := &Storage{
		path:   path,
		engine: EngineBbolt,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine != EngineBbolt && s.engine != EngineBadger {
		return nil, fmt.Errorf("unknown engine %q", s.engine)
	}

	err := os.MkdirAll(path, 0750)
	if err != nil {
		return nil, err
	}
	err = s.ReloadDatabases(context.Background())
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) String() string {
	return "<Storage path=" + s.path + " engine=" + s.engine + ">"
}

func (s *Storage) ReloadDatabases(ctx context.Context) error {
	files, err := os.ReadDir(s.path)
	if err != nil {
		return err
	}

	// open databases are locked by the engines
	err = s.Close()
	if err != nil {
		return err
	}

	for _, f := range files {
		var name, engine string
		switch {
		case f.IsDir() && strings.HasSuffix(f.Name(), badgerSuffix):
			name, engine = strings.TrimSuffix(f.Name(), badgerSuffix), EngineBadger
		case !f.IsDir():
			name, engine = f.Name(), EngineBbolt
		default:
			continue
		}

		database, err := s.openDatabase(ctx, name, engine)
		if err != nil {
			s.logger.Error("loading database failed", slog.String("name", f.Name()), slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("loaded database", slog.String("database", database.String()))
	}

	return nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, db := range s.dbs {
		err := db.Close()
		if err != nil {
			return fmt.Errorf("failed to close db %q: %w", name, err)
		}
	}
	s.dbs = make(map[string]*Database)

	return nil
}
