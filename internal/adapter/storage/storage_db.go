package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/goydb/goyview/internal/adapter/badger_engine"
	"github.com/goydb/goyview/internal/adapter/bbolt_engine"
	"github.com/goydb/goyview/internal/adapter/index"
	"github.com/goydb/goyview/pkg/port"
)

var validDatabaseName = regexp.MustCompile(`^[a-z][a-z0-9_$()+-]*$`)

func (s *Storage) CreateDatabase(ctx context.Context, name string) (*Database, error) {
	if !validDatabaseName.MatchString(name) {
		return nil, fmt.Errorf("invalid database name %q", name)
	}

	return s.openDatabase(ctx, name, s.engine)
}

func (s *Storage) openDatabase(ctx context.Context, name, engine string) (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dbs[name]; ok {
		return nil, fmt.Errorf("database %q: %w", name, port.ErrConflict)
	}

	var (
		db  port.DatabaseEngine
		err error
	)
	switch engine {
	case EngineBadger:
		db, err = badger_engine.Open(path.Join(s.path, name+badgerSuffix), s.logger)
	default:
		db, err = bbolt_engine.Open(path.Join(s.path, name))
	}
	if err != nil {
		return nil, err
	}

	database := &Database{
		name:    name,
		engine:  engine,
		db:      db,
		changes: index.NewChangesIndex(),
		logger:  s.logger.With(slog.String("db", name)),
	}

	// create all required buckets
	err = db.WriteTransaction(func(tx port.EngineWriteTransaction) error {
		err := tx.EnsureBucket(docsBucket)
		if err != nil {
			return err
		}
		return database.changes.Ensure(ctx, tx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.dbs[name] = database
	return database, nil
}

func (s *Storage) DeleteDatabase(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[name]
	if !ok {
		return fmt.Errorf("database %q: %w", name, port.ErrNotFound)
	}

	err := db.Close()
	if err != nil {
		return err
	}

	if db.engine == EngineBadger {
		err = os.RemoveAll(path.Join(s.path, name+badgerSuffix))
	} else {
		err = os.Remove(path.Join(s.path, name))
	}
	if err != nil {
		return err
	}

	delete(s.dbs, name)

	return nil
}

func (s *Storage) Databases(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.dbs))
	for name := range s.dbs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (s *Storage) Database(ctx context.Context, name string) (*Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, ok := s.dbs[name]
	if !ok {
		return nil, fmt.Errorf("database %q: %w", name, port.ErrNotFound)
	}

	return db, nil
}
