package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func WithTestStorage(t *testing.T, fn func(ctx context.Context, s *Storage), opts ...Option) {
	ctx := context.Background()

	s, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	defer s.Close()
	fn(ctx, s)
}

func WithTestDatabase(t *testing.T, fn func(ctx context.Context, db *Database), opts ...Option) {
	WithTestStorage(t, func(ctx context.Context, s *Storage) {
		db, err := s.CreateDatabase(ctx, "test")
		assert.NoError(t, err)
		if err == nil {
			fn(ctx, db)
		}
	}, opts...)
}

// withEngines runs fn for every supported engine
func withEngines(t *testing.T, fn func(t *testing.T, ctx context.Context, db *Database)) {
	for _, engine := range []string{EngineBbolt, EngineBadger} {
		t.Run(engine, func(t *testing.T) {
			WithTestDatabase(t, func(ctx context.Context, db *Database) {
				fn(t, ctx, db)
			}, WithEngine(engine))
		})
	}
}
