package goydb

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddress)
	assert.Equal(t, "bbolt", cfg.Engine)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.IndexInterval)

	t.Setenv("GOYVIEW_ENGINE", "badger")
	t.Setenv("GOYVIEW_BATCH_SIZE", "10")
	t.Setenv("GOYVIEW_INDEX_INTERVAL", "2s")
	t.Setenv("GOYVIEW_LOG_LEVEL", "debug")
	cfg, err = NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "badger", cfg.Engine)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.IndexInterval)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Len(t, cfg.ViewOptions(slog.Default()), 3)
}

func TestNewConfig_Invalid(t *testing.T) {
	for name, env := range map[string][2]string{
		"engine":     {"GOYVIEW_ENGINE", "sqlite"},
		"batch size": {"GOYVIEW_BATCH_SIZE", "-1"},
		"interval":   {"GOYVIEW_INDEX_INTERVAL", "0s"},
		"log level":  {"GOYVIEW_LOG_LEVEL", "loud"},
		"not an int": {"GOYVIEW_REDUCE_CHUNK", "many"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestBuildDatabase(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	cfg.DataDir = t.TempDir()

	gdb, err := cfg.BuildDatabase(context.Background(), slog.Default())
	require.NoError(t, err)
	defer gdb.Close()

	srv := httptest.NewServer(gdb.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/_all_dbs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/_metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
