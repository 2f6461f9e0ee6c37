package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewsched/core/factory"
	corestore "github.com/kilianp07/crewsched/core/store"
)

func TestFactoryJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := corestore.NewRunStore(factory.ModuleConfig{
		Type: "jsonl",
		Conf: map[string]any{"path": path, "max_size_mb": "2"},
	})
	require.NoError(t, err)
	defer s.Close()
	js, ok := s.(*RotatingJSONLStore)
	require.True(t, ok)
	assert.Equal(t, 2, js.logger.MaxSize)
	assert.Equal(t, 5, js.logger.MaxBackups)

	require.NoError(t, s.Append(context.Background(), corestore.RunRecord{ID: "x"}))
	recs, err := s.Query(context.Background(), corestore.RunQuery{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestFactoryPostgresUnreachable(t *testing.T) {
	_, err := corestore.NewRunStore(factory.ModuleConfig{
		Type: "postgres",
		Conf: map[string]any{"dsn": "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"},
	})
	assert.ErrorContains(t, err, "ping postgres")
}

func TestFactorySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := corestore.NewRunStore(factory.ModuleConfig{
		Type: "sqlite",
		Conf: map[string]any{"path": path},
	})
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}
