package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corestore "github.com/kilianp07/crewsched/core/store"
)

func TestSQLiteStoreAppendQuery(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, sampleRecord("a", "small", base)))
	require.NoError(t, s.Append(ctx, sampleRecord("b", "medium", base.Add(time.Minute))))
	require.NoError(t, s.Append(ctx, sampleRecord("c", "small", base.Add(2*time.Minute))))

	all, err := s.Query(ctx, corestore.RunQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)
	require.Len(t, all[0].Rosters, 1)
	assert.Equal(t, 645, all[0].Rosters[0].WorkingTime)
	assert.True(t, all[0].Rosters[0].Assignments[1].AfterBreak)

	small, err := s.Query(ctx, corestore.RunQuery{Catalog: "small"})
	require.NoError(t, err)
	require.Len(t, small, 2)
	assert.Equal(t, "c", small[1].ID)

	window, err := s.Query(ctx, corestore.RunQuery{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "b", window[0].ID)

	last, err := s.Query(ctx, corestore.RunQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].ID)
	assert.Equal(t, "c", last[1].ID)
}

func TestSQLiteStoreDuplicateID(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	rec := sampleRecord("dup", "small", time.Now())
	require.NoError(t, s.Append(ctx, rec))
	assert.Error(t, s.Append(ctx, rec))
}
