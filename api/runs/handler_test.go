package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corestore "github.com/kilianp07/crewsched/core/store"
)

type memStore struct {
	recs []corestore.RunRecord
	err  error
}

func (m *memStore) Append(_ context.Context, r corestore.RunRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q corestore.RunQuery) ([]corestore.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var res []corestore.RunRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return corestore.Tail(res, q.Limit), nil
}

func (m *memStore) Close() error { return nil }

func seeded(t *testing.T) *memStore {
	t.Helper()
	base := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	store := &memStore{}
	for i, cat := range []string{"small", "medium", "small"} {
		require.NoError(t, store.Append(context.Background(), corestore.RunRecord{
			ID:        cat + "-" + string(rune('a'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Catalog:   cat,
		}))
	}
	return store
}

func get(t *testing.T, h http.Handler, url, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerAuthAndFilters(t *testing.T) {
	h := NewHandler(seeded(t), "secret")

	rr := get(t, h, "/api/runs", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = get(t, h, "/api/runs?catalog=small", "secret")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var recs []corestore.RunRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "small-a", recs[0].ID)
	assert.Equal(t, "small-c", recs[1].ID)

	rr = get(t, h, "/api/runs?start=2024-05-01T06:30:00Z&limit=1", "secret")
	require.Equal(t, http.StatusOK, rr.Code)
	recs = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "small-c", recs[0].ID)
}

func TestHandlerEmptyIsArray(t *testing.T) {
	rr := get(t, NewHandler(&memStore{}, ""), "/api/runs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestHandlerErrors(t *testing.T) {
	h := NewHandler(seeded(t), "")
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs?start=yesterday", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs?limit=-2", "").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	failing := NewHandler(&memStore{err: errors.New("db down")}, "")
	assert.Equal(t, http.StatusInternalServerError, get(t, failing, "/api/runs", "").Code)
}
