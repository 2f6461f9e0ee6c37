package runs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	corestore "github.com/kilianp07/crewsched/core/store"
)

// NewHandler returns an HTTP handler exposing stored runs via GET /api/runs.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty. Supported query parameters are start and end (RFC3339),
// catalog and limit.
func NewHandler(store corestore.RunStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []corestore.RunRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (corestore.RunQuery, error) {
	v := r.URL.Query()
	q := corestore.RunQuery{Catalog: v.Get("catalog")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, &strconv.NumError{Func: "limit", Num: s, Err: strconv.ErrSyntax}
		}
		q.Limit = n
	}
	return q, nil
}
