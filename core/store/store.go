// Package store defines the run history kept across solver invocations.
package store

import (
	"context"
	"time"

	"github.com/kilianp07/crewsched/core/model"
)

// RunRecord captures one two-phase run and its outcome.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Catalog   string    `json:"catalog"`
	Shifts    int       `json:"shifts"`
	Params    string    `json:"params,omitempty"`

	DrivingBound   int `json:"driving_bound"`
	PathCoverBound int `json:"path_cover_bound"`
	Pool           int `json:"pool"`

	Phase1Status   string        `json:"phase1_status"`
	Phase1Duration time.Duration `json:"phase1_duration"`
	Phase2Status   string        `json:"phase2_status,omitempty"`
	Phase2Duration time.Duration `json:"phase2_duration,omitempty"`

	Drivers      int            `json:"drivers"`
	TotalDelay   int            `json:"total_delay"`
	TotalDriving int            `json:"total_driving"`
	TotalWorking int            `json:"total_working"`
	Rosters      []model.Roster `json:"rosters,omitempty"`
	// Error holds the failure message of an unsolved run.
	Error string `json:"error,omitempty"`
}

// Solved reports whether the run produced a schedule.
func (r RunRecord) Solved() bool { return r.Error == "" && len(r.Rosters) > 0 }

// RunQuery defines filters for retrieving records. Zero fields match
// everything.
type RunQuery struct {
	Start   time.Time
	End     time.Time
	Catalog string
	// Limit keeps the most recent records only.
	Limit int
}

// Match reports whether rec passes the time and catalog filters.
func (q RunQuery) Match(rec RunRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	return q.Catalog == "" || rec.Catalog == q.Catalog
}

// RunStore persists RunRecords and supports querying. Query returns records
// oldest first.
type RunStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }

// NewRecord summarizes a schedule into a record. Bounds and phase fields
// are left to the caller.
func NewRecord(id string, ts time.Time, cat model.Catalog, s model.Schedule) RunRecord {
	return RunRecord{
		ID:           id,
		Timestamp:    ts,
		Catalog:      cat.Name,
		Shifts:       cat.Len(),
		Drivers:      s.Drivers,
		TotalDelay:   s.TotalDelay,
		TotalDriving: s.TotalDriving(),
		TotalWorking: s.TotalWorking(),
		Rosters:      s.Rosters,
	}
}

// Tail keeps the last limit records, all of them when limit is not positive.
func Tail(recs []RunRecord, limit int) []RunRecord {
	if limit <= 0 || len(recs) <= limit {
		return recs
	}
	return recs[len(recs)-limit:]
}
