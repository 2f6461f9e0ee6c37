package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/kilianp07/crewsched/core/model"
	corestore "github.com/kilianp07/crewsched/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS crew_runs (
	id               TEXT PRIMARY KEY,
	ts               TIMESTAMPTZ NOT NULL,
	catalog          TEXT NOT NULL,
	shifts           INTEGER NOT NULL,
	params           TEXT NOT NULL DEFAULT '',
	driving_bound    INTEGER NOT NULL,
	path_cover_bound INTEGER NOT NULL,
	pool             INTEGER NOT NULL,
	phase1_status    TEXT NOT NULL,
	phase1_ms        BIGINT NOT NULL,
	phase2_status    TEXT NOT NULL DEFAULT '',
	phase2_ms        BIGINT NOT NULL DEFAULT 0,
	drivers          INTEGER NOT NULL,
	total_delay      INTEGER NOT NULL,
	total_driving    INTEGER NOT NULL,
	total_working    INTEGER NOT NULL,
	error            TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS crew_runs_catalog_ts ON crew_runs (catalog, ts);
CREATE TABLE IF NOT EXISTS crew_rosters (
	run_id       TEXT NOT NULL REFERENCES crew_runs(id) ON DELETE CASCADE,
	driver       INTEGER NOT NULL,
	start_time   INTEGER NOT NULL,
	end_time     INTEGER NOT NULL,
	driving_time INTEGER NOT NULL,
	working_time INTEGER NOT NULL,
	PRIMARY KEY (run_id, driver)
);
CREATE TABLE IF NOT EXISTS crew_assignments (
	run_id              TEXT NOT NULL,
	driver              INTEGER NOT NULL,
	position            INTEGER NOT NULL,
	label               TEXT NOT NULL,
	start_display       TEXT NOT NULL,
	end_display         TEXT NOT NULL,
	start_minute        INTEGER NOT NULL,
	end_minute          INTEGER NOT NULL,
	driving_minutes     INTEGER NOT NULL,
	cumulative_driving  INTEGER NOT NULL,
	since_break_driving INTEGER NOT NULL,
	after_break         BOOLEAN NOT NULL,
	delay               INTEGER NOT NULL,
	PRIMARY KEY (run_id, driver, position),
	FOREIGN KEY (run_id, driver) REFERENCES crew_rosters(run_id, driver) ON DELETE CASCADE
);`

// PostgresStore persists run records in crew_runs, crew_rosters and
// crew_assignments.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, checks the connection and creates the
// tables when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append inserts the run and its rosters in one transaction.
func (s *PostgresStore) Append(ctx context.Context, rec corestore.RunRecord) error {
	return s.transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO crew_runs
			(id, ts, catalog, shifts, params, driving_bound, path_cover_bound, pool,
			 phase1_status, phase1_ms, phase2_status, phase2_ms,
			 drivers, total_delay, total_driving, total_working, error)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			rec.ID, rec.Timestamp, rec.Catalog, rec.Shifts, rec.Params,
			rec.DrivingBound, rec.PathCoverBound, rec.Pool,
			rec.Phase1Status, rec.Phase1Duration.Milliseconds(),
			rec.Phase2Status, rec.Phase2Duration.Milliseconds(),
			rec.Drivers, rec.TotalDelay, rec.TotalDriving, rec.TotalWorking, rec.Error)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, r := range rec.Rosters {
			if _, err := tx.ExecContext(ctx, `INSERT INTO crew_rosters
				(run_id, driver, start_time, end_time, driving_time, working_time)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				rec.ID, r.Driver, r.StartTime, r.EndTime, r.DrivingTime, r.WorkingTime); err != nil {
				return fmt.Errorf("insert roster %d: %w", r.Driver, err)
			}
			for pos, a := range r.Assignments {
				if _, err := tx.ExecContext(ctx, `INSERT INTO crew_assignments
					(run_id, driver, position, label, start_display, end_display,
					 start_minute, end_minute, driving_minutes,
					 cumulative_driving, since_break_driving, after_break, delay)
					VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
					rec.ID, r.Driver, pos, a.Shift.Label, a.Shift.DisplayStart, a.Shift.DisplayEnd,
					a.Shift.StartMinute, a.Shift.EndMinute, a.Shift.DrivingMinutes,
					a.CumulativeDriving, a.SinceBreakDriving, a.AfterBreak, a.Delay); err != nil {
					return fmt.Errorf("insert assignment %d/%d: %w", r.Driver, pos, err)
				}
			}
		}
		return nil
	})
}

func (s *PostgresStore) transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (cause: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// Query returns the matching runs oldest first, with their rosters.
func (s *PostgresStore) Query(ctx context.Context, q corestore.RunQuery) ([]corestore.RunRecord, error) {
	where, args := runFilter(q)
	query := `SELECT id, ts, catalog, shifts, params, driving_bound, path_cover_bound, pool,
		phase1_status, phase1_ms, phase2_status, phase2_ms,
		drivers, total_delay, total_driving, total_working, error
		FROM crew_runs` + where + ` ORDER BY ts DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []corestore.RunRecord
	for rows.Next() {
		var r corestore.RunRecord
		var p1, p2 int64
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Catalog, &r.Shifts, &r.Params,
			&r.DrivingBound, &r.PathCoverBound, &r.Pool,
			&r.Phase1Status, &p1, &r.Phase2Status, &p2,
			&r.Drivers, &r.TotalDelay, &r.TotalDriving, &r.TotalWorking, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Phase1Duration = time.Duration(p1) * time.Millisecond
		r.Phase2Duration = time.Duration(p2) * time.Millisecond
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// newest first from the limit, oldest first to the caller
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	for i := range recs {
		if recs[i].Rosters, err = s.rosters(ctx, recs[i].ID); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func runFilter(q corestore.RunQuery) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.Catalog != "" {
		add("catalog = $%d", q.Catalog)
	}
	if !q.Start.IsZero() {
		add("ts >= $%d", q.Start)
	}
	if !q.End.IsZero() {
		add("ts <= $%d", q.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresStore) rosters(ctx context.Context, runID string) ([]model.Roster, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT driver, start_time, end_time, driving_time, working_time
		FROM crew_rosters WHERE run_id = $1 ORDER BY driver`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rosters: %w", err)
	}
	var out []model.Roster
	for rows.Next() {
		var r model.Roster
		if err := rows.Scan(&r.Driver, &r.StartTime, &r.EndTime, &r.DrivingTime, &r.WorkingTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := s.db.QueryContext(ctx, `SELECT driver, label, start_display, end_display,
		start_minute, end_minute, driving_minutes,
		cumulative_driving, since_break_driving, after_break, delay
		FROM crew_assignments WHERE run_id = $1 ORDER BY driver, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer arows.Close()
	byDriver := make(map[int]int, len(out))
	for i, r := range out {
		byDriver[r.Driver] = i
	}
	for arows.Next() {
		var d int
		var a model.Assignment
		if err := arows.Scan(&d, &a.Shift.Label, &a.Shift.DisplayStart, &a.Shift.DisplayEnd,
			&a.Shift.StartMinute, &a.Shift.EndMinute, &a.Shift.DrivingMinutes,
			&a.CumulativeDriving, &a.SinceBreakDriving, &a.AfterBreak, &a.Delay); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if i, ok := byDriver[d]; ok {
			out[i].Assignments = append(out[i].Assignments, a)
		}
	}
	return out, arows.Err()
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
