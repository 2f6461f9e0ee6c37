package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/kilianp07/crewsched/core/model"
)

const shiftsSchema = `
CREATE TABLE IF NOT EXISTS crew_shifts (
	catalog         TEXT NOT NULL,
	position        INTEGER NOT NULL,
	label           TEXT NOT NULL,
	start_display   TEXT NOT NULL,
	end_display     TEXT NOT NULL,
	start_minute    INTEGER NOT NULL,
	end_minute      INTEGER NOT NULL,
	driving_minutes INTEGER NOT NULL,
	PRIMARY KEY (catalog, position),
	UNIQUE (catalog, label)
)`

// PostgresSource reads the shifts of one catalog from crew_shifts, ordered
// by position.
type PostgresSource struct {
	DSN  string
	Name string
}

func (s *PostgresSource) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (s *PostgresSource) Load(ctx context.Context) (model.Catalog, error) {
	db, err := s.open(ctx)
	if err != nil {
		return model.Catalog{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT label, start_display, end_display, start_minute, end_minute, driving_minutes
		FROM crew_shifts WHERE catalog = $1 ORDER BY position`, s.Name)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()
	cat := model.Catalog{Name: s.Name}
	for rows.Next() {
		var sh model.Shift
		if err := rows.Scan(&sh.Label, &sh.DisplayStart, &sh.DisplayEnd, &sh.StartMinute, &sh.EndMinute, &sh.DrivingMinutes); err != nil {
			return model.Catalog{}, fmt.Errorf("scan shift: %w", err)
		}
		cat.Shifts = append(cat.Shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return model.Catalog{}, err
	}
	cat = cat.Normalize()
	if err := cat.Validate(); err != nil {
		return model.Catalog{}, fmt.Errorf("catalog %s: %w", s.Name, err)
	}
	return cat, nil
}

// Save replaces the stored shifts of cat.Name, creating the table if needed.
func (s *PostgresSource) Save(ctx context.Context, cat model.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, shiftsSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM crew_shifts WHERE catalog = $1`, cat.Name); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for i, sh := range cat.Normalize().Shifts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO crew_shifts
			(catalog, position, label, start_display, end_display, start_minute, end_minute, driving_minutes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			cat.Name, i, sh.Label, sh.DisplayStart, sh.DisplayEnd, sh.StartMinute, sh.EndMinute, sh.DrivingMinutes); err != nil {
			return fmt.Errorf("insert shift %d: %w", i, err)
		}
	}
	return tx.Commit()
}
