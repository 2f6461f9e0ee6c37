package store

import (
	"context"

	"github.com/kilianp07/crewsched/core/factory"
	corestore "github.com/kilianp07/crewsched/core/store"
)

// init registers built-in run stores.
func init() {
	_ = corestore.RegisterRunStore("nop", func(map[string]any) (corestore.RunStore, error) {
		return corestore.NopStore{}, nil
	})

	_ = corestore.RegisterRunStore("jsonl", func(conf map[string]any) (corestore.RunStore, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}{Path: "runs/runs.jsonl", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})

	_ = corestore.RegisterRunStore("postgres", func(conf map[string]any) (corestore.RunStore, error) {
		var c struct {
			DSN string `json:"dsn"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPostgresStore(context.Background(), c.DSN)
	})

	_ = corestore.RegisterRunStore("sqlite", func(conf map[string]any) (corestore.RunStore, error) {
		c := struct {
			Path string `json:"path"`
		}{Path: "runs/runs.db"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}
