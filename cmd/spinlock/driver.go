package main

import (
	"fmt"
	"log/slog"

	"github.com/yudhasubki/spinlock/pkg/postgre"
	"github.com/yudhasubki/spinlock/pkg/sqlite"
	"github.com/yudhasubki/spinlock/pkg/stress"
	"github.com/yudhasubki/spinlock/pkg/turso"
)

// openDriver returns the configured run store driver, or nil when runs are
// not persisted.
func openDriver(cfg Config) (stress.Driver, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		db, err := sqlite.New(cfg.SQLite.DatabaseName, sqlite.Config{
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			slog.Error("failed to open database", "driver", cfg.Driver, "error", err)
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgre.New(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "turso":
		db, err := turso.New(cfg.Turso.URL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown driver : %v", cfg.Driver)
	}
}
