package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	Database *sqlx.DB
}

type Config struct {
	// BusyTimeout is the number of milliseconds a writer waits on a locked
	// database before failing with SQLITE_BUSY.
	BusyTimeout int
}

func New(dbName string, config Config) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn(dbName, config))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %s: %w", dbName, err)
	}

	// runs are written by one goroutine at a time; a single connection keeps
	// WAL writers from tripping over each other
	db.SetMaxOpenConns(1)

	return &SQLite{
		Database: db,
	}, nil
}

func dsn(dbName string, config Config) string {
	return fmt.Sprintf(
		"file:%s?_synchronous=normal&_journal_mode=wal&_busy_timeout=%d",
		dbName,
		config.BusyTimeout,
	)
}

func (sqlite *SQLite) Conn() *sqlx.DB {
	return sqlite.Database
}

func (sqlite *SQLite) Close() error {
	return sqlite.Database.Close()
}
