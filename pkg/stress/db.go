package stress

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/yudhasubki/spinlock/migration"
	"github.com/yudhasubki/spinlock/pkg/core"
)

var (
	ErrRunNotFound = errors.New("run not found")
)

const createRunRetries = 5

type Driver interface {
	Conn() *sqlx.DB
	Close() error
}

type Store struct {
	Database Driver
}

func NewStore(driver Driver) *Store {
	return &Store{
		Database: driver,
	}
}

// Migrate executes the embedded schema files in name order.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migration.FS, ".")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		query, err := fs.ReadFile(migration.FS, entry.Name())
		if err != nil {
			return err
		}

		_, err = s.Database.Conn().ExecContext(ctx, string(query))
		if err != nil {
			slog.Error("failed migrate", "filename", entry.Name(), LogPrefixErr, err)
			return err
		}
		slog.Info("successfully migrate", "filename", entry.Name())
	}

	return nil
}

// CreateRun stores run. Writes that hit a busy or locked database are
// retried with exponential backoff.
func (s *Store) CreateRun(ctx context.Context, run core.Run) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(func() error {
		err := s.tx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
			return s.createTxRun(ctx, tx, run)
		})
		if err != nil && !transient(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			slog.Debug("retry create run", LogPrefixRun, run.Id, LogPrefixErr, err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, createRunRetries), ctx))
}

func (s *Store) createTxRun(ctx context.Context, tx *sqlx.Tx, run core.Run) error {
	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO runs
		(id, strategy, workers, increments, expected, counter, contended, violations, duration_ns, created_at, failure)
		VALUES
		(:id, :strategy, :workers, :increments, :expected, :counter, :contended, :violations, :duration_ns, :created_at, :failure)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, run)
	if err != nil {
		return err
	}

	return nil
}

func (s *Store) GetRuns(ctx context.Context, filter core.FilterRun) (core.Runs, error) {
	var (
		runs  = make(core.Runs, 0, filter.PageLimit())
		query = "SELECT * FROM runs"
	)

	clause, arg := filter.Filter("AND")
	if clause != "" {
		query += " WHERE " + clause
	}
	query += " " + filter.Sort()
	if page := filter.Page(); page != "" {
		query += " " + page
	}

	query, args, err := sqlx.Named(query, arg)
	if err != nil {
		return runs, err
	}

	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return runs, err
	}
	query = s.Database.Conn().Rebind(query)

	err = s.Database.Conn().SelectContext(ctx, &runs, query, args...)
	if err != nil {
		return runs, err
	}

	return runs, nil
}

func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (core.Run, error) {
	runs, err := s.GetRuns(ctx, core.FilterRun{Id: []uuid.UUID{id}})
	if err != nil {
		return core.Run{}, err
	}

	if len(runs) == 0 {
		return core.Run{}, ErrRunNotFound
	}

	return runs[0], nil
}

func (s *Store) Close() error {
	return s.Database.Close()
}

func (s *Store) tx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := s.Database.Conn().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	err = fn(ctx, tx)
	if err != nil {
		if errTx := tx.Rollback(); errTx != nil {
			slog.Error("failed rollback", LogPrefixErr, errTx)
		}

		return err
	}

	return tx.Commit()
}

func transient(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}
