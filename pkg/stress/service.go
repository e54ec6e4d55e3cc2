package stress

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yudhasubki/spinlock/pkg/core"
	"github.com/yudhasubki/spinlock/pkg/io"
)

// Service executes runs and records them. A Service without a store runs
// without persisting.
type Service struct {
	runner *Runner
	store  *Store
}

func NewService(runner *Runner, store *Store) *Service {
	return &Service{
		runner: runner,
		store:  store,
	}
}

func (s *Service) Execute(ctx context.Context, request io.Run) (core.Run, error) {
	err := request.Validate()
	if err != nil {
		return core.Run{}, err
	}

	run, err := s.runner.Run(ctx, Config{
		Strategy:   request.ParsedStrategy(),
		Workers:    request.Workers,
		Increments: request.Increments,
	})
	if err != nil {
		return core.Run{}, err
	}

	if !run.Passed() {
		slog.Error(
			"contention run failed",
			LogPrefixRun, run.Id,
			LogPrefixStrategy, run.Strategy,
			"failure", run.Failure.String,
		)
	} else {
		slog.Info(
			"contention run passed",
			LogPrefixRun, run.Id,
			LogPrefixStrategy, run.Strategy,
			"counter", run.Counter,
			"contended", run.Contended,
			"duration_ns", run.DurationNs,
		)
	}

	if s.store == nil {
		return run, nil
	}

	err = s.store.CreateRun(ctx, run)
	if err != nil {
		slog.Error("[Execute] error create run", LogPrefixRun, run.Id, LogPrefixErr, err)
		return run, err
	}

	return run, nil
}

func (s *Service) Runs(ctx context.Context, filter core.FilterRun) (core.Runs, error) {
	if s.store == nil {
		return core.Runs{}, nil
	}

	return s.store.GetRuns(ctx, filter)
}

func (s *Service) Run(ctx context.Context, id uuid.UUID) (core.Run, error) {
	if s.store == nil {
		return core.Run{}, ErrRunNotFound
	}

	return s.store.GetRun(ctx, id)
}
