package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/yudhasubki/spinlock/pkg/io"
	"github.com/yudhasubki/spinlock/pkg/stress"
)

type Stress struct{}

func (s *Stress) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("spinlock-stress", flag.ContinueOnError)
	path := register(fs)
	strategy := fs.String("strategy", "", "lock strategy: spin, backoff or mutex")
	workers := fs.Int("workers", 0, "number of contending goroutines")
	increments := fs.Int("increments", 0, "increments per goroutine")
	fs.Usage = s.Usage

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := ReadConfigFile(*path)
	if err != nil {
		return err
	}

	request := io.Run{
		Strategy:   cfg.Stress.Strategy,
		Workers:    cfg.Stress.Workers,
		Increments: cfg.Stress.Increments,
	}
	if *strategy != "" {
		request.Strategy = *strategy
	}
	if *workers > 0 {
		request.Workers = *workers
	}
	if *increments > 0 {
		request.Increments = *increments
	}

	driver, err := openDriver(cfg)
	if err != nil {
		return err
	}

	var store *stress.Store
	if driver != nil {
		store = stress.NewStore(driver)
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := stress.NewService(stress.NewRunner(), store).Execute(ctx, request)
	if err != nil {
		return err
	}

	if !run.Passed() {
		return fmt.Errorf("run %s failed: %s", run.Id, run.Failure.String)
	}

	return nil
}

func (s *Stress) Usage() {
	fmt.Printf(`
The stress command runs one contention run and reports the result.

Usage:
	spinlock stress [arguments]

Arguments:
	-config PATH
	    Specifies the configuration file. Optional.
	-strategy NAME
	    Overrides the lock strategy: spin, backoff or mutex.
	-workers N
	    Overrides the number of contending goroutines.
	-increments N
	    Overrides the increments performed by each goroutine.
`[1:],
	)
}
