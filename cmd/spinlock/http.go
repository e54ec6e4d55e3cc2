package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/lesismal/nbio/nbhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yudhasubki/spinlock/pkg/metric"
	"github.com/yudhasubki/spinlock/pkg/stress"
)

type Http struct{}

func (h *Http) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("spinlock-http", flag.ContinueOnError)
	path := register(fs)
	fs.Usage = h.Usage

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if *path == "" {
		return errorEmptyPath
	}

	cfg, err := ReadConfigFile(*path)
	if err != nil {
		return err
	}

	err = metric.Register(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	driver, err := openDriver(cfg)
	if err != nil {
		return err
	}

	var store *stress.Store
	if driver != nil {
		store = stress.NewStore(driver)
		defer store.Close()

		err = store.Migrate(ctx)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("no driver configured, runs are not persisted")
	}

	mux := chi.NewRouter()
	mux.Mount("/", (&stress.Http{
		Service:  stress.NewService(stress.NewRunner(), store),
		Gatherer: prometheus.DefaultGatherer,
	}).Router())

	engine := nbhttp.NewEngine(nbhttp.Config{
		Network: "tcp",
		Addrs:   []string{":" + cfg.Http.Port},
		Handler: mux,
		IOMod:   nbhttp.IOModNonBlocking,
	})

	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(shutdown)

	err = engine.Start()
	if err != nil {
		return err
	}
	slog.Info("serving contention harness", "port", cfg.Http.Port)

	select {
	case <-shutdown:
	case <-ctx.Done():
	}

	engine.Stop()

	return nil
}

func (h *Http) Usage() {
	fmt.Printf(`
The HTTP command serves the contention harness api and prometheus metrics.

Usage:
	spinlock http [arguments]

Arguments:
	-config PATH
	    Specifies the configuration file.
`[1:],
	)
}
