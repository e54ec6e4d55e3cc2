package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/yudhasubki/spinlock/pkg/stress"
)

type Migrate struct{}

func (m *Migrate) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("spinlock-migrate", flag.ContinueOnError)
	path := register(fs)
	fs.Usage = m.Usage

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

	driver, err := openDriver(cfg)
	if err != nil {
		return err
	}
	if driver == nil {
		return errorEmptyDriver
	}

	store := stress.NewStore(driver)
	defer store.Close()

	return store.Migrate(ctx)
}

func (m *Migrate) Usage() {
	fmt.Printf(`
The migrate command to migrate to the database.

Usage:
	spinlock migrate [arguments]

Arguments:
	-config PATH
	    Specifies the configuration file.
`[1:],
	)
}
