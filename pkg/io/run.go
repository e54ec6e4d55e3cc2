package io

import (
	"errors"
	"fmt"

	"github.com/yudhasubki/spinlock/pkg/core"
)

var (
	ErrInvalidWorkers    = errors.New("workers must be at least 1")
	ErrInvalidIncrements = errors.New("increments must be at least 1")
	ErrTooManyWorkers    = errors.New("too many workers")
	ErrTooManyIncrements = errors.New("too many increments")
)

const (
	MaxWorkers    = 1024
	MaxIncrements = 10000000
)

type Run struct {
	Strategy   string `json:"strategy"`
	Workers    int    `json:"workers"`
	Increments int    `json:"increments"`
}

func (r Run) Validate() error {
	if _, err := core.ParseStrategy(r.Strategy); err != nil {
		return err
	}

	if r.Workers < 1 {
		return ErrInvalidWorkers
	}

	if r.Workers > MaxWorkers {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyWorkers, r.Workers, MaxWorkers)
	}

	if r.Increments < 1 {
		return ErrInvalidIncrements
	}

	if r.Increments > MaxIncrements {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyIncrements, r.Increments, MaxIncrements)
	}

	return nil
}

// ParsedStrategy returns the parsed strategy. Call Validate first.
func (r Run) ParsedStrategy() core.Strategy {
	strategy, _ := core.ParseStrategy(r.Strategy)
	return strategy
}

type ResponseRun struct {
	core.Run
	Passed bool `json:"passed"`
}

type ResponseRuns []ResponseRun

func NewResponseRuns(runs core.Runs) ResponseRuns {
	response := make(ResponseRuns, 0, len(runs))
	for _, run := range runs {
		response = append(response, ResponseRun{Run: run, Passed: run.Passed()})
	}

	return response
}
