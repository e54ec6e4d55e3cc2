package io

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yudhasubki/spinlock/pkg/core"
)

func TestRunValidate(t *testing.T) {
	tests := []struct {
		name      string
		request   Run
		expectErr error
	}{
		{"valid", Run{Strategy: "spin", Workers: 2, Increments: 10}, nil},
		{"default strategy", Run{Workers: 1, Increments: 1}, nil},
		{"unknown strategy", Run{Strategy: "ticket", Workers: 1, Increments: 1}, core.ErrUnknownStrategy},
		{"no workers", Run{Strategy: "mutex", Increments: 1}, ErrInvalidWorkers},
		{"no increments", Run{Strategy: "backoff", Workers: 1}, ErrInvalidIncrements},
		{"max bounds", Run{Strategy: "spin", Workers: MaxWorkers, Increments: MaxIncrements}, nil},
		{"too many workers", Run{Strategy: "spin", Workers: 100000000, Increments: 1}, ErrTooManyWorkers},
		{"too many increments", Run{Strategy: "spin", Workers: 1, Increments: MaxIncrements + 1}, ErrTooManyIncrements},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.request.Validate()
			if test.expectErr != nil {
				require.ErrorIs(t, err, test.expectErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewResponseRuns(t *testing.T) {
	runs := core.Runs{
		{Strategy: core.StrategySpin, Expected: 4, Counter: 4},
		{Strategy: core.StrategySpin, Expected: 4, Counter: 3},
	}

	response := NewResponseRuns(runs)
	require.Len(t, response, 2)
	require.True(t, response[0].Passed)
	require.False(t, response[1].Passed)
	require.Equal(t, core.StrategyBackOff, Run{Strategy: "backoff"}.ParsedStrategy())
}
