package relax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpinnerCount(t *testing.T) {
	var s Spinner
	for i := 0; i < 3*YieldEvery+1; i++ {
		s.Spin()
	}
	require.EqualValues(t, 3*YieldEvery+1, s.n)
}

func TestPause(t *testing.T) {
	for i := 0; i < 1000; i++ {
		Pause()
	}
}

func BenchmarkPause(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Pause()
	}
}
