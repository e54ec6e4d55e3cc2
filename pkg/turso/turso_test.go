package turso

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEmptyURL(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrEmptyURL)
}
