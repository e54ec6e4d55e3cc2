package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "spinlockdb"), Config{BusyTimeout: 5000})
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.Conn().Get(&one, "SELECT 1"))
	require.Equal(t, 1, one)
}

func TestDsn(t *testing.T) {
	require.Equal(t,
		"file:runs?_synchronous=normal&_journal_mode=wal&_busy_timeout=250",
		dsn("runs", Config{BusyTimeout: 250}),
	)
}
