package turso

import (
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var ErrEmptyURL = errors.New("turso url is empty")

func init() {
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

type Turso struct {
	Database *sqlx.DB
}

// New opens a libsql database. The connection is established lazily on
// first use.
func New(url string) (*Turso, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	db, err := sqlx.Open("libsql", url)
	if err != nil {
		return nil, err
	}

	return &Turso{
		Database: db,
	}, nil
}

func (t *Turso) Conn() *sqlx.DB {
	return t.Database
}

func (t *Turso) Close() error {
	return t.Database.Close()
}
