// Package sqlite implements the store driver on SQLite for single-node and
// development deployments. Embeddings are stored as JSON and compared in Go.
package sqlite

import (
	"database/sql"

	"github.com/pkg/errors"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database at the profile's DSN path.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	db, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}
	// Single writer; modernc's driver is not safe for concurrent writes on
	// one connection pool otherwise.
	db.SetMaxOpenConns(1)
	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}
