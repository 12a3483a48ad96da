package database

import (
	"fmt"

	"github.com/dgraph-io/badger"

	"github.com/agubarev/stronghold/pkg/util"
)

// OpenBadger opens a badger database at a given directory
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	return badger.Open(opts)
}

// CreateRandomBadgerDB creates a throwaway badger database,
// returning the database along with its directory path
func CreateRandomBadgerDB() (*badger.DB, string, error) {
	dir := fmt.Sprintf("/tmp/stronghold-testdb-%s", util.NewULID())

	db, err := OpenBadger(dir)
	if err != nil {
		return nil, "", err
	}

	return db, dir, nil
}
