package database

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/gocraft/dbr/v2"
	_ "github.com/go-sql-driver/mysql"
)

var connection *dbr.Connection

// Instance returns database singleton instance
func Instance() *dbr.Connection {
	// using a package global variable
	if connection == nil {
		// checking whether it's called during `go test`
		testMode := flag.Lookup("test.v") != nil

		dsn := os.Getenv("STRONGHOLD_DATABASE")
		if testMode {
			dsn = os.Getenv("STRONGHOLD_TEST_DATABASE")
		}

		conn, err := dbr.Open("mysql", strings.TrimSpace(dsn), nil)
		if err != nil {
			log.Fatalf("failed to connect to database: %s", err)
		}

		connection = conn
	}

	return connection
}

// MySQLForTesting returns a connection to the test database
// NOTE: must only be used from within `go test`
func MySQLForTesting() (*dbr.Connection, error) {
	return dbr.Open("mysql", strings.TrimSpace(os.Getenv("STRONGHOLD_TEST_DATABASE")), nil)
}
