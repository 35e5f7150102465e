//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
// This is used when the cgo_sqlite build tag is set.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package sqlite

import (
	_ "github.com/FocuswithJustin/JuniperAligner/contrib/sqlite-external" // CGO SQLite driver
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3 (via contrib/sqlite-external)"
)

// pragmaDSN appends connection pragmas in the mattn/go-sqlite3 form.
func pragmaDSN(path string, readOnly bool) string {
	dsn := "file:" + path + "?_busy_timeout=5000&_foreign_keys=1"
	if readOnly {
		dsn += "&mode=ro"
	}
	return dsn
}
