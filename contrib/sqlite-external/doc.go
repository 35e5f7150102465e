// Package sqliteexternal registers the optional CGO SQLite driver.
//
// The aligner's project database is opened through core/sqlite, which
// uses the pure Go modernc.org/sqlite driver by default. Building with the
// cgo_sqlite tag switches core/sqlite to github.com/mattn/go-sqlite3,
// registered by importing this package:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/aligner
//
// Use it when a project database is large enough that the CGO driver's
// speed matters; the default keeps the aligner a single static binary.
package sqliteexternal
