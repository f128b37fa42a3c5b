//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3, selected by the cgo_sqlite
// build tag.
//
// Build with: CGO_ENABLED=1 go build -tags cgo_sqlite
//
// The actual driver import lives in contrib/sqlite-external to keep the
// optional external dependency separate from default builds.
package storage

import (
	_ "github.com/FocuswithJustin/StudyPress/contrib/sqlite-external" // CGO SQLite driver
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)
