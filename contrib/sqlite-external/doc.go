// Package sqliteexternal provides optional external SQLite drivers.
//
// This package is part of the main github.com/FocuswithJustin/StudyPress
// module and provides the CGO-based SQLite driver for performance-critical
// archive workloads.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3):
//
//	import _ "github.com/FocuswithJustin/StudyPress/contrib/sqlite-external"
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite
//
// # Default Pure Go Driver
//
// By default the chapter archive uses modernc.org/sqlite, which requires
// no CGO. See internal/storage for the driver selection.
//
// # When to Use
//
// Use this package when:
//   - Archiving whole books at a time and write throughput matters
//   - You need specific SQLite extensions
//   - You already have CGO in your build pipeline
//
// Use the default pure Go driver when:
//   - Portability is important
//   - Cross-compilation is required
//   - You want simpler deployment (single binary)
package sqliteexternal
