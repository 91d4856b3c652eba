// Package migrations embeds the inventory schema used by integration tests.
// Production schema management belongs to the inventory application.
package migrations

import "embed"

// FS holds the golang-migrate source files.
//
//go:embed *.sql
var FS embed.FS
