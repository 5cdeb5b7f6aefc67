// Package migrations embeds the PostgreSQL schema for the postgres storage backend.
package migrations

import "embed"

// FS holds the numbered golang-migrate up/down files
//
//go:embed *.sql
var FS embed.FS
