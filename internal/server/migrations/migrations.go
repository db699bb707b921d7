// Package migrations embeds the goose migrations for the PostgreSQL table
// backend.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
