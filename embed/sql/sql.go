// Package sql embeds the database schemas.
package sql

import _ "embed"

// SQLite is the schema applied by the SQLite gateway on Init.
//
//go:embed sqlite.sql
var SQLite string

// Postgres is the schema applied by the PostgreSQL gateway on Init.
//
//go:embed postgres.sql
var Postgres string
