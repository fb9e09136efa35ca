// Package db owns the schema. Postgres is migrated with golang-migrate;
// sqlite gets the same DDL applied directly.
package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
