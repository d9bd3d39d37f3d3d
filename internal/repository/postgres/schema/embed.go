// Package schema holds the Postgres migration files.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
