// Package schema holds the SQLite migration files.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
