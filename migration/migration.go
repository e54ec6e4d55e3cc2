// Package migration embeds the schema of the run store.
package migration

import "embed"

//go:embed *.sql
var FS embed.FS
