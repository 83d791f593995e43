// Package migrations embeds the goose SQL migrations of the grading schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
