// Package migrations embeds the goose migrations for the support database
package migrations

import "embed"

//go:embed *.sql
var files embed.FS

// FS returns the embedded SQL migrations
func FS() embed.FS {
	return files
}
