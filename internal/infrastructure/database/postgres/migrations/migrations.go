// Package migrations embeds the versioned SQL schema applied by
// golang-migrate.
package migrations

import "embed"

// FS holds every *.sql migration, named <version>_<title>.(up|down).sql.
//
//go:embed *.sql
var FS embed.FS
