// Package migrations contiene el esquema SQLite embebido.
package migrations

import "embed"

// FS archivos .sql aplicados en orden por nombre.
//
//go:embed *.sql
var FS embed.FS
