// Package migrations содержит SQL-миграции схемы базы данных,
// встроенные в бинарник
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
