// Package db implementa los repositorios y el Unit of Work sobre
// database/sql, con soporte para Postgres (driver pgx) y SQLite (modernc).
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect distingue el sabor de SQL del backend.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Open abre el pool correspondiente al dialecto.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case Postgres:
		return sql.Open("pgx", dsn)
	case SQLite:
		return sql.Open("sqlite", dsn)
	default:
		return nil, fmt.Errorf("unknown dialect %d", dialect)
	}
}

// rebind traduce los placeholders `?` a `$N` cuando el backend es Postgres.
// Las queries se escriben una sola vez, en estilo `?`.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildFilters compone la cláusula WHERE de igualdad a partir del mapa de
// filtros, aceptando solo columnas de la whitelist. El resto se ignora.
func buildFilters(filters map[string]any, allowed map[string]bool) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	var clauses []string
	var args []any
	for col, val := range filters {
		if !allowed[col] {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", col))
		args = append(args, val)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// pageOffset traduce paginación 1-based a OFFSET.
func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
