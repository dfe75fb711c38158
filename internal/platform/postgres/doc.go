// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx driver. Every query is scoped by owner,
// driver errors are translated to store sentinels in errors.go, and the
// goose migrations that define the schema are embedded in the package.
package postgres
