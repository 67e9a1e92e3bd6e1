// Package sql provides SQL statement building primitives and the
// database/sql-backed dialect.Driver implementation.
//
// # Builder Types
//
// The package provides specialized builders for different SQL operations:
//
//   - Selector: SELECT query builder with predicates, ordering and limit
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//
// # Dialect Support
//
// SQL generation adapts to different database dialects:
//
//	import "github.com/syssam/arbor/dialect"
//
//	// PostgreSQL ($N placeholders, double-quoted identifiers)
//	b := sql.Dialect(dialect.Postgres)
//	b.Select("id", "name").From("users").Where(sql.EQ("status", "active"))
//
//	// MySQL / SQLite (? placeholders, backtick identifiers)
//	b := sql.Dialect(dialect.MySQL)
//
// # Predicates
//
//	sql.EQ("name", "john")           // name = ?
//	sql.NEQ("status", "deleted")     // status <> ?
//	sql.In("status", "a", "b")       // status IN (?, ?)
//	sql.IsNull("deleted_at")         // deleted_at IS NULL
//	sql.And(p1, p2), sql.Or(p1, p2), sql.Not(p)
//
// # Instrumentation
//
// NewStatsDriver wraps a Driver with query counters and slow-query
// logging through log/slog. Constraint-violation classification for
// PostgreSQL, MySQL and SQLite driver errors lives in constraint.go.
package sql
