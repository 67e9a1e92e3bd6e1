// Package dialect provides the database dialect abstraction for arbor.
//
// It defines the interfaces and types used for database-specific
// operations, allowing the session and graph layers to run against
// multiple backends.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the narrow surface everything above the
// database speaks to:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback.
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/arbor/dialect"
//	    "github.com/syssam/arbor/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:test?mode=memory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// Wrap any driver with Debug to log outgoing statements through log/slog:
//
//	logged := dialect.Debug(drv)
package dialect
