// Package arbor is a small persistence layer for self-referential entity
// types: records that carry a nullable foreign key into their own table
// (a "parent" column) and expose the derived "children" collection.
//
// The hard part of the problem is not CRUD but materialization: turning a
// flat, ordered relational result set back into a linked object graph with
// exactly one in-memory instance per identity, children in row order, and
// no unbounded recursion even when the underlying data forms a cycle.
//
// The module is layered the usual way:
//
//   - dialect and dialect/sql abstract the database driver
//     (PostgreSQL, MySQL, SQLite) behind a narrow Exec/Query surface.
//   - graph implements the core: identity map, row hydration and the
//     single-pass self-reference resolver.
//   - session provides the storage collaborator (Save, Find, Only,
//     GetReference, LoadParent) on top of both, with an optional
//     second-level query cache.
//
// This root package holds the error taxonomy shared by all layers and the
// Cache contract the session consults.
package arbor
