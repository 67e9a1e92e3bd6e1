// Package graph materializes self-referential entity graphs from flat,
// ordered relational result sets.
//
// A self-referential type carries a nullable foreign key into its own
// table. Given any query result over such a table, the package rebuilds
// the parent/children structure among the rows that were actually
// returned, with three guarantees:
//
//   - Identity: at most one in-memory instance per id within one
//     materialization call (IdentityMap).
//   - Ordering: children appear in row-source order, never re-sorted.
//   - Termination: resolution is a single linear pass keyed by id, so a
//     data-level parentId cycle cannot recurse; cost is O(n) for n rows.
//
// A parent referenced by key but absent from the row set is left
// unresolved. That is an observable state, not an error: the caller may
// trigger an explicit follow-up fetch (see session.LoadParent).
//
// The package is wired to a concrete entity type through NodeSpec, the
// same shape generated entity code plugs into an ent-style runtime:
// scan destinations, scalar assignment, id and parent-key accessors, and
// edge mutators.
package graph
