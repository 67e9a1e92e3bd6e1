package graph

import "fmt"

// NodeSpec binds the materializer to a concrete self-referential entity
// type. It carries the table mapping plus the hooks generated (or
// hand-written) entity code implements: scan destinations, scalar
// assignment, identity accessors and edge mutators.
//
// K is the primary-key type, T the entity type.
type NodeSpec[K comparable, T any] struct {
	// Label names the entity type in errors, e.g. "self_ref_example".
	Label string
	// Table is the backing table name.
	Table string
	// IDColumn is the primary-key column name.
	IDColumn string
	// ParentColumn is the self-referential foreign-key column name.
	ParentColumn string
	// Columns lists all scalar columns, including IDColumn and
	// ParentColumn, in the order statements select them.
	Columns []string

	// New returns an empty entity with no edges wired.
	New func() *T

	// ScanValues returns one scan destination per requested column.
	ScanValues func(columns []string) ([]any, error)

	// Assign copies the scanned values into the entity's scalar fields.
	// It must fail if the id column is missing or NULL, and must never
	// touch the parent or children edges: the materializer re-invokes it
	// on already-wired instances to refresh scalar state from the row.
	Assign func(e *T, columns []string, values []any) error

	// ID returns the entity's primary key.
	ID func(e *T) K

	// ParentID returns the entity's parent key and whether one is set.
	ParentID func(e *T) (K, bool)

	// SetParent wires the resolved parent reference.
	SetParent func(child, parent *T)

	// AppendChild appends child to parent's children collection.
	AppendChild func(parent, child *T)

	// Children returns the current children collection.
	Children func(e *T) []*T

	// ResetEdges clears the parent reference and children collection.
	// The resolver calls it at the start of every pass so re-resolution
	// rebuilds instead of duplicating.
	ResetEdges func(e *T)

	// SetGeneratedID stores a database-generated integer key on the
	// entity. Optional: leave nil for application-assigned keys (UUIDs).
	SetGeneratedID func(e *T, id int64) error

	// SetID stores an application-known key on the entity. Optional:
	// used by the session for placeholder references (GetReference).
	SetID func(e *T, id K)

	// Values returns the entity's current values for the given columns,
	// in order, for INSERT and UPDATE statements. Optional: required
	// only by the session's write operations.
	Values func(e *T, columns []string) ([]any, error)
}

// validate reports the first missing required field.
func (s *NodeSpec[K, T]) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("graph: nil spec")
	case s.Label == "":
		return fmt.Errorf("graph: spec missing Label")
	case s.IDColumn == "":
		return fmt.Errorf("graph: spec %s missing IDColumn", s.Label)
	case s.New == nil:
		return fmt.Errorf("graph: spec %s missing New", s.Label)
	case s.ScanValues == nil:
		return fmt.Errorf("graph: spec %s missing ScanValues", s.Label)
	case s.Assign == nil:
		return fmt.Errorf("graph: spec %s missing Assign", s.Label)
	case s.ID == nil:
		return fmt.Errorf("graph: spec %s missing ID", s.Label)
	case s.ParentID == nil:
		return fmt.Errorf("graph: spec %s missing ParentID", s.Label)
	case s.SetParent == nil:
		return fmt.Errorf("graph: spec %s missing SetParent", s.Label)
	case s.AppendChild == nil:
		return fmt.Errorf("graph: spec %s missing AppendChild", s.Label)
	case s.Children == nil:
		return fmt.Errorf("graph: spec %s missing Children", s.Label)
	case s.ResetEdges == nil:
		return fmt.Errorf("graph: spec %s missing ResetEdges", s.Label)
	}
	return nil
}
