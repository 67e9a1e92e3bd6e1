package graph

import (
	"context"
	"fmt"
	"slices"
)

// Materializer drives one entity type through the Row Source -> Hydrator
// -> Identity Map -> Resolver pipeline. It is stateless between calls;
// every Materialize call owns a fresh identity map, so a single
// Materializer is safe for concurrent use.
type Materializer[K comparable, T any] struct {
	spec *NodeSpec[K, T]
}

// NewMaterializer validates the spec and returns a Materializer for it.
func NewMaterializer[K comparable, T any](spec *NodeSpec[K, T]) (*Materializer[K, T], error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &Materializer[K, T]{spec: spec}, nil
}

// Materialize consumes the row source to completion and returns one
// entity per row, in row order, with parent and children wired among the
// entities present in this same pass. Rows sharing an id yield the same
// instance. Errors abort the call with no partial result; the row source
// is closed either way.
func Materialize[K comparable, T any](ctx context.Context, rs RowSource, spec *NodeSpec[K, T]) ([]*T, error) {
	m, err := NewMaterializer(spec)
	if err != nil {
		return nil, err
	}
	return m.Materialize(ctx, rs)
}

// Materialize implements the package-level Materialize for a validated spec.
func (m *Materializer[K, T]) Materialize(ctx context.Context, rs RowSource) (result []*T, rerr error) {
	defer func() {
		if err := rs.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("graph: closing row source: %w", err)
		}
	}()
	columns, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("graph: reading columns: %w", err)
	}
	if !slices.Contains(columns, m.spec.IDColumn) {
		return nil, &HydrationError{
			Label: m.spec.Label,
			Row:   0,
			Err:   fmt.Errorf("row source has no %q column", m.spec.IDColumn),
		}
	}
	idmap := NewIdentityMap[K, T]()
	var (
		out   []*T // one entry per row, row order
		nodes []*T // unique instances, first-seen order
	)
	for row := 0; rs.Next(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, fresh, err := m.hydrate(idmap, rs, columns, row)
		if err != nil {
			return nil, err
		}
		if fresh {
			nodes = append(nodes, node)
		}
		out = append(out, node)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("graph: row source: %w", err)
	}
	if err := m.Resolve(nodes, idmap); err != nil {
		return nil, err
	}
	return out, nil
}

// hydrate converts the current row into its canonical entity instance.
// The returned flag reports whether the instance was first registered by
// this row. A pre-existing instance still has its scalar fields
// refreshed: the row is authoritative for scalar state, while edges wired
// so far are left untouched (Assign's contract).
func (m *Materializer[K, T]) hydrate(idmap *IdentityMap[K, T], rs RowSource, columns []string, row int) (*T, bool, error) {
	values, err := m.spec.ScanValues(columns)
	if err != nil {
		return nil, false, &HydrationError{Label: m.spec.Label, Row: row, Err: err}
	}
	if err := rs.Scan(values...); err != nil {
		return nil, false, &HydrationError{Label: m.spec.Label, Row: row, Err: err}
	}
	scratch := m.spec.New()
	if err := m.spec.Assign(scratch, columns, values); err != nil {
		return nil, false, &HydrationError{Label: m.spec.Label, Row: row, Err: err}
	}
	node := idmap.Register(m.spec.ID(scratch), func() *T { return scratch })
	if node == scratch {
		return node, true, nil
	}
	if err := m.spec.Assign(node, columns, values); err != nil {
		return nil, false, &HydrationError{Label: m.spec.Label, Row: row, Err: err}
	}
	return node, false, nil
}

// Resolve wires parent and children across the hydrated set in one linear
// pass. nodes must hold unique instances in hydration order; idmap is the
// identity map they were registered in.
//
// Edges are cleared up front and rebuilt, so invoking Resolve again over
// the same set is idempotent. A parent key pointing outside the set is
// left unresolved (a deferred reference, not an error). Because the pass
// is linear and keyed by id, a parentId cycle in the data terminates like
// any other input.
func (m *Materializer[K, T]) Resolve(nodes []*T, idmap *IdentityMap[K, T]) error {
	for _, n := range nodes {
		m.spec.ResetEdges(n)
	}
	for _, n := range nodes {
		pid, ok := m.spec.ParentID(n)
		if !ok {
			continue
		}
		parent, ok := idmap.Lookup(pid)
		if !ok {
			// Parent outside the current row set: left for an
			// explicit follow-up load.
			continue
		}
		m.spec.SetParent(n, parent)
		for _, c := range m.spec.Children(parent) {
			if c == n {
				return &ResolveError{
					Label: m.spec.Label,
					msg:   fmt.Sprintf("duplicate child link for id %v", m.spec.ID(n)),
				}
			}
		}
		m.spec.AppendChild(parent, n)
	}
	return nil
}

// Spec returns the spec the materializer was built with.
func (m *Materializer[K, T]) Spec() *NodeSpec[K, T] {
	return m.spec
}
