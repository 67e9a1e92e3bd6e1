package graph

// IdentityMap guarantees at most one in-memory instance per identity for
// the lifetime of one materialization call. Each call constructs its own
// map, so concurrent materializations never share instances and no
// locking is needed here.
//
// The map is keyed by id only; the entity type is fixed by the generic
// instantiation, which gives the (type, id) keying of the contract.
type IdentityMap[K comparable, T any] struct {
	nodes map[K]*T
}

// NewIdentityMap returns an empty identity map.
func NewIdentityMap[K comparable, T any]() *IdentityMap[K, T] {
	return &IdentityMap[K, T]{nodes: make(map[K]*T)}
}

// Register returns the canonical instance for id. If one is already
// registered the factory is ignored and the existing instance is
// returned unchanged; otherwise the factory is invoked, its result
// stored and returned. Re-registration is an idempotent no-op, never an
// error.
func (m *IdentityMap[K, T]) Register(id K, factory func() *T) *T {
	if n, ok := m.nodes[id]; ok {
		return n
	}
	n := factory()
	m.nodes[id] = n
	return n
}

// Lookup returns the instance registered for id, if any.
func (m *IdentityMap[K, T]) Lookup(id K) (*T, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Len returns the number of registered identities.
func (m *IdentityMap[K, T]) Len() int {
	return len(m.nodes)
}
