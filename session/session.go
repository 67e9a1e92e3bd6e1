// Package session provides the storage collaborator for self-referential
// entity types: persistence (Save, Update, Delete, Refresh), querying
// (Find, Only) with graph materialization, placeholder references
// (GetReference) and explicit deferred-parent loading (LoadParent).
//
// Persistence behavior lives here and not on the entity type: the
// session is an explicit, injectable dependency, and entities stay plain
// data holders.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/arbor"
	"github.com/syssam/arbor/dialect"
	"github.com/syssam/arbor/dialect/sql"
	"github.com/syssam/arbor/graph"
)

// Session executes statements for one entity type against a
// dialect.Driver and materializes query results into entity graphs.
// It is safe for concurrent use: every query owns a call-scoped identity
// map, so concurrent materializations are isolated.
type Session[K comparable, T any] struct {
	drv   dialect.Driver
	spec  *graph.NodeSpec[K, T]
	mat   *graph.Materializer[K, T]
	cache arbor.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// Option configures a Session.
type Option[K comparable, T any] func(*Session[K, T])

// WithCache attaches an optional second-level query result cache.
// Cached result sets are replayed through the regular materialization
// pipeline, so identity-map semantics are unchanged. The cache is
// invalidated by table prefix on every mutation through this session.
func WithCache[K comparable, T any](c arbor.Cache, ttl time.Duration) Option[K, T] {
	return func(s *Session[K, T]) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithLogger sets the logger used for non-fatal cache failures.
func WithLogger[K comparable, T any](l *slog.Logger) Option[K, T] {
	return func(s *Session[K, T]) {
		s.log = l
	}
}

// New returns a Session for the given driver and entity spec.
func New[K comparable, T any](drv dialect.Driver, spec *graph.NodeSpec[K, T], opts ...Option[K, T]) (*Session[K, T], error) {
	mat, err := graph.NewMaterializer(spec)
	if err != nil {
		return nil, err
	}
	s := &Session[K, T]{
		drv:  drv,
		spec: spec,
		mat:  mat,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save inserts the entity. With a SetGeneratedID hook the id column is
// omitted from the insert and the database-generated key is stored back
// on the entity (RETURNING on PostgreSQL, LastInsertId elsewhere);
// without one the entity's own key is inserted as-is.
func (s *Session[K, T]) Save(ctx context.Context, e *T) error {
	if s.spec.Values == nil {
		return arbor.NewMutationError(s.spec.Label, "save", fmt.Errorf("spec has no Values hook"))
	}
	columns := s.spec.Columns
	if s.spec.SetGeneratedID != nil {
		columns = withoutColumn(columns, s.spec.IDColumn)
	}
	values, err := s.spec.Values(e, columns)
	if err != nil {
		return arbor.NewMutationError(s.spec.Label, "save", err)
	}
	ins := sql.Insert(s.spec.Table).SetDialect(s.drv.Dialect()).
		Columns(columns...).Values(values...)
	switch {
	case s.spec.SetGeneratedID != nil && s.drv.Dialect() == dialect.Postgres:
		query, args := ins.Returning(s.spec.IDColumn).Query()
		id, err := s.queryGeneratedID(ctx, query, args)
		if err != nil {
			return s.mutationError("save", err)
		}
		if err := s.spec.SetGeneratedID(e, id); err != nil {
			return arbor.NewMutationError(s.spec.Label, "save", err)
		}
	default:
		query, args := ins.Query()
		var res sql.Result
		if err := s.drv.Exec(ctx, query, args, &res); err != nil {
			return s.mutationError("save", err)
		}
		if s.spec.SetGeneratedID != nil {
			id, err := res.LastInsertId()
			if err != nil {
				return arbor.NewMutationError(s.spec.Label, "save", err)
			}
			if err := s.spec.SetGeneratedID(e, id); err != nil {
				return arbor.NewMutationError(s.spec.Label, "save", err)
			}
		}
	}
	s.invalidate(ctx)
	return nil
}

// Update writes the entity's scalar columns back by primary key.
func (s *Session[K, T]) Update(ctx context.Context, e *T) error {
	if s.spec.Values == nil {
		return arbor.NewMutationError(s.spec.Label, "update", fmt.Errorf("spec has no Values hook"))
	}
	columns := withoutColumn(s.spec.Columns, s.spec.IDColumn)
	values, err := s.spec.Values(e, columns)
	if err != nil {
		return arbor.NewMutationError(s.spec.Label, "update", err)
	}
	upd := sql.Update(s.spec.Table).SetDialect(s.drv.Dialect())
	for i, c := range columns {
		upd.Set(c, values[i])
	}
	query, args := upd.Where(sql.EQ(s.spec.IDColumn, s.spec.ID(e))).Query()
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return s.mutationError("update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return arbor.NewNotFoundErrorWithID(s.spec.Label, s.spec.ID(e))
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes the entity's row. Deleting an absent row returns a
// NotFoundError.
func (s *Session[K, T]) Delete(ctx context.Context, e *T) error {
	query, args := sql.Delete(s.spec.Table).SetDialect(s.drv.Dialect()).
		Where(sql.EQ(s.spec.IDColumn, s.spec.ID(e))).Query()
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return s.mutationError("delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return arbor.NewNotFoundErrorWithID(s.spec.Label, s.spec.ID(e))
	}
	s.invalidate(ctx)
	return nil
}

// Refresh re-reads the entity's scalar columns from storage onto the same
// instance. Wired edges are left untouched.
func (s *Session[K, T]) Refresh(ctx context.Context, e *T) error {
	query, args := sql.Select(s.spec.Columns...).From(s.spec.Table).
		SetDialect(s.drv.Dialect()).
		Where(sql.EQ(s.spec.IDColumn, s.spec.ID(e))).Query()
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return arbor.NewQueryError(s.spec.Label, "refresh", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return arbor.NewQueryError(s.spec.Label, "refresh", err)
		}
		return arbor.NewNotFoundErrorWithID(s.spec.Label, s.spec.ID(e))
	}
	columns, err := rows.Columns()
	if err != nil {
		return arbor.NewQueryError(s.spec.Label, "refresh", err)
	}
	values, err := s.spec.ScanValues(columns)
	if err != nil {
		return arbor.NewQueryError(s.spec.Label, "refresh", err)
	}
	if err := rows.Scan(values...); err != nil {
		return arbor.NewQueryError(s.spec.Label, "refresh", err)
	}
	if err := s.spec.Assign(e, columns, values); err != nil {
		return arbor.NewQueryError(s.spec.Label, "refresh", err)
	}
	return rows.Err()
}

// GetReference returns a placeholder entity holding only the given key.
// No query is issued; scalar state and edges are unloaded.
func (s *Session[K, T]) GetReference(id K) *T {
	e := s.spec.New()
	if s.spec.SetID != nil {
		s.spec.SetID(e, id)
	}
	return e
}

// LoadParent resolves a deferred parent reference with an explicit
// follow-up query. It returns (nil, nil) when the entity has no parent
// key, and a NotFoundError when the key points at a missing row. On
// success the parent edge is wired on both sides.
func (s *Session[K, T]) LoadParent(ctx context.Context, e *T) (*T, error) {
	pid, ok := s.spec.ParentID(e)
	if !ok {
		return nil, nil
	}
	parent, err := s.Only(ctx, Where(sql.EQ(s.spec.IDColumn, pid)))
	if err != nil {
		if arbor.IsNotFound(err) {
			return nil, arbor.NewNotFoundErrorWithID(s.spec.Label, pid)
		}
		return nil, err
	}
	s.spec.SetParent(e, parent)
	if !containsNode(s.spec.Children(parent), e) {
		s.spec.AppendChild(parent, e)
	}
	return parent, nil
}

// mutationError maps driver errors, classifying constraint violations.
func (s *Session[K, T]) mutationError(op string, err error) error {
	if sql.IsConstraintError(err) {
		return arbor.NewConstraintError(fmt.Sprintf("%s %s", op, s.spec.Label), err)
	}
	return arbor.NewMutationError(s.spec.Label, op, err)
}

// queryGeneratedID runs an INSERT ... RETURNING and scans the key.
func (s *Session[K, T]) queryGeneratedID(ctx context.Context, query string, args []any) (int64, error) {
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("no id returned")
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

// invalidate drops every cached result set for this session's table.
// Cache failures are logged, never propagated: the store is the source
// of truth.
func (s *Session[K, T]) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	prefix := arbor.CacheKey{Table: s.spec.Table}.TablePrefix()
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		s.log.WarnContext(ctx, "cache invalidation failed",
			"table", s.spec.Table, "err", err)
	}
}

func withoutColumn(columns []string, drop string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}

func containsNode[T any](nodes []*T, n *T) bool {
	for _, c := range nodes {
		if c == n {
			return true
		}
	}
	return false
}
