package session

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/arbor"
	"github.com/syssam/arbor/dialect/sql"
	"github.com/syssam/arbor/graph"
)

// QueryOption narrows or orders a Find query.
type QueryOption func(*sql.Selector)

// Where adds a predicate. Multiple Where options are combined with AND.
func Where(p sql.P) QueryOption {
	return func(s *sql.Selector) { s.Where(p) }
}

// OrderBy appends order clauses (see sql.Asc and sql.Desc).
func OrderBy(columns ...string) QueryOption {
	return func(s *sql.Selector) { s.OrderBy(columns...) }
}

// Limit caps the number of returned rows.
func Limit(n int) QueryOption {
	return func(s *sql.Selector) { s.Limit(n) }
}

// Find returns the entities matching the given options, one per row and
// in query order, each with parent and children wired among the entities
// of this same result set. A parent outside the result set is left as a
// deferred reference.
func (s *Session[K, T]) Find(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	sel := sql.Select(s.spec.Columns...).From(s.spec.Table).SetDialect(s.drv.Dialect())
	for _, opt := range opts {
		opt(sel)
	}
	query, args := sel.Query()
	if s.cache == nil {
		rows, err := s.queryRows(ctx, query, args)
		if err != nil {
			return nil, arbor.NewQueryError(s.spec.Label, "find", err)
		}
		out, err := s.mat.Materialize(ctx, rows)
		if err != nil {
			return nil, arbor.NewQueryError(s.spec.Label, "find", err)
		}
		return out, nil
	}
	return s.findCached(ctx, query, args)
}

// Only returns the single entity matching the given options. It returns
// a NotFoundError for zero results and a NotSingularError for more than
// one.
func (s *Session[K, T]) Only(ctx context.Context, opts ...QueryOption) (*T, error) {
	nodes, err := s.Find(ctx, opts...)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 1:
		return nodes[0], nil
	case 0:
		return nil, arbor.NewNotFoundError(s.spec.Label)
	default:
		return nil, arbor.NewNotSingularErrorWithCount(s.spec.Label, len(nodes))
	}
}

// findCached consults the second-level cache before the store. Cached
// result sets are replayed through the same materialization pipeline as
// live rows, with a fresh identity map per call. Cache failures degrade
// to a store round-trip.
func (s *Session[K, T]) findCached(ctx context.Context, query string, args []any) ([]*T, error) {
	key := arbor.CacheKey{
		Table:      s.spec.Table,
		Operation:  "find",
		Predicates: fmt.Sprintf("%s|%v", query, args),
	}.String()
	if data, err := s.cache.Get(ctx, key); err != nil {
		s.log.WarnContext(ctx, "cache get failed", "table", s.spec.Table, "err", err)
	} else if data != nil {
		set, err := decodeRowset(data)
		if err != nil {
			s.log.WarnContext(ctx, "cache entry corrupt", "table", s.spec.Table, "err", err)
		} else {
			out, err := s.mat.Materialize(ctx, graph.NewValuesRowSource(set.Columns, set.Rows))
			if err != nil {
				return nil, arbor.NewQueryError(s.spec.Label, "find", err)
			}
			return out, nil
		}
	}
	rows, err := s.queryRows(ctx, query, args)
	if err != nil {
		return nil, arbor.NewQueryError(s.spec.Label, "find", err)
	}
	set, err := bufferRows(rows)
	if err != nil {
		return nil, arbor.NewQueryError(s.spec.Label, "find", err)
	}
	out, err := s.mat.Materialize(ctx, graph.NewValuesRowSource(set.Columns, set.Rows))
	if err != nil {
		return nil, arbor.NewQueryError(s.spec.Label, "find", err)
	}
	if data, err := encodeRowset(set); err != nil {
		s.log.WarnContext(ctx, "cache encode failed", "table", s.spec.Table, "err", err)
	} else if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.WarnContext(ctx, "cache set failed", "table", s.spec.Table, "err", err)
	}
	return out, nil
}

func (s *Session[K, T]) queryRows(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// rowset is a fully decoded query result, the unit stored in the cache.
type rowset struct {
	Columns []string `msgpack:"columns"`
	Rows    [][]any  `msgpack:"rows"`
}

// bufferRows drains a live result set into a rowset and closes it.
func bufferRows(rows *sql.Rows) (_ *rowset, rerr error) {
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	set := &rowset{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func encodeRowset(set *rowset) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRowset(data []byte) (*rowset, error) {
	set := &rowset{}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// Loose decoding folds the integer widths back to int64, matching
	// what database/sql drivers hand to sql.Scanner destinations.
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(set); err != nil {
		return nil, err
	}
	return set, nil
}
