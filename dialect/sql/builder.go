package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/arbor/dialect"
)

// Builder is the base type for all statement builders in this package.
// It holds the SQL being built, the collected arguments, and the dialect
// used for identifier quoting and parameter placeholders.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Dialect configures and returns a builder factory for the given dialect.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// DialectBuilder prefixes all root builders with the stored dialect.
type DialectBuilder struct {
	dialect string
}

// Select returns a Selector for the configured dialect.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return Select(columns...).SetDialect(d.dialect)
}

// Insert returns an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return Insert(table).SetDialect(d.dialect)
}

// Update returns an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return Update(table).SetDialect(d.dialect)
}

// Delete returns a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return Delete(table).SetDialect(d.dialect)
}

// Quote quotes the given identifier for the configured dialect.
func (b *Builder) Quote(ident string) string {
	switch {
	// An identifier for the wildcard or a qualified
	// identifier is written as-is.
	case ident == "*", strings.ContainsAny(ident, "`\"("):
		return ident
	case b.dialect == dialect.Postgres:
		return strconv.Quote(ident)
	default:
		return "`" + ident + "`"
	}
}

// Ident writes the given quoted identifier to the query.
func (b *Builder) Ident(s string) *Builder {
	b.sb.WriteString(b.Quote(s))
	return b
}

// IdentComma writes the given identifiers comma-separated.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(s[i])
	}
	return b
}

// WriteString appends the string as-is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Arg appends an argument to the statement and writes its placeholder.
// PostgreSQL placeholders are positional ($1, $2, ...), the rest use "?".
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteString("$" + strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteString("?")
	}
	return b
}

// Args appends the given arguments comma-separated.
func (b *Builder) Args(vs ...any) *Builder {
	for i := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(vs[i])
	}
	return b
}

// String returns the accumulated SQL.
func (b *Builder) String() string { return b.sb.String() }

// P is a query predicate: a function that writes a condition
// into the statement builder.
type P func(*Builder)

// EQ returns a "=" predicate.
func EQ(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" = ").Arg(v)
	}
}

// NEQ returns a "<>" predicate.
func NEQ(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" <> ").Arg(v)
	}
}

// GT returns a ">" predicate.
func GT(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" > ").Arg(v)
	}
}

// GTE returns a ">=" predicate.
func GTE(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" >= ").Arg(v)
	}
}

// LT returns a "<" predicate.
func LT(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" < ").Arg(v)
	}
}

// LTE returns a "<=" predicate.
func LTE(col string, v any) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" <= ").Arg(v)
	}
}

// In returns an "IN" predicate. An empty value list
// renders the always-false condition "FALSE".
func In(col string, vs ...any) P {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN (").Args(vs...).WriteString(")")
	}
}

// NotIn returns a "NOT IN" predicate.
func NotIn(col string, vs ...any) P {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Ident(col).WriteString(" NOT IN (").Args(vs...).WriteString(")")
	}
}

// IsNull returns an "IS NULL" predicate.
func IsNull(col string) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	}
}

// NotNull returns an "IS NOT NULL" predicate.
func NotNull(col string) P {
	return func(b *Builder) {
		b.Ident(col).WriteString(" IS NOT NULL")
	}
}

// And combines the given predicates with AND.
func And(ps ...P) P {
	return func(b *Builder) {
		b.WriteString("(")
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p(b)
		}
		b.WriteString(")")
	}
}

// Or combines the given predicates with OR.
func Or(ps ...P) P {
	return func(b *Builder) {
		b.WriteString("(")
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p(b)
		}
		b.WriteString(")")
	}
}

// Not negates the given predicate.
func Not(p P) P {
	return func(b *Builder) {
		b.WriteString("NOT (")
		p(b)
		b.WriteString(")")
	}
}

// Asc returns an ascending order clause for the given column.
func Asc(col string) string { return col + " ASC" }

// Desc returns a descending order clause for the given column.
func Desc(col string) string { return col + " DESC" }

// Selector builds a SELECT statement.
type Selector struct {
	dialect string
	columns []string
	table   string
	preds   []P
	order   []string
	limit   int
}

// Select returns a Selector for the given columns.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// SetDialect sets the dialect used for quoting and placeholders.
func (s *Selector) SetDialect(name string) *Selector {
	s.dialect = name
	return s
}

// From sets the source table.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Where adds a predicate. Multiple calls are combined with AND.
func (s *Selector) Where(p P) *Selector {
	if p != nil {
		s.preds = append(s.preds, p)
	}
	return s
}

// OrderBy appends order clauses (see Asc and Desc).
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit sets the maximum number of rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = n
	return s
}

// Query returns the SQL string and its arguments.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		b.IdentComma(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	writeWhere(b, s.preds)
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			col, dir, found := strings.Cut(o, " ")
			b.Ident(col)
			if found {
				b.WriteString(" " + dir)
			}
		}
	}
	if s.limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return b.String(), b.args
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    []any
	returning string
}

// Insert returns an InsertBuilder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// SetDialect sets the dialect used for quoting and placeholders.
func (i *InsertBuilder) SetDialect(name string) *InsertBuilder {
	i.dialect = name
	return i
}

// Columns sets the insert columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values sets one row of values matching the columns.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values...)
	return i
}

// Returning adds a RETURNING clause. Only meaningful on PostgreSQL.
func (i *InsertBuilder) Returning(column string) *InsertBuilder {
	i.returning = column
	return i
}

// Query returns the SQL string and its arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ").Ident(i.table).
		WriteString(" (").IdentComma(i.columns...).WriteString(")").
		WriteString(" VALUES (").Args(i.values...).WriteString(")")
	if i.returning != "" && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ").Ident(i.returning)
	}
	return b.String(), b.args
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
	preds   []P
}

// Update returns an UpdateBuilder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// SetDialect sets the dialect used for quoting and placeholders.
func (u *UpdateBuilder) SetDialect(name string) *UpdateBuilder {
	u.dialect = name
	return u
}

// Set adds a column assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where adds a predicate. Multiple calls are combined with AND.
func (u *UpdateBuilder) Where(p P) *UpdateBuilder {
	if p != nil {
		u.preds = append(u.preds, p)
	}
	return u
}

// Query returns the SQL string and its arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	writeWhere(b, u.preds)
	return b.String(), b.args
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	dialect string
	table   string
	preds   []P
}

// Delete returns a DeleteBuilder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// SetDialect sets the dialect used for quoting and placeholders.
func (d *DeleteBuilder) SetDialect(name string) *DeleteBuilder {
	d.dialect = name
	return d
}

// Where adds a predicate. Multiple calls are combined with AND.
func (d *DeleteBuilder) Where(p P) *DeleteBuilder {
	if p != nil {
		d.preds = append(d.preds, p)
	}
	return d
}

// Query returns the SQL string and its arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &Builder{dialect: d.dialect}
	b.WriteString("DELETE FROM ").Ident(d.table)
	writeWhere(b, d.preds)
	return b.String(), b.args
}

func writeWhere(b *Builder, preds []P) {
	if len(preds) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	And(preds...)(b)
}

// fmtArgs renders arguments for logging and cache keys.
func fmtArgs(args []any) string {
	return fmt.Sprintf("%v", args)
}
