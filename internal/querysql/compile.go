package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/tagman/internal/queryir"
)

// Compiler renders queryir queries to parameterized SQLite SQL.
//
// Literal ids are never interpolated; each becomes a ? placeholder and is
// returned in the params slice in the order it appears in the text.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile validates q and converts it to SQL.
// Returns (sql, params, error) tuple.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *Compiler) compileSelect(q queryir.Select) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	b.WriteString(c.compileColumns(q.Columns))
	b.WriteString(" FROM ")
	b.WriteString(c.compileTable(q.From))

	for _, j := range q.Joins {
		fmt.Fprintf(&b, " INNER JOIN %s ON %s = %s",
			c.compileTable(j.Table), c.compileField(j.Left), c.compileField(j.Right))
	}

	if len(q.Where) > 0 {
		where, whereParams, err := c.compileConjunction(q.Where)
		if err != nil {
			return "", nil, fmt.Errorf("compile where: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = append(params, whereParams...)
	}

	if !q.GroupBy.IsZero() {
		b.WriteString(" GROUP BY ")
		b.WriteString(c.compileField(q.GroupBy))
	}
	if !q.OrderBy.IsZero() {
		b.WriteString(" ORDER BY ")
		b.WriteString(c.compileField(q.OrderBy))
	}

	return b.String(), params, nil
}

func (c *Compiler) compileColumns(cols []queryir.Field) string {
	parts := make([]string, len(cols))
	for i, f := range cols {
		parts[i] = c.compileField(f)
	}
	return strings.Join(parts, ", ")
}

func (c *Compiler) compileTable(t queryir.TableRef) string {
	if t.Alias == "" {
		return t.Name
	}
	return t.Name + " AS " + t.Alias
}

func (c *Compiler) compileField(f queryir.Field) string {
	if f.Alias == "" {
		return f.Column
	}
	return f.Alias + "." + f.Column
}

// compileConjunction joins predicates with AND.
func (c *Compiler) compileConjunction(preds []queryir.Predicate) (string, []any, error) {
	var parts []string
	var params []any
	for _, p := range preds {
		sql, ps, err := c.compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func (c *Compiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileField(pred.Field) + " = ?", []any{pred.Value}, nil
	case queryir.In:
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(pred.Values)), ", ")
		params := make([]any, len(pred.Values))
		for i, v := range pred.Values {
			params[i] = v
		}
		return fmt.Sprintf("%s IN (%s)", c.compileField(pred.Field), marks), params, nil
	case queryir.FieldEquals:
		return c.compileField(pred.Left) + " = " + c.compileField(pred.Right), nil, nil
	case queryir.NotExists:
		inner, params, err := c.compileConjunction(pred.Where)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s WHERE %s)", c.compileTable(pred.From), inner), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}
