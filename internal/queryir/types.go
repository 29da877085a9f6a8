package queryir

// Query is a renderable query node.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate is a boolean filter condition.
//
// This is a sealed interface - only types in this package implement it.
// A slice of predicates is always a conjunction.
type Predicate interface {
	predicateNode()
}

// Field is a column reference, optionally qualified by a table alias.
//
//	Field{Alias: "o", Column: "title"}  →  o.title
//	Field{Column: "title"}              →  title
type Field struct {
	Alias  string
	Column string
}

// IsZero reports whether f names no column.
func (f Field) IsZero() bool {
	return f.Column == ""
}

// TableRef names a table and the alias it is visible under.
// An empty Alias renders the bare table name.
type TableRef struct {
	Name  string
	Alias string
}

// Join is an inner equi-join.
//
// Semantics:
//
//	INNER JOIN <table> AS <alias> ON <left> = <right>
type Join struct {
	Table TableRef
	Left  Field
	Right Field
}

// Select is a single SELECT statement.
//
// Semantics:
//
//	SELECT <columns> FROM <from> <joins...>
//	WHERE <where[0]> AND <where[1]> ...
//	GROUP BY <groupBy>
//	ORDER BY <orderBy>
//
// Where, GroupBy and OrderBy are optional.
type Select struct {
	Columns []Field
	From    TableRef
	Joins   []Join
	Where   []Predicate
	GroupBy Field
	OrderBy Field
}

func (Select) queryNode() {}

// Equals compares a field with a literal id.
//
//	t0.tag_id = ?
type Equals struct {
	Field Field
	Value int64
}

func (Equals) predicateNode() {}

// In tests membership of a field in a literal id list.
// Values must be non-empty.
//
//	ex.tag_id IN (?, ?, ?)
type In struct {
	Field  Field
	Values []int64
}

func (In) predicateNode() {}

// FieldEquals compares two fields. Used to correlate a subquery with its
// enclosing query.
//
//	ex.object_id = o.rowid
type FieldEquals struct {
	Left  Field
	Right Field
}

func (FieldEquals) predicateNode() {}

// NotExists is a negated correlated subquery.
//
//	NOT EXISTS (SELECT 1 FROM <from> WHERE <where...>)
//
// Aliases of the enclosing query are visible inside Where.
type NotExists struct {
	From  TableRef
	Where []Predicate
}

func (NotExists) predicateNode() {}
