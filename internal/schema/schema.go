// Package schema describes the caller-owned object table that tags are
// attached to.
//
// Table and column names are inlined into generated SQL, so an Object must
// pass Validate before any query is built from it.
package schema

import (
	"fmt"
	"regexp"
)

// DefaultIDColumn is the join key used when Object.IDColumn is empty.
// SQLite exposes rowid on every ordinary table.
const DefaultIDColumn = "rowid"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Object is the descriptor for the caller's object table.
type Object struct {
	// Table is the name of the object table.
	Table string `yaml:"table" json:"table"`

	// IDColumn holds the integer id referenced by tag_assignments.object_id.
	IDColumn string `yaml:"id_column" json:"id_column"`

	// Columns is the ordered select list handed to the row materializer.
	Columns []string `yaml:"columns" json:"columns"`

	// GroupBy deduplicates objects reached through several join paths.
	GroupBy string `yaml:"group_by" json:"group_by"`

	// OrderBy determines result order for every query.
	OrderBy string `yaml:"order_by" json:"order_by"`
}

// ValidationError reports an invalid descriptor field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Field, e.Message)
}

// WithDefaults returns a copy with empty IDColumn, GroupBy and OrderBy
// filled in. Columns is copied so later edits to the original do not leak.
func (o Object) WithDefaults() Object {
	out := o
	out.Columns = append([]string(nil), o.Columns...)
	if out.IDColumn == "" {
		out.IDColumn = DefaultIDColumn
	}
	if out.GroupBy == "" {
		out.GroupBy = out.IDColumn
	}
	if out.OrderBy == "" {
		out.OrderBy = out.IDColumn
	}
	return out
}

// Validate checks that every identifier is a plain SQL identifier.
// Call it on the result of WithDefaults.
func (o Object) Validate() error {
	if o.Table == "" {
		return &ValidationError{Field: "table", Message: "must not be empty"}
	}
	if err := checkIdent("table", o.Table); err != nil {
		return err
	}
	if len(o.Columns) == 0 {
		return &ValidationError{Field: "columns", Message: "at least one column is required"}
	}
	for i, col := range o.Columns {
		if err := checkIdent(fmt.Sprintf("columns[%d]", i), col); err != nil {
			return err
		}
	}
	for _, f := range []struct{ name, value string }{
		{"id_column", o.IDColumn},
		{"group_by", o.GroupBy},
		{"order_by", o.OrderBy},
	} {
		if err := checkIdent(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func checkIdent(field, value string) error {
	if !identPattern.MatchString(value) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%q is not a valid identifier", value)}
	}
	return nil
}
