package queryir

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError lists every structural problem found in a query.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + strings.Join(e.Problems, "; ")
}

// Validate checks a Select for structural soundness:
//   - at least one selected column
//   - every table name, alias and column is a plain identifier
//   - aliases are unique within their scope
//   - every qualified field refers to an alias in scope
//   - In predicates carry at least one value
//
// Validate is a pure function with no side effects.
func Validate(q Select) error {
	v := &validator{}
	v.validateSelect(q)
	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(q Select) {
	if len(q.Columns) == 0 {
		v.addProblem("select list is empty")
	}

	scope := map[string]bool{}
	v.declare(scope, q.From)
	for _, j := range q.Joins {
		v.declare(scope, j.Table)
	}

	for _, col := range q.Columns {
		v.checkField(scope, col)
	}
	for i, j := range q.Joins {
		if j.Left.IsZero() || j.Right.IsZero() {
			v.addProblem("join %d has no ON condition", i)
			continue
		}
		v.checkField(scope, j.Left)
		v.checkField(scope, j.Right)
	}
	for _, p := range q.Where {
		v.validatePredicate(scope, p)
	}
	if !q.GroupBy.IsZero() {
		v.checkField(scope, q.GroupBy)
	}
	if !q.OrderBy.IsZero() {
		v.checkField(scope, q.OrderBy)
	}
}

// declare adds a table's visible name to scope.
func (v *validator) declare(scope map[string]bool, t TableRef) {
	if !identPattern.MatchString(t.Name) {
		v.addProblem("invalid table name %q", t.Name)
	}
	name := t.Alias
	if name == "" {
		name = t.Name
	} else if !identPattern.MatchString(name) {
		v.addProblem("invalid alias %q", name)
	}
	if scope[name] {
		v.addProblem("duplicate alias %q", name)
	}
	scope[name] = true
}

func (v *validator) checkField(scope map[string]bool, f Field) {
	if !identPattern.MatchString(f.Column) {
		v.addProblem("invalid column %q", f.Column)
	}
	if f.Alias != "" && !scope[f.Alias] {
		v.addProblem("unknown alias %q in %s.%s", f.Alias, f.Alias, f.Column)
	}
}

func (v *validator) validatePredicate(scope map[string]bool, p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.checkField(scope, pred.Field)
	case In:
		v.checkField(scope, pred.Field)
		if len(pred.Values) == 0 {
			v.addProblem("IN on %s has no values", pred.Field.Column)
		}
	case FieldEquals:
		v.checkField(scope, pred.Left)
		v.checkField(scope, pred.Right)
	case NotExists:
		inner := make(map[string]bool, len(scope)+1)
		for k := range scope {
			inner[k] = true
		}
		v.declare(inner, pred.From)
		if len(pred.Where) == 0 {
			v.addProblem("NOT EXISTS subquery on %s is uncorrelated", pred.From.Name)
		}
		for _, ip := range pred.Where {
			v.validatePredicate(inner, ip)
		}
	case nil:
		v.addProblem("nil predicate")
	default:
		v.addProblem("unsupported predicate type %T", p)
	}
}
