package querysql

import (
	"strconv"

	"github.com/roach88/tagman/internal/queryir"
	"github.com/roach88/tagman/internal/schema"
	"github.com/roach88/tagman/internal/tag"
)

// Storage table names shared with the store.
const (
	TagsTable        = "tags"
	AssignmentsTable = "tag_assignments"
)

const (
	assignmentAlias = "ta"
	exclusionAlias  = "ex"
	objectAlias     = "o"
)

// BuildSearch returns the query selecting every object that carries all
// included tags and none of the excluded ones. An empty search selects every
// object; an exclude-only search selects tagged objects only. obj must already carry defaults (schema.Object.WithDefaults).
func BuildSearch(obj schema.Object, s *tag.Search) queryir.Select {
	if s.IsEmpty() {
		return buildAll(obj)
	}

	included := s.IncludedIDs()
	excluded := s.ExcludedIDs()

	q := queryir.Select{
		Columns: qualified(objectAlias, obj.Columns),
		GroupBy: queryir.Field{Alias: objectAlias, Column: obj.GroupBy},
		OrderBy: queryir.Field{Alias: objectAlias, Column: obj.OrderBy},
	}

	objectID := queryir.Field{Alias: objectAlias, Column: obj.IDColumn}

	// Every non-empty search starts from the edge table, so only objects
	// with at least one assignment can match.
	q.From = queryir.TableRef{Name: AssignmentsTable, Alias: assignmentAlias}
	base := queryir.Field{Alias: assignmentAlias, Column: "object_id"}

	for i, id := range included {
		alias := "t" + strconv.Itoa(i)
		q.Joins = append(q.Joins, queryir.Join{
			Table: queryir.TableRef{Name: AssignmentsTable, Alias: alias},
			Left:  base,
			Right: queryir.Field{Alias: alias, Column: "object_id"},
		})
		q.Where = append(q.Where, queryir.Equals{
			Field: queryir.Field{Alias: alias, Column: "tag_id"},
			Value: id,
		})
	}

	q.Joins = append(q.Joins, queryir.Join{
		Table: queryir.TableRef{Name: obj.Table, Alias: objectAlias},
		Left:  objectID,
		Right: base,
	})

	if len(excluded) > 0 {
		q.Where = append(q.Where, queryir.NotExists{
			From: queryir.TableRef{Name: AssignmentsTable, Alias: exclusionAlias},
			Where: []queryir.Predicate{
				queryir.FieldEquals{
					Left:  queryir.Field{Alias: exclusionAlias, Column: "object_id"},
					Right: objectID,
				},
				queryir.In{
					Field:  queryir.Field{Alias: exclusionAlias, Column: "tag_id"},
					Values: excluded,
				},
			},
		})
	}

	return q
}

// BuildUntagged returns the query selecting objects with no assignment rows.
func BuildUntagged(obj schema.Object) queryir.Select {
	return queryir.Select{
		Columns: qualified(objectAlias, obj.Columns),
		From:    queryir.TableRef{Name: obj.Table, Alias: objectAlias},
		Where: []queryir.Predicate{
			queryir.NotExists{
				From: queryir.TableRef{Name: AssignmentsTable, Alias: assignmentAlias},
				Where: []queryir.Predicate{
					queryir.FieldEquals{
						Left:  queryir.Field{Alias: assignmentAlias, Column: "object_id"},
						Right: queryir.Field{Alias: objectAlias, Column: obj.IDColumn},
					},
				},
			},
		},
		OrderBy: queryir.Field{Alias: objectAlias, Column: obj.OrderBy},
	}
}

// buildAll is the no-criteria fast path: a plain scan of the object table.
func buildAll(obj schema.Object) queryir.Select {
	return queryir.Select{
		Columns: qualified("", obj.Columns),
		From:    queryir.TableRef{Name: obj.Table},
		OrderBy: queryir.Field{Column: obj.OrderBy},
	}
}

func qualified(alias string, columns []string) []queryir.Field {
	fields := make([]queryir.Field, len(columns))
	for i, c := range columns {
		fields[i] = queryir.Field{Alias: alias, Column: c}
	}
	return fields
}
