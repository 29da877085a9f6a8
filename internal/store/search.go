package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tagman/internal/querysql"
	"github.com/roach88/tagman/internal/tag"
)

// RowScanner is the row cursor handed to a Materializer. *sql.Row and
// *sql.Rows both satisfy it.
type RowScanner interface {
	Scan(dest ...any) error
}

// Materializer converts one result row into a T. The row carries the
// object columns in schema.Object.Columns order.
//
// A Materializer runs while the result rows are still open, and stores created
// by Open hold a single connection. It must not call back into the store;
// doing so blocks forever. Load related data after Search returns.
type Materializer[T any] func(RowScanner) (T, error)

// Search returns the objects carrying every included tag and none of the
// excluded ones, in OrderBy order. An empty search returns every object.
// Tags that do not exist simply match nothing.
func (s *Store[T]) Search(ctx context.Context, search *tag.Search) ([]T, error) {
	const op = "search"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	if search.IsEmpty() {
		rows, err := s.stmts[stmtAllObjects].QueryContext(ctx)
		return s.collect(op, rows, err)
	}

	query, params, err := s.SearchQuery(search)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("executing tag search",
		"included", len(search.IncludedIDs()),
		"excluded", len(search.ExcludedIDs()),
		"sql", query,
		"args", params,
	)

	rows, err := s.db.QueryContext(ctx, query, params...)
	return s.collect(op, rows, err)
}

// SearchQuery returns the SQL and parameters Search would execute, without
// running it.
func (s *Store[T]) SearchQuery(search *tag.Search) (string, []any, error) {
	query, params, err := s.compiler.Compile(querysql.BuildSearch(s.obj, search))
	if err != nil {
		return "", nil, newError(CodeExecution, "search", fmt.Errorf("compile search: %w", err))
	}
	return query, params, nil
}

// Untagged returns the objects with no assignment rows, in OrderBy order.
func (s *Store[T]) Untagged(ctx context.Context) ([]T, error) {
	const op = "untagged"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.stmts[stmtUntagged].QueryContext(ctx)
	return s.collect(op, rows, err)
}

// collect materializes every row in result order. A materializer failure
// aborts the whole query.
func (s *Store[T]) collect(op string, rows *sql.Rows, err error) ([]T, error) {
	if err != nil {
		return nil, newError(CodeExecution, op, err)
	}
	defer rows.Close()

	objects := []T{}
	for rows.Next() {
		obj, err := s.materialize(rows)
		if err != nil {
			return nil, newError(CodeRowConversion, op, fmt.Errorf("row %d: %w", len(objects), err))
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(CodeExecution, op, fmt.Errorf("iterate rows: %w", err))
	}
	return objects, nil
}
