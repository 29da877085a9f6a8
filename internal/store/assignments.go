package store

import (
	"context"

	"github.com/roach88/tagman/internal/tag"
)

// CreateAssignment attaches t to obj. No existence check is made; calling it
// twice stores two identical edges.
func (s *Store[T]) CreateAssignment(ctx context.Context, t tag.Tag, obj tag.Taggable) error {
	return s.execAssignment(ctx, "create assignment", stmtCreateAssignment, t.ID, obj.TaggableID())
}

// DeleteAssignment removes every edge between t and obj.
func (s *Store[T]) DeleteAssignment(ctx context.Context, t tag.Tag, obj tag.Taggable) error {
	return s.execAssignment(ctx, "delete assignment", stmtDeleteAssignment, t.ID, obj.TaggableID())
}

// DeleteAssignmentsByTag removes every edge referencing t.
// Call it alongside DeleteTag.
func (s *Store[T]) DeleteAssignmentsByTag(ctx context.Context, t tag.Tag) error {
	return s.execAssignment(ctx, "delete assignments by tag", stmtDeleteAssignmentsByTag, t.ID)
}

// DeleteAssignmentsByObject removes every edge referencing obj.
// Call it when the caller deletes the object itself.
func (s *Store[T]) DeleteAssignmentsByObject(ctx context.Context, obj tag.Taggable) error {
	return s.execAssignment(ctx, "delete assignments by object", stmtDeleteAssignmentsByObject, obj.TaggableID())
}

// AssignmentExists reports whether at least one edge links t and obj.
func (s *Store[T]) AssignmentExists(ctx context.Context, t tag.Tag, obj tag.Taggable) (bool, error) {
	const op = "assignment exists"
	if err := s.checkOpen(op); err != nil {
		return false, err
	}

	var exists bool
	err := s.stmts[stmtAssignmentExists].QueryRowContext(ctx, t.ID, obj.TaggableID()).Scan(&exists)
	if err != nil {
		return false, newError(CodeExecution, op, err)
	}
	return exists, nil
}

func (s *Store[T]) execAssignment(ctx context.Context, op string, key stmtKey, args ...any) error {
	if err := s.checkOpen(op); err != nil {
		return err
	}

	result, err := s.stmts[key].ExecContext(ctx, args...)
	if err != nil {
		return newError(CodeExecution, op, err)
	}

	n, _ := result.RowsAffected()
	s.logger.Debug("assignments changed", "op", op, "args", args, "rows", n)
	return nil
}
