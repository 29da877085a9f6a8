package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tagman/internal/tag"
)

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a tag.Tag.
func scanTag(scanner RowScanner) (tag.Tag, error) {
	var t tag.Tag
	if err := scanner.Scan(&t.ID, &t.Name); err != nil {
		return tag.Tag{}, err
	}
	return t, nil
}

// tagName applies name normalization when enabled.
func (s *Store[T]) tagName(name string) string {
	if s.normalize {
		return norm.NFC.String(name)
	}
	return name
}

// CreateTag inserts a new tag and returns it with its assigned id.
// Duplicate names are allowed.
func (s *Store[T]) CreateTag(ctx context.Context, name string) (tag.Tag, error) {
	const op = "create tag"
	if err := s.checkOpen(op); err != nil {
		return tag.Tag{}, err
	}

	name = s.tagName(name)
	result, err := s.stmts[stmtCreateTag].ExecContext(ctx, name)
	if err != nil {
		return tag.Tag{}, newError(CodeExecution, op, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return tag.Tag{}, newError(CodeExecution, op, fmt.Errorf("last insert id: %w", err))
	}

	t := tag.Tag{ID: id, Name: name}
	s.logger.Debug("tag created", "op", op, "tag_id", t.ID, "name", t.Name)
	return t, nil
}

// RenameTag updates the name of the tag with t.ID and returns the new value.
// Renaming an id that does not exist succeeds without effect.
func (s *Store[T]) RenameTag(ctx context.Context, t tag.Tag, newName string) (tag.Tag, error) {
	const op = "rename tag"
	if err := s.checkOpen(op); err != nil {
		return tag.Tag{}, err
	}

	newName = s.tagName(newName)
	if _, err := s.stmts[stmtRenameTag].ExecContext(ctx, newName, t.ID); err != nil {
		return tag.Tag{}, newError(CodeExecution, op, err)
	}

	s.logger.Debug("tag renamed", "op", op, "tag_id", t.ID, "from", t.Name, "to", newName)
	return t.Rename(newName), nil
}

// DeleteTag removes the tag row. Its assignments are left in place.
func (s *Store[T]) DeleteTag(ctx context.Context, t tag.Tag) error {
	const op = "delete tag"
	if err := s.checkOpen(op); err != nil {
		return err
	}

	if _, err := s.stmts[stmtDeleteTag].ExecContext(ctx, t.ID); err != nil {
		return newError(CodeExecution, op, err)
	}

	s.logger.Debug("tag deleted", "op", op, "tag_id", t.ID)
	return nil
}

// DeleteTagCascade removes the tag and every assignment referencing it in a
// single transaction.
func (s *Store[T]) DeleteTagCascade(ctx context.Context, t tag.Tag) error {
	const op = "delete tag cascade"
	if err := s.checkOpen(op); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(CodeExecution, op, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	removed, err := tx.StmtContext(ctx, s.stmts[stmtDeleteAssignmentsByTag]).ExecContext(ctx, t.ID)
	if err != nil {
		return newError(CodeExecution, op, fmt.Errorf("delete assignments: %w", err))
	}
	if _, err := tx.StmtContext(ctx, s.stmts[stmtDeleteTag]).ExecContext(ctx, t.ID); err != nil {
		return newError(CodeExecution, op, fmt.Errorf("delete tag: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return newError(CodeExecution, op, fmt.Errorf("commit: %w", err))
	}

	n, _ := removed.RowsAffected()
	s.logger.Debug("tag deleted", "op", op, "tag_id", t.ID, "assignments", n)
	return nil
}

// EnsureTag returns the first tag named name, creating it if none exists.
// created reports whether a new tag was made.
func (s *Store[T]) EnsureTag(ctx context.Context, name string) (t tag.Tag, created bool, err error) {
	existing, ok, err := s.TagByName(ctx, name)
	if err != nil {
		return tag.Tag{}, false, err
	}
	if ok {
		return existing, false, nil
	}

	t, err = s.CreateTag(ctx, name)
	if err != nil {
		return tag.Tag{}, false, err
	}
	return t, true, nil
}

// TagExists reports whether at least one tag is named name.
func (s *Store[T]) TagExists(ctx context.Context, name string) (bool, error) {
	const op = "tag exists"
	if err := s.checkOpen(op); err != nil {
		return false, err
	}

	var exists bool
	if err := s.stmts[stmtTagExists].QueryRowContext(ctx, s.tagName(name)).Scan(&exists); err != nil {
		return false, newError(CodeExecution, op, err)
	}
	return exists, nil
}

// TagByID looks up a tag by id. ok is false when no such tag exists.
func (s *Store[T]) TagByID(ctx context.Context, id int64) (t tag.Tag, ok bool, err error) {
	return s.lookupTag(ctx, "tag by id", stmtTagByID, id)
}

// TagByName looks up a tag by name, returning the lowest id when several
// tags share the name. ok is false when no such tag exists.
func (s *Store[T]) TagByName(ctx context.Context, name string) (t tag.Tag, ok bool, err error) {
	return s.lookupTag(ctx, "tag by name", stmtTagByName, s.tagName(name))
}

func (s *Store[T]) lookupTag(ctx context.Context, op string, key stmtKey, arg any) (tag.Tag, bool, error) {
	if err := s.checkOpen(op); err != nil {
		return tag.Tag{}, false, err
	}

	t, err := scanTag(s.stmts[key].QueryRowContext(ctx, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return tag.Tag{}, false, nil
	}
	if err != nil {
		return tag.Tag{}, false, newError(CodeExecution, op, err)
	}
	return t, true, nil
}

// AllTags returns every tag ordered by name.
func (s *Store[T]) AllTags(ctx context.Context) ([]tag.Tag, error) {
	return s.queryTags(ctx, "all tags", stmtAllTags)
}

// TagsForObject returns the tags assigned to obj ordered by name. A tag
// assigned twice is listed once.
func (s *Store[T]) TagsForObject(ctx context.Context, obj tag.Taggable) ([]tag.Tag, error) {
	return s.queryTags(ctx, "tags for object", stmtTagsForObject, obj.TaggableID())
}

func (s *Store[T]) queryTags(ctx context.Context, op string, key stmtKey, args ...any) ([]tag.Tag, error) {
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.stmts[key].QueryContext(ctx, args...)
	if err != nil {
		return nil, newError(CodeExecution, op, err)
	}
	defer rows.Close()

	tags := []tag.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, newError(CodeExecution, op, fmt.Errorf("scan tag: %w", err))
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(CodeExecution, op, fmt.Errorf("iterate tags: %w", err))
	}
	return tags, nil
}

// AllTagsWithCounts returns every tag with its number of assignment rows,
// most used first and ties by name. Unused tags are included with zero.
func (s *Store[T]) AllTagsWithCounts(ctx context.Context) ([]tag.Count, error) {
	const op = "all tags with counts"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.stmts[stmtAllTagsWithCounts].QueryContext(ctx)
	if err != nil {
		return nil, newError(CodeExecution, op, err)
	}
	defer rows.Close()

	counts := []tag.Count{}
	for rows.Next() {
		var c tag.Count
		if err := rows.Scan(&c.Tag.ID, &c.Tag.Name, &c.Uses); err != nil {
			return nil, newError(CodeExecution, op, fmt.Errorf("scan tag count: %w", err))
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(CodeExecution, op, fmt.Errorf("iterate tag counts: %w", err))
	}
	return counts, nil
}
