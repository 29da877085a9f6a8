package store

import (
	"context"
	"fmt"

	"github.com/roach88/tagman/internal/queryir"
	"github.com/roach88/tagman/internal/querysql"
	"github.com/roach88/tagman/internal/tag"
)

// stmtKey names a prepared statement.
type stmtKey string

const (
	stmtCreateTag                 stmtKey = "createTag"
	stmtRenameTag                 stmtKey = "renameTag"
	stmtDeleteTag                 stmtKey = "deleteTag"
	stmtCreateAssignment          stmtKey = "createAssignment"
	stmtDeleteAssignment          stmtKey = "deleteAssignment"
	stmtDeleteAssignmentsByTag    stmtKey = "deleteAssignmentsByTag"
	stmtDeleteAssignmentsByObject stmtKey = "deleteAssignmentsByObject"
	stmtTagsForObject             stmtKey = "tagsForObject"
	stmtTagExists                 stmtKey = "tagExists"
	stmtAssignmentExists          stmtKey = "assignmentExists"
	stmtTagByID                   stmtKey = "tagByID"
	stmtTagByName                 stmtKey = "tagByName"
	stmtAllTags                   stmtKey = "allTags"
	stmtAllTagsWithCounts         stmtKey = "allTagsWithCounts"

	// Compiled from the object descriptor at Open.
	stmtAllObjects stmtKey = "allObjects"
	stmtUntagged   stmtKey = "untagged"
)

// fixedStatements are independent of the object table.
// Tag lists order by name with id as a deterministic tiebreaker.
var fixedStatements = map[stmtKey]string{
	stmtCreateTag:                 `INSERT INTO tags (name) VALUES (?)`,
	stmtRenameTag:                 `UPDATE tags SET name = ? WHERE id = ?`,
	stmtDeleteTag:                 `DELETE FROM tags WHERE id = ?`,
	stmtCreateAssignment:          `INSERT INTO tag_assignments (tag_id, object_id) VALUES (?, ?)`,
	stmtDeleteAssignment:          `DELETE FROM tag_assignments WHERE tag_id = ? AND object_id = ?`,
	stmtDeleteAssignmentsByTag:    `DELETE FROM tag_assignments WHERE tag_id = ?`,
	stmtDeleteAssignmentsByObject: `DELETE FROM tag_assignments WHERE object_id = ?`,
	stmtTagsForObject: `
		SELECT DISTINCT t.id, t.name
		FROM tags AS t
		INNER JOIN tag_assignments AS ta ON ta.tag_id = t.id
		WHERE ta.object_id = ?
		ORDER BY t.name, t.id`,
	stmtTagExists:        `SELECT EXISTS(SELECT 1 FROM tags WHERE name = ?)`,
	stmtAssignmentExists: `SELECT EXISTS(SELECT 1 FROM tag_assignments WHERE tag_id = ? AND object_id = ?)`,
	stmtTagByID:          `SELECT id, name FROM tags WHERE id = ?`,
	stmtTagByName:        `SELECT id, name FROM tags WHERE name = ? ORDER BY id LIMIT 1`,
	stmtAllTags:          `SELECT id, name FROM tags ORDER BY name, id`,
	stmtAllTagsWithCounts: `
		SELECT t.id, t.name, COUNT(ta.tag_id) AS uses
		FROM tags AS t
		LEFT JOIN tag_assignments AS ta ON ta.tag_id = t.id
		GROUP BY t.id, t.name
		ORDER BY uses DESC, t.name, t.id`,
}

// prepare compiles every fixed statement plus the two object-table queries
// that do not depend on search criteria. A missing object table or column
// surfaces here.
func (s *Store[T]) prepare(ctx context.Context) error {
	for key, query := range fixedStatements {
		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return newError(CodeStatement, "open", fmt.Errorf("prepare %s: %w", key, err))
		}
		s.stmts[key] = stmt
	}

	objectQueries := map[stmtKey]queryir.Select{
		stmtAllObjects: querysql.BuildSearch(s.obj, tag.NewSearch()),
		stmtUntagged:   querysql.BuildUntagged(s.obj),
	}
	for key, q := range objectQueries {
		query, _, err := s.compiler.Compile(q)
		if err != nil {
			return newError(CodeStatement, "open", fmt.Errorf("compile %s: %w", key, err))
		}
		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return newError(CodeStatement, "open", fmt.Errorf("prepare %s: %w", key, err))
		}
		s.stmts[key] = stmt
	}
	return nil
}
