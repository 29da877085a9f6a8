package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tagman/internal/tag"
)

func TestAssignmentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "alpha")
	tg := mustTag(t, s, "t")
	obj := tag.ObjectID(1)

	exists, err := s.AssignmentExists(ctx, tg, obj)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateAssignment(ctx, tg, obj))
	exists, err = s.AssignmentExists(ctx, tg, obj)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteAssignment(ctx, tg, obj))
	exists, err = s.AssignmentExists(ctx, tg, obj)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateAssignment_DuplicatesAllowed(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "alpha")
	tg := mustTag(t, s, "t")

	mustAssign(t, s, tg, 1, 1)

	var n int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM tag_assignments WHERE tag_id = ? AND object_id = 1", tg.ID,
	).Scan(&n))
	assert.Equal(t, 2, n)

	// DeleteAssignment removes both copies.
	require.NoError(t, s.DeleteAssignment(ctx, tg, tag.ObjectID(1)))
	exists, err := s.AssignmentExists(ctx, tg, tag.ObjectID(1))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteAssignmentsByTag(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "alpha", "bravo")
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	mustAssign(t, s, a, 1, 2)
	mustAssign(t, s, b, 1)

	require.NoError(t, s.DeleteAssignmentsByTag(ctx, a))

	counts, err := s.AllTagsWithCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tag.Count{{Tag: b, Uses: 1}, {Tag: a, Uses: 0}}, counts)
}

func TestDeleteAssignmentsByObject(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "alpha", "bravo")
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	mustAssign(t, s, a, 1, 2)
	mustAssign(t, s, b, 1)

	require.NoError(t, s.DeleteAssignmentsByObject(ctx, tag.ObjectID(1)))

	tags, err := s.TagsForObject(ctx, tag.ObjectID(1))
	require.NoError(t, err)
	assert.Empty(t, tags)

	tags, err = s.TagsForObject(ctx, tag.ObjectID(2))
	require.NoError(t, err)
	assert.Equal(t, []tag.Tag{a}, tags)
}
