package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tagman/internal/tag"
)

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <tag> <object-id>...",
		Short: "Tag objects",
		Long: `Assign a tag to one or more objects.

A tag name that does not exist yet is created. Objects that already carry the
tag are skipped.

Examples:
  tagman assign rock 1 2 3
  tagman assign '#4' 7`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runAssign(cmd, s, args[0], args[1:])
		},
	}
}

func runAssign(cmd *cobra.Command, s *session, ref string, idArgs []string) error {
	ctx := cmd.Context()

	ids, err := s.parseObjectIDs(idArgs)
	if err != nil {
		return err
	}

	result := AssignResult{Changed: []tag.ObjectID{}, verb: "assigned"}
	if strings.HasPrefix(ref, "#") {
		result.Tag, err = s.resolveTag(cmd, ref)
		if err != nil {
			return err
		}
	} else {
		result.Tag, result.TagCreated, err = s.store.EnsureTag(ctx, ref)
		if err != nil {
			return s.fail("failed to create tag", err)
		}
	}

	for _, id := range ids {
		exists, err := s.store.AssignmentExists(ctx, result.Tag, id)
		if err != nil {
			return s.fail("failed to check assignment", err)
		}
		if exists {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if err := s.store.CreateAssignment(ctx, result.Tag, id); err != nil {
			return s.fail(fmt.Sprintf("failed to assign object %d", id), err)
		}
		result.Changed = append(result.Changed, id)
	}

	return s.out.Success(result)
}

// NewUnassignCommand creates the unassign command.
func NewUnassignCommand(rootOpts *RootOptions) *cobra.Command {
	var allForObject string

	cmd := &cobra.Command{
		Use:   "unassign <tag> <object-id>...",
		Short: "Remove a tag from objects",
		Long: `Remove a tag from one or more objects, or every tag from one object.

Examples:
  tagman unassign rock 1 2
  tagman unassign --all-for-object 7`,
		Args: func(cmd *cobra.Command, args []string) error {
			if allForObject != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if allForObject != "" {
				return runUnassignObject(cmd, s, allForObject)
			}
			return runUnassign(cmd, s, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&allForObject, "all-for-object", "", "remove every tag from this object id")

	return cmd
}

func runUnassign(cmd *cobra.Command, s *session, ref string, idArgs []string) error {
	ids, err := s.parseObjectIDs(idArgs)
	if err != nil {
		return err
	}
	t, err := s.resolveTag(cmd, ref)
	if err != nil {
		return err
	}

	result := AssignResult{Tag: t, Changed: []tag.ObjectID{}, verb: "unassigned"}
	for _, id := range ids {
		if err := s.store.DeleteAssignment(cmd.Context(), t, id); err != nil {
			return s.fail(fmt.Sprintf("failed to unassign object %d", id), err)
		}
		result.Changed = append(result.Changed, id)
	}
	return s.out.Success(result)
}

// ObjectTagsResult is the result of tags-for and unassign --all-for-object.
type ObjectTagsResult struct {
	ObjectID tag.ObjectID `json:"object_id"`
	Tags     []tag.Tag    `json:"tags"`
	Removed  bool         `json:"removed,omitempty"`
}

func (r ObjectTagsResult) String() string {
	if r.Removed {
		return fmt.Sprintf("removed %d tag(s) from object %d", len(r.Tags), r.ObjectID)
	}
	if len(r.Tags) == 0 {
		return fmt.Sprintf("object %d has no tags", r.ObjectID)
	}
	names := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, "\n")
}

func runUnassignObject(cmd *cobra.Command, s *session, idArg string) error {
	ids, err := s.parseObjectIDs([]string{idArg})
	if err != nil {
		return err
	}
	id := ids[0]

	tags, err := s.store.TagsForObject(cmd.Context(), id)
	if err != nil {
		return s.fail("failed to list tags", err)
	}
	if err := s.store.DeleteAssignmentsByObject(cmd.Context(), id); err != nil {
		return s.fail("failed to unassign object", err)
	}
	return s.out.Success(ObjectTagsResult{ObjectID: id, Tags: tags, Removed: true})
}

// NewTagsForCommand creates the tags-for command.
func NewTagsForCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags-for <object-id>",
		Short: "List the tags assigned to an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := s.parseObjectIDs(args)
			if err != nil {
				return err
			}
			tags, err := s.store.TagsForObject(cmd.Context(), ids[0])
			if err != nil {
				return s.fail("failed to list tags", err)
			}
			return s.out.Success(ObjectTagsResult{ObjectID: ids[0], Tags: tags})
		},
	}
}
