package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tagman/internal/tag"
)

// NewTagCommand creates the tag command group.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Create, rename, delete and list tags",
		Long: `Manage tags.

A tag argument is a tag name, or "#<id>" to pick one tag when several share
a name.`,
	}

	cmd.AddCommand(newTagCreateCommand(rootOpts))
	cmd.AddCommand(newTagRenameCommand(rootOpts))
	cmd.AddCommand(newTagDeleteCommand(rootOpts))
	cmd.AddCommand(newTagListCommand(rootOpts))
	cmd.AddCommand(newTagShowCommand(rootOpts))
	cmd.AddCommand(newTagExistsCommand(rootOpts))

	return cmd
}

func newTagCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var allowDuplicate bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Long: `Create a tag.

Creating a name that is already taken fails unless --allow-duplicate is given.

Examples:
  tagman tag create rock
  tagman tag create rock --allow-duplicate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			name := args[0]
			if !allowDuplicate {
				exists, err := s.store.TagExists(ctx, name)
				if err != nil {
					return s.fail("failed to check tag", err)
				}
				if exists {
					return s.out.Fail(ErrCodeExists, ExitFailure, fmt.Sprintf("tag %q already exists", name), nil)
				}
			}

			t, err := s.store.CreateTag(ctx, name)
			if err != nil {
				return s.fail("failed to create tag", err)
			}
			return s.out.Success(TagResult{Action: "created", Tag: t})
		},
	}

	cmd.Flags().BoolVar(&allowDuplicate, "allow-duplicate", false, "create even if a tag with this name exists")

	return cmd
}

func newTagRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tag> <new-name>",
		Short: "Rename a tag, keeping its id and assignments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.resolveTag(cmd, args[0])
			if err != nil {
				return err
			}
			renamed, err := s.store.RenameTag(cmd.Context(), t, args[1])
			if err != nil {
				return s.fail("failed to rename tag", err)
			}
			return s.out.Success(TagResult{Action: "renamed", Tag: renamed, From: t.Name})
		},
	}
}

func newTagDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a tag",
		Long: `Delete a tag.

Without --cascade the tag's assignment rows are kept; they no longer match any
search but still keep their objects out of "tagman untagged".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.resolveTag(cmd, args[0])
			if err != nil {
				return err
			}
			if cascade {
				err = s.store.DeleteTagCascade(cmd.Context(), t)
			} else {
				err = s.store.DeleteTag(cmd.Context(), t)
			}
			if err != nil {
				return s.fail("failed to delete tag", err)
			}
			return s.out.Success(TagResult{Action: "deleted", Tag: t})
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete the tag's assignments")

	return cmd
}

func newTagListCommand(rootOpts *RootOptions) *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if counts {
				tags, err := s.store.AllTagsWithCounts(cmd.Context())
				if err != nil {
					return s.fail("failed to list tags", err)
				}
				return s.out.Success(TagCountList{Tags: tags})
			}

			tags, err := s.store.AllTags(cmd.Context())
			if err != nil {
				return s.fail("failed to list tags", err)
			}
			return s.out.Success(TagList{Tags: tags})
		},
	}

	cmd.Flags().BoolVar(&counts, "counts", false, "include usage counts, most used first")

	return cmd
}

func newTagShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tag>",
		Short: "Show a tag and the objects carrying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.resolveTag(cmd, args[0])
			if err != nil {
				return err
			}
			rows, err := s.store.Search(cmd.Context(), tag.NewSearch().Include(t))
			if err != nil {
				return s.fail("failed to search", err)
			}

			list := newObjectList(s.store.Schema().Columns, rows)
			list.Tag = &t
			return s.out.Success(list)
		},
	}
}

func newTagExistsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Report whether a tag with this name exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			exists, err := s.store.TagExists(cmd.Context(), args[0])
			if err != nil {
				return s.fail("failed to check tag", err)
			}
			return s.out.Success(ExistsResult{Name: args[0], Exists: exists})
		},
	}
}
