package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tagman/internal/tagexpr"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Include []string
	Exclude []string
	Explain bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [expression]",
		Short: "Find objects by tag combination",
		Long: `Find the objects that carry every included tag and none of the excluded ones.

The expression joins tag names with && and negates them with !. Quote names
that contain spaces or operators. --include and --exclude add further names.
With no criteria every object is listed.

Examples:
  tagman search 'rock && live && !bootleg'
  tagman search --include rock --exclude bootleg
  tagman search '"hard rock"' --explain`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Include, "include", "i", nil, "tag that must be present (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Exclude, "exclude", "x", nil, "tag that must be absent (repeatable)")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the SQL instead of running it")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *SearchOptions, input string) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	expr, err := tagexpr.Parse(input)
	if err != nil {
		return s.fail("invalid search expression", err)
	}
	expr.Include = append(expr.Include, opts.Include...)
	expr.Exclude = append(expr.Exclude, opts.Exclude...)

	search, err := expr.Resolve(cmd.Context(), s.store)
	if err != nil {
		return s.fail("failed to resolve search", err)
	}
	s.out.VerboseLog("Search: %s", expr)

	if opts.Explain {
		query, params, err := s.store.SearchQuery(search)
		if err != nil {
			return s.fail("failed to compile search", err)
		}
		if params == nil {
			params = []any{}
		}
		return s.out.Success(ExplainResult{Expression: expr.String(), SQL: query, Params: params})
	}

	rows, err := s.store.Search(cmd.Context(), search)
	if err != nil {
		return s.fail("failed to search", err)
	}
	return s.out.Success(newObjectList(s.store.Schema().Columns, rows))
}

// NewUntaggedCommand creates the untagged command.
func NewUntaggedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "untagged",
		Short: "List objects with no assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := s.store.Untagged(cmd.Context())
			if err != nil {
				return s.fail("failed to list untagged objects", err)
			}
			return s.out.Success(newObjectList(s.store.Schema().Columns, rows))
		},
	}
}
