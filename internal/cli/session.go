package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tagman/internal/config"
	"github.com/roach88/tagman/internal/store"
	"github.com/roach88/tagman/internal/tag"
	"github.com/roach88/tagman/internal/tagexpr"
)

// session is the per-invocation state shared by store-backed commands.
type session struct {
	out   *OutputFormatter
	cfg   *config.Config
	store *store.Store[store.Record]
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads config and opens the store. The caller must Close it.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := newFormatter(cmd, opts)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, out.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = logger

	out.VerboseLog("Opening %s (%s), object table %s", cfg.Database.Path, cfg.Database.Driver, cfg.Object.Table)

	st, err := store.Open(cmd.Context(), storeOpts, cfg.Object, store.RecordMaterializer(cfg.Object.Columns))
	if err != nil {
		return nil, out.Fail(storeErrorCode(err), ExitCommandError, "failed to open database", err)
	}
	return &session{out: out, cfg: cfg, store: st}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// fail maps err to an error code and exit status and reports it.
func (s *session) fail(message string, err error) error {
	var synErr *tagexpr.SyntaxError
	var unknown *tagexpr.UnknownTagError
	switch {
	case errors.As(err, &synErr):
		return s.out.Fail(ErrCodeSyntax, ExitCommandError, message, err)
	case errors.As(err, &unknown):
		return s.out.Fail(ErrCodeUnknownTag, ExitFailure, message, err)
	}
	return s.out.Fail(storeErrorCode(err), ExitFailure, message, err)
}

func storeErrorCode(err error) string {
	switch {
	case store.IsConnectionError(err):
		return ErrCodeOpen
	case store.IsSchemaError(err), store.IsStatementError(err):
		return ErrCodeSchema
	case errors.As(err, new(*store.Error)):
		return ErrCodeStore
	}
	return ErrCodeGeneric
}

// resolveTag finds the tag named ref, or with id N when ref is "#N".
func (s *session) resolveTag(cmd *cobra.Command, ref string) (tag.Tag, error) {
	ctx := cmd.Context()

	var (
		t   tag.Tag
		ok  bool
		err error
	)
	if idText, isID := strings.CutPrefix(ref, "#"); isID {
		id, perr := strconv.ParseInt(idText, 10, 64)
		if perr != nil {
			return tag.Tag{}, s.out.Fail(ErrCodeInvalidArgs, ExitCommandError, "invalid tag reference",
				fmt.Errorf("%q: %w", ref, perr))
		}
		t, ok, err = s.store.TagByID(ctx, id)
	} else {
		t, ok, err = s.store.TagByName(ctx, ref)
	}
	if err != nil {
		return tag.Tag{}, s.fail("failed to look up tag", err)
	}
	if !ok {
		return tag.Tag{}, s.out.Fail(ErrCodeNotFound, ExitFailure, fmt.Sprintf("tag %q not found", ref), nil)
	}
	return t, nil
}

// parseObjectIDs converts command arguments to object ids.
func (s *session) parseObjectIDs(args []string) ([]tag.ObjectID, error) {
	ids := make([]tag.ObjectID, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, s.out.Fail(ErrCodeInvalidArgs, ExitCommandError, "invalid object id",
				fmt.Errorf("%q: %w", arg, err))
		}
		ids = append(ids, tag.ObjectID(id))
	}
	return ids, nil
}
