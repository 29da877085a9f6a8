package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/tagman/internal/querysql"
	"github.com/roach88/tagman/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Driver names accepted in Options.Driver.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverModernc = "sqlite"  // modernc.org/sqlite (pure Go)
)

// DefaultPragmas are applied by Open when Options.Pragmas is nil.
var DefaultPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Options configures Open.
type Options struct {
	// Driver is DriverMattn (default) or DriverModernc.
	Driver string

	// Path is the database file, or ":memory:".
	Path string

	// Pragmas replaces DefaultPragmas when non-nil. An empty, non-nil slice
	// applies none.
	Pragmas []string

	// NormalizeNames NFC-normalizes tag names on every write and lookup.
	NormalizeNames bool

	// Logger receives debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a tag store over objects of type T.
//
// All fixed statements are prepared once at Open and held until Close.
type Store[T any] struct {
	db     *sql.DB
	ownsDB bool

	obj         schema.Object
	materialize Materializer[T]
	compiler    *querysql.Compiler
	stmts       map[stmtKey]*sql.Stmt

	logger    *slog.Logger
	normalize bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open creates or opens a SQLite database, creates the tag tables, and
// prepares every fixed statement. obj describes the caller's object table,
// which must already exist.
//
// Open either returns a fully usable store or an error; anything acquired
// before the failure is released.
func Open[T any](ctx context.Context, opts Options, obj schema.Object, m Materializer[T]) (*Store[T], error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverMattn
	}
	if driver != DriverMattn && driver != DriverModernc {
		return nil, newError(CodeConnection, "open", fmt.Errorf("unsupported driver %q", driver))
	}
	if opts.Path == "" {
		return nil, newError(CodeConnection, "open", errors.New("database path is required"))
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open(driver, opts.Path)
	if err != nil {
		return nil, newError(CodeConnection, "open", fmt.Errorf("open database: %w", err))
	}

	// SQLite only supports one writer at a time. One connection also keeps
	// ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newError(CodeConnection, "open", fmt.Errorf("connect to database: %w", err))
	}

	pragmas := opts.Pragmas
	if pragmas == nil {
		pragmas = DefaultPragmas
	}
	if err := applyPragmas(ctx, db, pragmas); err != nil {
		db.Close()
		return nil, newError(CodeConnection, "open", err)
	}

	s, err := attach(ctx, db, true, opts, obj, m)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDB attaches a store to a database handle owned by the caller. No
// pragmas are applied and Close leaves db open.
func OpenDB[T any](ctx context.Context, db *sql.DB, opts Options, obj schema.Object, m Materializer[T]) (*Store[T], error) {
	if db == nil {
		return nil, newError(CodeConnection, "open", errors.New("nil database handle"))
	}
	return attach(ctx, db, false, opts, obj, m)
}

// attach validates the descriptor, applies the schema and prepares
// statements. On failure every prepared statement is closed again; the
// database handle is left to the caller.
func attach[T any](ctx context.Context, db *sql.DB, owns bool, opts Options, obj schema.Object, m Materializer[T]) (*Store[T], error) {
	if m == nil {
		return nil, newError(CodeStatement, "open", errors.New("materializer is required"))
	}

	obj = obj.WithDefaults()
	if err := obj.Validate(); err != nil {
		return nil, newError(CodeStatement, "open", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, newError(CodeSchema, "open", fmt.Errorf("execute schema: %w", err))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store[T]{
		db:          db,
		ownsDB:      owns,
		obj:         obj,
		materialize: m,
		compiler:    querysql.NewCompiler(),
		stmts:       make(map[stmtKey]*sql.Stmt, len(fixedStatements)),
		logger:      logger,
		normalize:   opts.NormalizeNames,
	}

	if err := s.prepare(ctx); err != nil {
		s.closeStatements()
		return nil, err
	}

	s.logger.Debug("tag store opened",
		"table", obj.Table,
		"columns", obj.Columns,
		"owns_db", owns,
	)
	return s, nil
}

// Close releases every prepared statement and, for stores created by Open,
// the database connection. All resources are released even if some fail;
// the failures are joined into the returned error. Safe to call repeatedly;
// later calls return the first result.
func (s *Store[T]) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		errs := s.closeStatements()
		if s.ownsDB {
			if err := s.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
		if len(errs) > 0 {
			s.closeErr = newError(CodeExecution, "close", errors.Join(errs...))
		}
		s.logger.Debug("tag store closed", "errors", len(errs))
	})
	return s.closeErr
}

// Schema returns the object descriptor the store was opened with, with
// defaults applied.
func (s *Store[T]) Schema() schema.Object {
	out := s.obj
	out.Columns = append([]string(nil), s.obj.Columns...)
	return out
}

func (s *Store[T]) closeStatements() []error {
	var errs []error
	for key, stmt := range s.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close statement %s: %w", key, err))
		}
	}
	s.stmts = nil
	return errs
}

// checkOpen returns a CodeClosed error once Close has been called.
func (s *Store[T]) checkOpen(op string) error {
	if s.closed.Load() {
		return newError(CodeClosed, op, ErrClosed)
	}
	return nil
}

// applyPragmas sets SQLite configuration on the owned connection.
func applyPragmas(ctx context.Context, db *sql.DB, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
