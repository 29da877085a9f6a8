package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errConnClose = errors.New("conn close failed")
	errStmtClose = errors.New("stmt close failed")
)

// failingCloseConnector wraps the sqlite3 driver so that every Close on a
// connection or statement releases the resource and then reports an error.
type failingCloseConnector struct {
	base       driver.Driver
	dsn        string
	connCloses atomic.Int32
	stmtCloses atomic.Int32
}

func (c *failingCloseConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.base.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &failingCloseConn{Conn: conn, owner: c}, nil
}

func (c *failingCloseConnector) Driver() driver.Driver { return c.base }

type failingCloseConn struct {
	driver.Conn
	owner *failingCloseConnector
}

func (c *failingCloseConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.Conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &failingCloseStmt{Stmt: stmt, owner: c.owner}, nil
}

// ExecContext keeps multi-statement schema scripts on the driver's own path.
func (c *failingCloseConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.Conn.(driver.ExecerContext).ExecContext(ctx, query, args)
}

func (c *failingCloseConn) Close() error {
	_ = c.Conn.Close()
	c.owner.connCloses.Add(1)
	return errConnClose
}

type failingCloseStmt struct {
	driver.Stmt
	owner *failingCloseConnector
}

func (s *failingCloseStmt) Close() error {
	_ = s.Stmt.Close()
	s.owner.stmtCloses.Add(1)
	return errStmtClose
}

func TestClose_ReleasesEverythingAndReportsFailures(t *testing.T) {
	ctx := context.Background()
	path := createBooksDB(t, DriverMattn, "alpha")

	probe, err := sql.Open(DriverMattn, path)
	require.NoError(t, err)
	connector := &failingCloseConnector{base: probe.Driver(), dsn: path}
	require.NoError(t, probe.Close())

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)

	s, err := OpenDB[book](ctx, db, Options{Logger: discardLogger()}, booksSchema(), scanBook)
	require.NoError(t, err)
	prepared := len(s.stmts)
	require.Equal(t, len(fixedStatements)+2, prepared)

	// Close the handle as Open-created stores do.
	s.ownsDB = true

	err = s.Close()
	require.Error(t, err)
	assert.True(t, IsExecutionError(err))
	assert.ErrorIs(t, err, errConnClose)
	assert.Contains(t, err.Error(), "close database")

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "close", se.Op)
	joined, ok := se.Err.(interface{ Unwrap() []error })
	require.True(t, ok, "want joined error, got %T", se.Err)
	assert.NotEmpty(t, joined.Unwrap())

	// Statement failures do not stop the rest of the release.
	assert.Equal(t, int32(prepared), connector.stmtCloses.Load())
	assert.Equal(t, int32(1), connector.connCloses.Load())
	assert.Error(t, db.PingContext(ctx))
	assert.Nil(t, s.stmts)

	assert.Same(t, err, s.Close())
}
