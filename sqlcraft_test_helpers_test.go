package sqlcraft

import (
	"context"
	stddriver "database/sql/driver"
	"fmt"
	"io"
	"sync/atomic"

	"database/sql"
	"testing"

	"github.com/sqlcraft/sqlcraft/driver"
	"github.com/sqlcraft/sqlcraft/value"
)

// fakeDBState controls the behavior of the fake database/sql driver
// used to exercise Engine/Manager/Runner/scope without a real database.
type fakeDBState struct {
	columns  []string
	rows     [][]stddriver.Value
	queryErr error

	rowsAffected int64
	lastInsertID int64
	execErr      error

	beginErr    error
	commitErr   error
	rollbackErr error
}

type fakeSQLDriver struct{ state *fakeDBState }

func (d *fakeSQLDriver) Open(string) (stddriver.Conn, error) {
	return &fakeConn{state: d.state}, nil
}

type fakeConn struct{ state *fakeDBState }

func (c *fakeConn) Prepare(query string) (stddriver.Stmt, error) {
	return &fakeStmt{state: c.state}, nil
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (stddriver.Tx, error) {
	return c.BeginTx(context.Background(), stddriver.TxOptions{})
}
func (c *fakeConn) BeginTx(_ context.Context, _ stddriver.TxOptions) (stddriver.Tx, error) {
	if c.state.beginErr != nil {
		return nil, c.state.beginErr
	}
	return &fakeTx{state: c.state}, nil
}

var _ stddriver.ConnBeginTx = (*fakeConn)(nil)

type fakeTx struct{ state *fakeDBState }

func (t *fakeTx) Commit() error   { return t.state.commitErr }
func (t *fakeTx) Rollback() error { return t.state.rollbackErr }

type fakeStmt struct{ state *fakeDBState }

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(_ []stddriver.Value) (stddriver.Result, error) {
	if s.state.execErr != nil {
		return nil, s.state.execErr
	}
	return stddriver.RowsAffected(s.state.rowsAffected), nil
}

func (s *fakeStmt) Query(_ []stddriver.Value) (stddriver.Rows, error) {
	if s.state.queryErr != nil {
		return nil, s.state.queryErr
	}
	return &fakeRows{state: s.state}, nil
}

type fakeRows struct {
	state *fakeDBState
	idx   int
}

func (r *fakeRows) Columns() []string { return r.state.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []stddriver.Value) error {
	if r.idx >= len(r.state.rows) {
		return io.EOF
	}
	copy(dest, r.state.rows[r.idx])
	r.idx++
	return nil
}

var fakeDriverSeq uint64

// openFakeDB registers a fresh fake driver instance and opens a *sql.DB
// against it.
func openFakeDB(t *testing.T, state *fakeDBState) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("sqlcraft_fake_%d", atomic.AddUint64(&fakeDriverSeq, 1))
	sql.Register(name, &fakeSQLDriver{state: state})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open fake db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testTranslator is a minimal driver.Translator good enough to build
// simple statements with no bound parameters.
type testTranslator struct{}

func (testTranslator) Placeholder(int) string                { return "?" }
func (testTranslator) QuoteIdentifier(name string) string     { return name }
func (testTranslator) PaginationClause(_, _ uint64) string    { return "" }
func (testTranslator) RequiresOrderBy() bool                  { return false }
func (testTranslator) DefaultOrderBy() string                 { return "" }
func (testTranslator) ProjectParam(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindInt64:
		return v.AsInt64(), nil
	case value.KindString:
		return v.AsString(), nil
	default:
		return v.String(), nil
	}
}

type testDriver struct{ name string }

func (d testDriver) Tag() driver.Tag          { return driver.Tag(d.name) }
func (d testDriver) SQLDriverName() string    { return d.name }
func (d testDriver) Translator() driver.Translator { return testTranslator{} }

var _ driver.Driver = testDriver{}
