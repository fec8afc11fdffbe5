// Package session abstracts over *sql.DB and *sql.Tx behind a common
// interface, and carries the active one through a context so a single
// statement-execution path works identically whether or not it is
// running inside a transaction.
package session

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoSession is returned by FromContext when ctx carries no Session.
var ErrNoSession = errors.New("session: no session in context")

// Session is satisfied by both *sql.DB and *sql.Tx.
type Session interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type sessionKey struct{}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the Session carried by ctx, or ErrNoSession if
// none was attached (or a nil Session was attached).
func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
