/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sqlcraft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sqlcraft/sqlcraft/decode"
	"github.com/sqlcraft/sqlcraft/driver"
	"github.com/sqlcraft/sqlcraft/interceptor"
	"github.com/sqlcraft/sqlcraft/session"
	"github.com/sqlcraft/sqlcraft/template"
	"github.com/sqlcraft/sqlcraft/value"
)

// Executor runs one Statement repeatedly against different argument
// values, decoding each result set into T.
type Executor[T any] interface {
	// QueryContext builds, logs, executes, and decodes a read statement.
	QueryContext(ctx context.Context, args any) (T, error)

	// ExecContext builds, logs, and executes a write statement.
	ExecContext(ctx context.Context, args any) (sql.Result, error)

	// Statement returns the compiled Statement this Executor runs.
	Statement() template.Statement
}

// invalidExecutor wraps a lookup or compile failure so callers can
// still receive an Executor[T] value and fail on first use rather than
// at construction, matching the rest of this package's fail-lazy style.
type invalidExecutor[T any] struct{ err error }

func (e invalidExecutor[T]) QueryContext(context.Context, any) (result T, err error) {
	return result, e.err
}

func (e invalidExecutor[T]) ExecContext(context.Context, any) (sql.Result, error) {
	return nil, e.err
}

func (e invalidExecutor[T]) Statement() template.Statement { return nil }

// InvalidExecutor returns an Executor[T] that fails every call with err.
func InvalidExecutor[T any](err error) Executor[T] {
	return invalidExecutor[T]{err: err}
}

// SQLRowsExecutor is an Executor specialized to decode.Rows, the form
// GenericExecutor decodes from. Most calls carry a live *sql.Rows, but
// a Before handler that short-circuits the driver call (the empty-IN
// guard, for one) hands back a decode.Rows value of its own instead.
type SQLRowsExecutor = Executor[decode.Rows]

// rowsExecutor is the concrete Executor backing every statement run: it
// builds SQL text and arguments from the Statement and a driver
// dialect, runs the interceptor chain's Before/After hooks around the
// database/sql call, and classifies failures into this package's error
// classes.
type rowsExecutor struct {
	statement template.Statement
	sess      session.Session
	driver    driver.Driver
	chain     interceptor.Chain
}

// NewSQLRowsExecutor builds the base Executor every GenericExecutor
// wraps.
func NewSQLRowsExecutor(statement template.Statement, sess session.Session, drv driver.Driver, chain interceptor.Chain) SQLRowsExecutor {
	return &rowsExecutor{statement: statement, sess: sess, driver: drv, chain: chain}
}

func (e *rowsExecutor) Statement() template.Statement { return e.statement }

// build compiles the statement against args and projects the resulting
// Values into database/sql-accepted parameter values.
func (e *rowsExecutor) build(args any) (query string, params []any, err error) {
	v, err := value.FromGo(args)
	if err != nil {
		return "", nil, &ArgumentError{Err: err}
	}
	query, argv, err := e.statement.Build(e.driver.Translator(), v)
	if err != nil {
		return "", nil, &CompileError{Err: err}
	}
	params = make([]any, len(argv))
	for i, a := range argv {
		p, err := e.driver.Translator().ProjectParam(a)
		if err != nil {
			return "", nil, &ArgumentError{Err: fmt.Errorf("argument %d: %w", i, err)}
		}
		params[i] = p
	}
	return query, params, nil
}

func classifyRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return &CancelledError{Err: err}
	}
	return &DriverError{Err: err}
}

// QueryContext implements Executor.
func (e *rowsExecutor) QueryContext(ctx context.Context, args any) (decode.Rows, error) {
	query, params, err := e.build(args)
	if err != nil {
		return nil, err
	}
	name := e.statement.Name()
	action, query, anyArgs, result, err := e.chain.Before(ctx, name, query, params)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	if action == interceptor.Return {
		e.chain.After(ctx, name, query, anyArgs, &result, 0, nil)
		return result.Rows, nil
	}
	start := time.Now()
	rows, runErr := e.sess.QueryContext(ctx, query, anyArgs...)
	e.chain.After(ctx, name, query, anyArgs, &result, time.Since(start), runErr)
	if runErr != nil {
		return nil, classifyRunError(ctx, runErr)
	}
	return rows, nil
}

// ExecContext implements Executor.
func (e *rowsExecutor) ExecContext(ctx context.Context, args any) (sql.Result, error) {
	query, params, err := e.build(args)
	if err != nil {
		return nil, err
	}
	name := e.statement.Name()
	action, query, anyArgs, result, err := e.chain.Before(ctx, name, query, params)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	if action == interceptor.Return {
		e.chain.After(ctx, name, query, anyArgs, &result, 0, nil)
		return result.Exec, nil
	}
	start := time.Now()
	execResult, runErr := e.sess.ExecContext(ctx, query, anyArgs...)
	e.chain.After(ctx, name, query, anyArgs, &result, time.Since(start), runErr)
	if runErr != nil {
		return nil, classifyRunError(ctx, runErr)
	}
	return execResult, nil
}

var _ SQLRowsExecutor = (*rowsExecutor)(nil)

// GenericExecutor decodes a decode.Rows result set into T via the
// decode package, wrapping a SQLRowsExecutor for the actual network
// round trip. T's kind selects the decode strategy: a struct or scalar
// destination binds exactly one row (decode.ErrTooManyRows on a
// second), a slice destination binds every row (see decode.Bind).
type GenericExecutor[T any] struct {
	SQLRowsExecutor
}

// NewGenericExecutor wraps base so its result sets decode into T.
func NewGenericExecutor[T any](base SQLRowsExecutor) *GenericExecutor[T] {
	return &GenericExecutor[T]{SQLRowsExecutor: base}
}

// QueryContext runs the statement and decodes the result set into T.
func (e *GenericExecutor[T]) QueryContext(ctx context.Context, args any) (result T, err error) {
	rows, err := e.SQLRowsExecutor.QueryContext(ctx, args)
	if err != nil {
		return result, err
	}
	defer func() { _ = rows.Close() }()

	result, err = decode.Bind[T](rows)
	if err != nil {
		return result, &DecodeError{Err: err}
	}
	return result, nil
}

var _ Executor[any] = (*GenericExecutor[any])(nil)
