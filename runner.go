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

	"github.com/sqlcraft/sqlcraft/decode"
	"github.com/sqlcraft/sqlcraft/session"
	sqlaction "github.com/sqlcraft/sqlcraft/sql"
	"github.com/sqlcraft/sqlcraft/template"
)

// Runner executes a single ad-hoc SQL string — one not registered in
// any mapping file — against whichever session it was built with.
type Runner interface {
	Select(ctx context.Context, args any) (decode.Rows, error)
	Insert(ctx context.Context, args any) (sql.Result, error)
	Update(ctx context.Context, args any) (sql.Result, error)
	Delete(ctx context.Context, args any) (sql.Result, error)
}

// ErrorRunner is a Runner that fails every call with a fixed error,
// useful for propagating a setup failure without panicking.
type ErrorRunner struct{ err error }

func (r *ErrorRunner) Select(context.Context, any) (decode.Rows, error) { return nil, r.err }
func (r *ErrorRunner) Insert(context.Context, any) (sql.Result, error)  { return nil, r.err }
func (r *ErrorRunner) Update(context.Context, any) (sql.Result, error)  { return nil, r.err }
func (r *ErrorRunner) Delete(context.Context, any) (sql.Result, error)  { return nil, r.err }

// NewErrorRunner returns a Runner whose every call fails with err.
func NewErrorRunner(err error) Runner { return &ErrorRunner{err: err} }

// SQLRunner is the standard Runner, compiling query as a
// template.RawStatement against engine's driver dialect.
type SQLRunner struct {
	query   string
	engine  *Engine
	session session.Session
}

func (r *SQLRunner) executor(action sqlaction.Action) SQLRowsExecutor {
	statement := template.NewRawStatement(r.query, action)
	return NewSQLRowsExecutor(statement, r.session, r.engine.Driver(), r.engine.chain)
}

func (r *SQLRunner) Select(ctx context.Context, args any) (decode.Rows, error) {
	return r.executor(sqlaction.Select).QueryContext(ctx, args)
}

func (r *SQLRunner) Insert(ctx context.Context, args any) (sql.Result, error) {
	return r.executor(sqlaction.Insert).ExecContext(ctx, args)
}

func (r *SQLRunner) Update(ctx context.Context, args any) (sql.Result, error) {
	return r.executor(sqlaction.Update).ExecContext(ctx, args)
}

func (r *SQLRunner) Delete(ctx context.Context, args any) (sql.Result, error) {
	return r.executor(sqlaction.Delete).ExecContext(ctx, args)
}

// NewRunner builds a Runner for query, running against sess (typically
// engine.DB() or an active transaction).
func NewRunner(query string, engine *Engine, sess session.Session) Runner {
	return &SQLRunner{query: query, engine: engine, session: sess}
}

// GenericRunner decodes a Runner's Select result set into T.
type GenericRunner[T any] struct {
	Runner
}

// Bind runs the query and decodes exactly one row into T.
func (r *GenericRunner[T]) Bind(ctx context.Context, args any) (result T, err error) {
	rows, err := r.Runner.Select(ctx, args)
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

// List runs the query and decodes every row into a []T.
func (r *GenericRunner[T]) List(ctx context.Context, args any) ([]T, error) {
	rows, err := r.Runner.Select(ctx, args)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	result, err := decode.List[T](rows)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return result, nil
}

// ListPointers runs the query and decodes every row into a []*T.
func (r *GenericRunner[T]) ListPointers(ctx context.Context, args any) ([]*T, error) {
	rows, err := r.Runner.Select(ctx, args)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	result, err := decode.ListPointers[T](rows)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return result, nil
}

// NewGenericRunner builds a GenericRunner for query against sess.
func NewGenericRunner[T any](query string, engine *Engine, sess session.Session) *GenericRunner[T] {
	return &GenericRunner[T]{Runner: NewRunner(query, engine, sess)}
}
