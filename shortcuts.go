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
)

// This file provides context-based database helper shortcuts: callers
// that carry a Manager through ctx (ContextWithManager) don't need to
// resolve it and build an Executor by hand for a one-off call.

// QueryContext executes statement with param and scans a single result
// into T. ctx must carry a Manager (see ContextWithManager).
func QueryContext[T any](ctx context.Context, statement, param any) (result T, err error) {
	manager, err := ManagerFromContext(ctx)
	if err != nil {
		return result, err
	}
	executor := NewGenericManager[T](manager).Object(statement)
	return executor.QueryContext(ctx, param)
}

// ExecContext executes a statement that does not return rows.
// ctx must carry a Manager (see ContextWithManager).
func ExecContext(ctx context.Context, statement, param any) (sql.Result, error) {
	manager, err := ManagerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return manager.Object(statement).ExecContext(ctx, param)
}

// QueryListContext executes statement and returns every row decoded
// into a []T. ctx must carry a Manager (see ContextWithManager).
func QueryListContext[T any](ctx context.Context, statement, param any) ([]T, error) {
	manager, err := ManagerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := manager.Object(statement).QueryContext(ctx, param)
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

// QueryListPointersContext is QueryListContext decoding into []*T
// instead of []T. ctx must carry a Manager (see ContextWithManager).
func QueryListPointersContext[T any](ctx context.Context, statement, param any) ([]*T, error) {
	manager, err := ManagerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := manager.Object(statement).QueryContext(ctx, param)
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

// QueryIterContext executes statement and returns an iterator over T.
// ctx must carry a Manager (see ContextWithManager).
//
// database/sql closes the underlying rows automatically once iteration
// runs to completion; stopping the range early (break) leaks the
// connection unless the caller closes it explicitly.
func QueryIterContext[T any](ctx context.Context, statement, param any) (*decode.RowIter[T], error) {
	manager, err := ManagerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := manager.Object(statement).QueryContext(ctx, param)
	if err != nil {
		return nil, err
	}
	return decode.Iter[T](rows), nil
}
