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
	"github.com/sqlcraft/sqlcraft/session/tx"
)

// Manager is a high-level abstraction for executing statements: Object
// resolves a statement key to an Executor bound to whatever connection
// or transaction the Manager wraps.
type Manager interface {
	Object(v any) SQLRowsExecutor
}

// GenericManager adapts a Manager's raw *sql.Rows executor to decode
// into T.
type GenericManager[T any] struct {
	Manager
}

// NewGenericManager wraps manager so its statements decode into T.
func NewGenericManager[T any](manager Manager) *GenericManager[T] {
	return &GenericManager[T]{Manager: manager}
}

// Object implements a type-safe counterpart to Manager.Object.
func (s *GenericManager[T]) Object(v any) Executor[T] {
	return NewGenericExecutor[T](s.Manager.Object(v))
}

// TxManager extends Manager with explicit transaction control.
type TxManager interface {
	Manager

	// Begin starts a new transaction. Returns StateError if one is
	// already active.
	Begin() error

	// Commit commits the active transaction. Returns StateError if none
	// is active.
	Commit() error

	// Rollback aborts the active transaction. Returns StateError if none
	// is active.
	Rollback() error
}

// BasicTxManager implements TxManager against a single *Engine,
// executing every Object call inside the transaction started by Begin.
type BasicTxManager struct {
	engine    *Engine
	txOptions *sql.TxOptions
	tx        tx.Transaction
	session   *sql.Tx
	ctx       context.Context
}

// Object implements Manager. It returns a StateError executor if the
// transaction has not been started.
func (t *BasicTxManager) Object(v any) SQLRowsExecutor {
	if t.session == nil {
		return InvalidExecutor[decode.Rows](&StateError{Err: tx.ErrTransactionNotBegun})
	}
	key, err := statementKey(v)
	if err != nil {
		return InvalidExecutor[decode.Rows](err)
	}
	statement, err := t.engine.configuration.Mappers.StatementByID(key)
	if err != nil {
		return InvalidExecutor[decode.Rows](&ParseError{Err: err})
	}
	return NewSQLRowsExecutor(statement, t.session, t.engine.Driver(), t.engine.chain)
}

// Begin starts the transaction. Returns a StateError wrapping
// tx.ErrTransactionAlreadyBegun if one is already active.
func (t *BasicTxManager) Begin() error {
	if t.session != nil {
		return &StateError{Err: tx.ErrTransactionAlreadyBegun}
	}
	session, err := t.engine.DB().BeginTx(t.ctx, t.txOptions)
	if err != nil {
		return &DriverError{Err: err}
	}
	t.session, t.tx = session, session
	return nil
}

// Commit commits the transaction. Returns a StateError wrapping
// tx.ErrTransactionNotBegun if none is active.
func (t *BasicTxManager) Commit() error {
	if t.tx == nil {
		return &StateError{Err: tx.ErrTransactionNotBegun}
	}
	if err := t.tx.Commit(); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

// Rollback aborts the transaction. Returns a StateError wrapping
// tx.ErrTransactionNotBegun if none is active.
func (t *BasicTxManager) Rollback() error {
	if t.tx == nil {
		return &StateError{Err: tx.ErrTransactionNotBegun}
	}
	if err := t.tx.Rollback(); err != nil {
		return &DriverError{Err: err}
	}
	return nil
}

var _ TxManager = (*BasicTxManager)(nil)

type managerKey struct{}

// ManagerFromContext returns the Manager carried by ctx, or
// ErrNoManagerFoundInContext if none was attached.
func ManagerFromContext(ctx context.Context) (Manager, error) {
	manager, ok := ctx.Value(managerKey{}).(Manager)
	if !ok {
		return nil, ErrNoManagerFoundInContext
	}
	return manager, nil
}

// ContextWithManager returns a copy of ctx carrying manager.
func ContextWithManager(ctx context.Context, manager Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, manager)
}

// IsTxManager reports whether manager also implements TxManager.
func IsTxManager(manager Manager) bool {
	_, ok := manager.(TxManager)
	return ok
}
