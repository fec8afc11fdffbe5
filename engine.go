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
	"fmt"

	"github.com/sqlcraft/sqlcraft/config"
	"github.com/sqlcraft/sqlcraft/decode"
	"github.com/sqlcraft/sqlcraft/driver"
	"github.com/sqlcraft/sqlcraft/interceptor"
)

// Engine is the Manager implementation tying a loaded Configuration to
// a pool of live database connections and an interceptor chain run
// around every statement.
type Engine struct {
	configuration *config.Configuration
	driver        driver.Driver
	db            *sql.DB
	using         string
	conns         *ConnManager
	chain         interceptor.Chain
}

// executor resolves v to a Statement and wraps it in a SQLRowsExecutor
// bound to the engine's current connection.
func (e *Engine) executor(v any) (SQLRowsExecutor, error) {
	key, err := statementKey(v)
	if err != nil {
		return nil, err
	}
	statement, err := e.configuration.Mappers.StatementByID(key)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return NewSQLRowsExecutor(statement, e.db, e.Driver(), e.chain), nil
}

// Object implements Manager.
func (e *Engine) Object(v any) SQLRowsExecutor {
	exe, err := e.executor(v)
	if err != nil {
		return InvalidExecutor[decode.Rows](err)
	}
	return exe
}

// Tx starts a new BasicTxManager scoped to a background context.
func (e *Engine) Tx() *BasicTxManager {
	return e.ContextTx(context.Background(), nil)
}

// ContextTx starts a new BasicTxManager scoped to ctx, with opt as the
// transaction options passed to Begin.
func (e *Engine) ContextTx(ctx context.Context, opt *sql.TxOptions) *BasicTxManager {
	return &BasicTxManager{engine: e, ctx: ctx, txOptions: opt}
}

// Configuration returns the loaded Configuration backing the engine.
func (e *Engine) Configuration() *config.Configuration {
	return e.configuration
}

// Use appends an interceptor to the chain run around every statement
// this engine (and its transaction managers) executes.
func (e *Engine) Use(i interceptor.Interceptor) {
	e.chain = append(e.chain, i)
}

func (e *Engine) clone() *Engine {
	return &Engine{configuration: e.configuration, conns: e.conns, chain: e.chain}
}

// With returns an Engine bound to the named environment. If name is
// already the active environment, e is returned unchanged; otherwise a
// clone is returned holding that environment's connection and driver.
// Every clone shares the same ConnManager, so Close on any of them
// closes every dialed connection.
func (e *Engine) With(name string) (*Engine, error) {
	if e.using == name {
		return e, nil
	}
	db, drv, err := e.conns.Get(name)
	if err != nil {
		return nil, err
	}
	engine := e.clone()
	engine.db, engine.driver, engine.using = db, drv, name
	return engine, nil
}

// EnvID returns the identifier of the currently active database environment.
func (e *Engine) EnvID() string { return e.using }

// DB returns the database connection of the engine.
func (e *Engine) DB() *sql.DB { return e.db }

// Driver returns the driver of the engine.
func (e *Engine) Driver() driver.Driver { return e.driver }

// Close shuts down every connection dialed by this engine's ConnManager.
// Every cloned Engine shares the same manager, so Close on any of them
// closes all of them.
func (e *Engine) Close() error { return e.conns.Close() }

func (e *Engine) init() (err error) {
	e.conns, err = NewConnManager(e.configuration.Environments)
	if err != nil {
		return err
	}
	e.using = e.configuration.Environments.Default
	e.db, e.driver, err = e.conns.Get(e.using)
	if err != nil {
		return &DriverError{Err: fmt.Errorf("connecting default environment %q: %w", e.using, err)}
	}
	return nil
}

// New builds an Engine from a loaded Configuration and dials its
// default environment.
func New(configuration *config.Configuration) (*Engine, error) {
	engine := &Engine{configuration: configuration}
	if err := engine.init(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Default builds an Engine the same way New does, additionally
// installing the structured-logging and empty-IN-guard interceptors
// every production deployment wants by default.
func Default(configuration *config.Configuration) (*Engine, error) {
	engine, err := New(configuration)
	if err != nil {
		return nil, err
	}
	engine.Use(interceptor.Logging{})
	engine.Use(interceptor.EmptyIN{})
	return engine, nil
}
