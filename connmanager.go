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
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sqlcraft/sqlcraft/config"
	"github.com/sqlcraft/sqlcraft/driver"
)

// Source encapsulates all configuration parameters needed for establishing
// and maintaining a database connection. It mirrors config.Environment but
// is decoupled from the config package so connections can be registered
// without a loaded Configuration.
type Source struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// conn represents an active database connection along with its associated
// driver. It uses sync.Once to ensure thread-safe initialization.
type conn struct {
	db   *sql.DB
	drv  driver.Driver
	once sync.Once
}

// ConnManager implements a thread-safe connection manager for multiple
// named database instances, dialing lazily on first use and caching the
// result for the lifetime of the manager.
type ConnManager struct {
	conns   sync.Map // name -> *conn
	sources map[string]Source
	mu      sync.RWMutex
	closed  atomic.Bool
	names   []string
}

var (
	// ErrConnManagerClosed is returned when attempting to use a closed manager.
	ErrConnManagerClosed = &StateError{Err: errors.New("sqlcraft: connection manager is closed")}

	// ErrSourceExists is returned when attempting to add a duplicate source.
	ErrSourceExists = errors.New("sqlcraft: source already exists")

	// ErrSourceNotFound is returned when attempting to access a non-existent source.
	ErrSourceNotFound = errors.New("sqlcraft: source not found")
)

// Get retrieves an existing database connection or dials a new one if it
// doesn't exist yet. It is safe for concurrent use and dials a source at
// most once regardless of concurrent callers.
func (m *ConnManager) Get(name string) (*sql.DB, driver.Driver, error) {
	if m.closed.Load() {
		return nil, nil, ErrConnManagerClosed
	}

	if c, ok := m.conns.Load(name); ok {
		c := c.(*conn)
		return c.db, c.drv, nil
	}

	m.mu.RLock()
	if m.closed.Load() {
		m.mu.RUnlock()
		return nil, nil, ErrConnManagerClosed
	}
	source, exists := m.sources[name]
	m.mu.RUnlock()

	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}

	return m.connect(name, source)
}

// connect dials a new database connection for source, using drv's
// registered sql.Driver name and the pool parameters carried on source.
// No driver/options.Connect equivalent survived retrieval for this
// tree's rebuilt driver package, so pool setup happens directly against
// the *sql.DB returned by sql.Open.
func (m *ConnManager) connect(name string, source Source) (db *sql.DB, drv driver.Driver, err error) {
	actual, loaded := m.conns.LoadOrStore(name, &conn{})
	c := actual.(*conn)

	if loaded {
		return c.db, c.drv, nil
	}
	c.once.Do(func() {
		drv, err = driver.Get(source.Driver)
		if err != nil {
			err = &DriverError{Err: fmt.Errorf("resolving driver %q: %w", source.Driver, err)}
			return
		}
		db, err = sql.Open(drv.SQLDriverName(), source.DSN)
		if err != nil {
			err = &DriverError{Err: fmt.Errorf("opening %q: %w", name, err)}
			return
		}
		db.SetMaxOpenConns(source.MaxOpenConns)
		db.SetMaxIdleConns(source.MaxIdleConns)
		db.SetConnMaxLifetime(source.ConnMaxLifetime)
		db.SetConnMaxIdleTime(source.ConnMaxIdleTime)
		c.db = db
		c.drv = drv
	})
	if err != nil {
		m.conns.Delete(name)
	}
	return c.db, c.drv, err
}

// Add registers a new database source configuration with the manager. It
// returns an error if the source already exists or if the manager is
// closed.
func (m *ConnManager) Add(name string, source Source) error {
	if m.closed.Load() {
		return ErrConnManagerClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return ErrConnManagerClosed
	}
	if m.sources == nil {
		m.sources = make(map[string]Source)
	}
	if _, exists := m.sources[name]; exists {
		return fmt.Errorf("%w: %s", ErrSourceExists, name)
	}
	m.sources[name] = source
	m.names = append(m.names, name)
	return nil
}

// Registered returns the names of every source added to the manager, in
// the order they were added.
func (m *ConnManager) Registered() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.names
}

// Close gracefully shuts down every dialed connection and marks the
// manager closed. It is idempotent.
func (m *ConnManager) Close() error {
	if m.closed.Load() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed.Load() {
		return nil
	}

	var errs []error
	m.conns.Range(func(key, value any) bool {
		c := value.(*conn)
		if c.db != nil {
			if err := c.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %v: %w", key, err))
			}
		}
		return true
	})
	m.closed.Store(true)

	if len(errs) > 0 {
		return &DriverError{Err: errors.Join(errs...)}
	}
	return nil
}

// NewConnManager builds a ConnManager from every environment registered
// in envs, keyed by each Environment's own ID.
func NewConnManager(envs *config.Environments) (*ConnManager, error) {
	m := &ConnManager{sources: make(map[string]Source)}
	for env := range envs.Iter() {
		if err := m.Add(env.ID, Source{
			Driver:          env.Driver,
			DSN:             env.DataSource,
			MaxOpenConns:    env.MaxOpenConnNum,
			MaxIdleConns:    env.MaxIdleConnNum,
			ConnMaxLifetime: time.Duration(env.MaxConnLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(env.MaxIdleConnLifetime) * time.Second,
		}); err != nil {
			return nil, fmt.Errorf("adding source %s: %w", env.ID, err)
		}
	}
	return m, nil
}
