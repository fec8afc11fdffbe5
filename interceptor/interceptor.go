// Package interceptor implements before/after hooks around statement
// execution: request logging, count-query rewriting for pagination, and
// a short-circuit guard for a statically-empty `IN ()` clause. Grounded
// on the teacher's Middleware/MiddlewareGroup wrapping pattern
// (middleware.go) for the Chain shape, and on
// original_source/src/plugin/intercept_page.rs for the pagination
// count-rewrite algorithm.
package interceptor

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlcraft/sqlcraft/decode"
	"github.com/sqlcraft/sqlcraft/sqlog"
)

// Action tells a Chain how to proceed after a handler runs.
type Action int

const (
	// Next continues the walk: to the next handler, or — once every
	// Before handler has run — to the driver.
	Next Action = iota
	// Return stops the walk immediately. A Before handler returning
	// Return must have already populated Result with the outcome to
	// hand back in place of a driver round trip.
	Return
)

// Result is the shared, mutable outcome slot threaded through one
// Chain call. Before handlers may rewrite sql/args and, on Return,
// must populate Result; After handlers may read and mutate Result but
// never sql or args.
type Result struct {
	// Rows, set by a Before handler that short-circuits a query call.
	Rows decode.Rows
	// Exec, set by a Before handler that short-circuits an exec call.
	Exec sql.Result
}

// Interceptor observes (and may rewrite) a query/args pair immediately
// before it runs, and observes the outcome immediately after.
type Interceptor interface {
	Before(ctx context.Context, name string, query string, args []any, result *Result) (Action, string, []any, error)
	After(ctx context.Context, name string, query string, args []any, result *Result, elapsed time.Duration, err error) Action
}

// Chain runs a sequence of Interceptors in order for Before, and in
// reverse order for After (innermost-first unwind, matching the
// teacher's MiddlewareGroup wrapping semantics).
type Chain []Interceptor

// Before walks c in order. The first handler to return Return stops
// the walk immediately and its populated Result is handed back
// instead of reaching the driver; any handler's error aborts the walk
// the same way it always has.
func (c Chain) Before(ctx context.Context, name, query string, args []any) (Action, string, []any, Result, error) {
	var result Result
	for _, i := range c {
		action, q, a, err := i.Before(ctx, name, query, args, &result)
		if err != nil {
			return Next, "", nil, Result{}, err
		}
		query, args = q, a
		if action == Return {
			return Return, query, args, result, nil
		}
	}
	return Next, query, args, result, nil
}

// After walks c in reverse order, handing every remaining handler the
// shared result slot. A handler returning Return stops the unwind
// before any handler earlier in the chain observes the call.
func (c Chain) After(ctx context.Context, name, query string, args []any, result *Result, elapsed time.Duration, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].After(ctx, name, query, args, result, elapsed, err) == Return {
			return
		}
	}
}

// Logging traces every statement's query, args and elapsed time through
// sqlog at debug level.
type Logging struct{}

func (Logging) Before(_ context.Context, _ string, query string, args []any, _ *Result) (Action, string, []any, error) {
	return Next, query, args, nil
}

func (Logging) After(_ context.Context, name string, query string, args []any, _ *Result, elapsed time.Duration, _ error) Action {
	sqlog.Statement(name, query, args, elapsed)
	return Next
}
