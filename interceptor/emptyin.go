package interceptor

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sqlcraft/sqlcraft/internal/sqlmock"
)

// emptyInPattern matches a bound "in ()" clause with a word boundary
// before "in" so "begin ()" and "origin ()" aren't mistaken for it,
// any casing, and any whitespace inside/between the parens collapsed.
var emptyInPattern = regexp.MustCompile(`\bin\s*\(\s*\)`)

// EmptyIN halts execution when Before observes a statically-empty
// "in ()" clause in the generated query text: the foreach that built
// it ran over a zero-length collection. Running such a query against
// most dialects is either a syntax error or (for those that accept it)
// always returns zero rows, so the guard reports that outcome itself —
// {0 rows affected, no last insert id} for exec, an empty row set for
// query — rather than make the round trip to rediscover it per driver.
type EmptyIN struct{}

func (EmptyIN) Before(_ context.Context, _ string, query string, args []any, result *Result) (Action, string, []any, error) {
	if !containsEmptyIN(query) {
		return Next, query, args, nil
	}
	result.Rows = &sqlmock.MockRows{}
	result.Exec = emptyExecResult{}
	return Return, query, args, nil
}

func (EmptyIN) After(context.Context, string, string, []any, *Result, time.Duration, error) Action {
	return Next
}

func containsEmptyIN(query string) bool {
	return emptyInPattern.MatchString(strings.ToLower(query))
}

// emptyExecResult is the sql.Result EmptyIN hands back for an exec
// call: zero rows affected, and no last insert id at all (matching how
// drivers that don't support LastInsertId report its absence, rather
// than claiming 0 is a real id).
type emptyExecResult struct{}

var errNoLastInsertID = errors.New("interceptor: short-circuited exec result has no last insert id")

func (emptyExecResult) LastInsertId() (int64, error) { return 0, errNoLastInsertID }
func (emptyExecResult) RowsAffected() (int64, error) { return 0, nil }
