package interceptor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sqlcraft/sqlcraft/driver"
)

// ErrOrderByBoundParams is returned when a pagination rewrite is asked
// of a query whose ORDER BY clause references bound placeholders —
// stripping or paging past that clause could leave argv out of step
// with the placeholders, so the rewrite refuses rather than risk a
// silently wrong statement.
var ErrOrderByBoundParams = errors.New("interceptor: cannot paginate a query whose ORDER BY references bound parameters")

// PageRequest is an offset/size pagination ask.
type PageRequest struct {
	Offset uint64
	Size   uint64
}

// Pagination rewrites a marked statement two ways: as a "select ... from
// ..." whose projection list is swapped for "count(1) as count" (with
// any trailing LIMIT stripped) when used for the accompanying total
// count, or by appending the driver's pagination clause to fetch one
// page of rows. Which behavior applies is selected per call via
// ForCount/ForPage, mirroring PageIntercept's select_ids/count_ids pair
// in the original implementation.
type Pagination struct {
	Translator driver.Translator
}

// ForCount rewrites query into its row-count form: the projection list
// becomes "count(1) as count" and any trailing LIMIT, OFFSET, or ORDER
// BY clause is stripped, since none of them apply to a row count. A
// statement whose ORDER BY itself references a bound parameter is
// refused (ErrOrderByBoundParams) rather than popped from argv, the
// same refusal ForPage applies.
func (p Pagination) ForCount(query string) (string, error) {
	lower := strings.ToLower(query)
	selIdx := strings.Index(lower, "select ")
	fromIdx := strings.Index(lower, " from ")
	if selIdx < 0 || fromIdx < 0 || fromIdx <= selIdx {
		return "", fmt.Errorf("interceptor: pagination count rewrite requires a select ... from ... query")
	}
	projStart := selIdx + len("select ")
	rewritten := query[:projStart] + "count(1) as count" + query[fromIdx:]

	if hasBoundOrderByReference(rewritten) {
		return "", ErrOrderByBoundParams
	}

	rewrittenLower := strings.ToLower(rewritten)
	cut := len(rewritten)
	for _, clause := range []string{" order by ", " limit ", " offset "} {
		if idx := strings.Index(rewrittenLower, clause); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return rewritten[:cut], nil
}

// ForPage appends the driver's pagination clause (and, for dialects
// that require it, a default ORDER BY) to query. A query that already
// has a LIMIT or OFFSET is returned unchanged; one whose ORDER BY
// references a placeholder is refused with ErrOrderByBoundParams.
func (p Pagination) ForPage(query string, req PageRequest) (string, error) {
	lower := strings.ToLower(query)
	if !strings.Contains(lower, "select ") || !strings.Contains(lower, " from ") {
		return "", fmt.Errorf("interceptor: pagination requires a select ... from ... query")
	}
	if strings.Contains(lower, " limit ") || strings.Contains(lower, " offset ") {
		return query, nil
	}
	if hasBoundOrderByReference(query) {
		return "", ErrOrderByBoundParams
	}

	out := query
	if p.Translator.RequiresOrderBy() && !strings.Contains(lower, " order by ") {
		out = out + " " + p.Translator.DefaultOrderBy()
	}
	out = out + " " + p.Translator.PaginationClause(req.Offset, req.Size)
	return out, nil
}

// hasBoundOrderByReference is a conservative check: any existing ORDER
// BY clause that references a placeholder token is treated as
// referencing a bound parameter.
func hasBoundOrderByReference(query string) bool {
	lower := strings.ToLower(query)
	idx := strings.Index(lower, " order by ")
	if idx < 0 {
		return false
	}
	clause := query[idx:]
	return strings.ContainsAny(clause, "?$@")
}

// pagingInterceptor is the Interceptor adapter around Pagination: it is
// constructed per-statement with the page/count mode already decided by
// the statement's own attributes, since (unlike the Rust original's
// executor-id keyed side table) this module associates the rewrite with
// the statement at compile time rather than with a runtime executor id.
type pagingInterceptor struct {
	pg   Pagination
	mode pageMode
	req  PageRequest
}

type pageMode int

const (
	pageModeNone pageMode = iota
	pageModeCount
	pageModePage
)

// NewCountInterceptor returns an Interceptor that rewrites the statement
// it wraps into its row-count form.
func NewCountInterceptor(t driver.Translator) Interceptor {
	return &pagingInterceptor{pg: Pagination{Translator: t}, mode: pageModeCount}
}

// NewPageInterceptor returns an Interceptor that appends pagination to
// the statement it wraps.
func NewPageInterceptor(t driver.Translator, req PageRequest) Interceptor {
	return &pagingInterceptor{pg: Pagination{Translator: t}, mode: pageModePage, req: req}
}

func (p *pagingInterceptor) Before(_ context.Context, _ string, query string, args []any, _ *Result) (Action, string, []any, error) {
	switch p.mode {
	case pageModeCount:
		q, err := p.pg.ForCount(query)
		return Next, q, args, err
	case pageModePage:
		q, err := p.pg.ForPage(query, p.req)
		return Next, q, args, err
	default:
		return Next, query, args, nil
	}
}

func (p *pagingInterceptor) After(context.Context, string, string, []any, *Result, time.Duration, error) Action {
	return Next
}
