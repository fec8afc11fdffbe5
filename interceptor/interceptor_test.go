package interceptor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sqlcraft/sqlcraft/driver"
)

func mustTranslator(t *testing.T, tag driver.Tag) driver.Translator {
	t.Helper()
	d, err := driver.Get(string(tag))
	if err != nil {
		t.Fatalf("driver.Get: %v", err)
	}
	return d.Translator()
}

func TestPaginationForCountStripsLimit(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.MySQL)}
	got, err := p.ForCount("select id, name from user where id = ? limit 10,10")
	if err != nil {
		t.Fatalf("ForCount: %v", err)
	}
	want := "select count(1) as count from user where id = ?"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPaginationForCountStripsOffsetAndOrderBy(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.PostgreSQL)}
	got, err := p.ForCount("select id, name from user order by id desc limit 10 offset 20")
	if err != nil {
		t.Fatalf("ForCount: %v", err)
	}
	want := "select count(1) as count from user"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPaginationForCountRefusesBoundOrderBy(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.PostgreSQL)}
	_, err := p.ForCount("select id, name from user order by ? limit 10")
	if err == nil {
		t.Fatalf("expected refusal for bound ORDER BY")
	}
}

func TestPaginationForPageAppendsClause(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.PostgreSQL)}
	got, err := p.ForPage("select * from user", PageRequest{Offset: 20, Size: 10})
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if !strings.Contains(got, "LIMIT 10 OFFSET 20") {
		t.Fatalf("got %q", got)
	}
}

func TestPaginationMSSQLAddsDefaultOrderBy(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.MSSQL)}
	got, err := p.ForPage("select * from user", PageRequest{Offset: 0, Size: 10})
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if !strings.Contains(got, "ORDER BY id DESC") {
		t.Fatalf("got %q", got)
	}
}

func TestPaginationRefusesBoundOrderBy(t *testing.T) {
	p := Pagination{Translator: mustTranslator(t, driver.MSSQL)}
	_, err := p.ForPage("select * from user order by ?", PageRequest{Offset: 0, Size: 10})
	if err == nil {
		t.Fatalf("expected refusal for bound ORDER BY")
	}
}

func TestEmptyINGuardHaltsExecution(t *testing.T) {
	g := EmptyIN{}
	var result Result
	action, _, _, err := g.Before(context.Background(), "find", "select * from user where id in ()", nil, &result)
	if err != nil {
		t.Fatalf("Before: %v", err)
	}
	if action != Return {
		t.Fatalf("action = %v, want Return", action)
	}
	if result.Rows == nil {
		t.Fatalf("result.Rows = nil, want a populated empty row set")
	}
	if result.Rows.Next() {
		t.Fatalf("result.Rows should be empty")
	}
	if result.Exec == nil {
		t.Fatalf("result.Exec = nil, want a populated exec result")
	}
	affected, err := result.Exec.RowsAffected()
	if err != nil || affected != 0 {
		t.Fatalf("RowsAffected() = %d, %v, want 0, nil", affected, err)
	}
	if _, err := result.Exec.LastInsertId(); err == nil {
		t.Fatalf("expected LastInsertId to report absence")
	}
}

func TestEmptyINGuardIgnoresWordsContainingIn(t *testing.T) {
	g := EmptyIN{}
	var result Result
	action, _, _, err := g.Before(context.Background(), "find", "select * from user where origin = 'begin ()'", nil, &result)
	if err != nil {
		t.Fatalf("Before: %v", err)
	}
	if action != Next {
		t.Fatalf("action = %v, want Next", action)
	}
}

func TestChainRunsBeforeInOrderAfterReversed(t *testing.T) {
	var order []string
	a := orderTrackingInterceptor{name: "a", order: &order}
	b := orderTrackingInterceptor{name: "b", order: &order}
	chain := Chain{a, b}

	_, _, _, result, err := chain.Before(context.Background(), "s", "q", nil)
	if err != nil {
		t.Fatalf("Before: %v", err)
	}
	chain.After(context.Background(), "s", "q", nil, &result, time.Millisecond, nil)

	want := []string{"before:a", "before:b", "after:b", "after:a"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

type orderTrackingInterceptor struct {
	name  string
	order *[]string
}

func (o orderTrackingInterceptor) Before(_ context.Context, _ string, query string, args []any, _ *Result) (Action, string, []any, error) {
	*o.order = append(*o.order, "before:"+o.name)
	return Next, query, args, nil
}

func (o orderTrackingInterceptor) After(context.Context, string, string, []any, *Result, time.Duration, error) Action {
	*o.order = append(*o.order, "after:"+o.name)
	return Next
}
