package sqlcraft

import (
	"context"
	stddriver "database/sql/driver"
	"errors"
	"testing"

	"github.com/sqlcraft/sqlcraft/template"
)

func TestShortcuts_shortcuts_test(t *testing.T) {
	if _, err := QueryContext[string](context.Background(), "stmt", nil); !errors.Is(err, ErrNoManagerFoundInContext) {
		t.Fatalf("expected ErrNoManagerFoundInContext, got %v", err)
	}
	if _, err := ExecContext(context.Background(), "stmt", nil); !errors.Is(err, ErrNoManagerFoundInContext) {
		t.Fatalf("expected ErrNoManagerFoundInContext, got %v", err)
	}
	if _, err := QueryListContext[string](context.Background(), "stmt", nil); !errors.Is(err, ErrNoManagerFoundInContext) {
		t.Fatalf("expected ErrNoManagerFoundInContext, got %v", err)
	}
	if _, err := QueryListPointersContext[string](context.Background(), "stmt", nil); !errors.Is(err, ErrNoManagerFoundInContext) {
		t.Fatalf("expected ErrNoManagerFoundInContext, got %v", err)
	}
	if _, err := QueryIterContext[string](context.Background(), "stmt", nil); !errors.Is(err, ErrNoManagerFoundInContext) {
		t.Fatalf("expected ErrNoManagerFoundInContext, got %v", err)
	}

	state := &fakeDBState{columns: []string{"value"}, rows: [][]stddriver.Value{{"one"}}, rowsAffected: 1}
	db := openFakeDB(t, state)
	stmt := template.NewRawStatement("select 1", "select")
	executor := NewSQLRowsExecutor(stmt, db, testDriver{name: "fake"}, nil)
	mgr := &managerStub{object: executor}
	ctx := ContextWithManager(context.Background(), mgr)

	one, err := QueryContext[string](ctx, "stmt.query", nil)
	if err != nil {
		t.Fatalf("unexpected QueryContext error: %v", err)
	}
	if one != "one" {
		t.Fatalf("unexpected QueryContext result: %q", one)
	}

	if _, err = ExecContext(ctx, "stmt.exec", nil); err != nil {
		t.Fatalf("unexpected ExecContext error: %v", err)
	}

	state.rows = [][]stddriver.Value{{"l1"}, {"l2"}}
	items, err := QueryListContext[string](ctx, "stmt.list", nil)
	if err != nil {
		t.Fatalf("unexpected QueryListContext error: %v", err)
	}
	if len(items) != 2 || items[0] != "l1" || items[1] != "l2" {
		t.Fatalf("unexpected QueryListContext items: %#v", items)
	}

	state.rows = [][]stddriver.Value{{"p1"}}
	pItems, err := QueryListPointersContext[string](ctx, "stmt.list.ptr", nil)
	if err != nil {
		t.Fatalf("unexpected QueryListPointersContext error: %v", err)
	}
	if len(pItems) != 1 || *pItems[0] != "p1" {
		t.Fatalf("unexpected QueryListPointersContext items")
	}

	state.rows = [][]stddriver.Value{{"i1"}, {"i2"}}
	iter, err := QueryIterContext[string](ctx, "stmt.iter", nil)
	if err != nil {
		t.Fatalf("unexpected QueryIterContext error: %v", err)
	}
	var got []string
	for item := range iter.Seq() {
		got = append(got, item)
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("unexpected iter error: %v", err)
	}
	if len(got) != 2 || got[0] != "i1" || got[1] != "i2" {
		t.Fatalf("unexpected iter items: %#v", got)
	}

	queryErr := errors.New("query failed")
	state.queryErr = queryErr
	if _, err = QueryListContext[string](ctx, "stmt.list.err", nil); !errors.Is(err, queryErr) {
		t.Fatalf("expected query error, got %v", err)
	}
	if _, err = QueryListPointersContext[string](ctx, "stmt.list.ptr.err", nil); !errors.Is(err, queryErr) {
		t.Fatalf("expected query error, got %v", err)
	}
	if _, err = QueryIterContext[string](ctx, "stmt.iter.err", nil); !errors.Is(err, queryErr) {
		t.Fatalf("expected query error, got %v", err)
	}
	state.queryErr = nil
}
