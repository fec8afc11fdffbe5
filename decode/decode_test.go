package decode

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type mockRows struct {
	columns      []string
	data         [][]any
	currentIndex int
}

func (m *mockRows) Columns() ([]string, error) { return m.columns, nil }

func (m *mockRows) Next() bool {
	if m.currentIndex < len(m.data) {
		m.currentIndex++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	row := m.data[m.currentIndex-1]
	if len(dest) != len(row) {
		return fmt.Errorf("mockRows: expected %d dest, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		if scanner, ok := d.(sql.Scanner); ok {
			if err := scanner.Scan(row[i]); err != nil {
				return err
			}
			continue
		}
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Ptr {
			return errors.New("mockRows: scan destination not a pointer")
		}
		dv.Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (m *mockRows) Err() error   { return nil }
func (m *mockRows) Close() error { return nil }

type user struct {
	ID   int    `column:"id"`
	Name string `column:"name"`
}

type withEmbedded struct {
	ID int `column:"id"`
	user
	Rate float64 `column:"rate"`
}

type rowScannerUser struct {
	ID      int
	Name    string
	scanned bool
}

func (u *rowScannerUser) ScanRows(rows Rows) error {
	u.scanned = true
	return rows.Scan(&u.ID, &u.Name)
}

func TestBindSingleRowStruct(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}, data: [][]any{{1, "ada"}}}
	got, err := Bind[user](rows)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got.ID != 1 || got.Name != "ada" {
		t.Fatalf("got %+v", got)
	}
}

func TestBindSingleRowTooManyRows(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}, data: [][]any{{1, "ada"}, {2, "bea"}}}
	if _, err := Bind[user](rows); !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
}

func TestBindSingleRowNoRows(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}}
	if _, err := Bind[user](rows); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}}
	got, err := List[user](rows)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty non-nil slice", got)
	}
}

func TestListDecodesMultipleRows(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}, data: [][]any{{1, "ada"}, {2, "bea"}}}
	got, err := List[user](rows)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "ada" || got[1].Name != "bea" {
		t.Fatalf("got %+v", got)
	}
}

func TestListWithEmbeddedStructDeepScan(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name", "rate"}, data: [][]any{{1, "ada", 2.5}}}
	got, err := List[withEmbedded](rows)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "ada" || got[0].Rate != 2.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestListUsesRowScannerWhenImplemented(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}, data: [][]any{{1, "ada"}}}
	got, err := ListPointers[rowScannerUser](rows)
	if err != nil {
		t.Fatalf("ListPointers: %v", err)
	}
	if len(got) != 1 || !got[0].scanned || got[0].Name != "ada" {
		t.Fatalf("got %+v", got)
	}
}

func TestIterYieldsEachRow(t *testing.T) {
	rows := &mockRows{columns: []string{"id", "name"}, data: [][]any{{1, "ada"}, {2, "bea"}}}
	it := Iter[user](rows)
	var names []string
	for u := range it.Seq() {
		names = append(names, u.Name)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if len(names) != 2 || names[0] != "ada" || names[1] != "bea" {
		t.Fatalf("got %v", names)
	}
}
