package driver

import "testing"

func TestPlaceholderSyntaxPerTag(t *testing.T) {
	cases := []struct {
		tag  Tag
		idx  int
		want string
	}{
		{MySQL, 0, "?"},
		{MySQL, 5, "?"},
		{SQLite, 2, "?"},
		{PostgreSQL, 0, "$1"},
		{PostgreSQL, 2, "$3"},
		{MSSQL, 0, "@p1"},
		{MSSQL, 4, "@p5"},
	}
	for _, c := range cases {
		d, err := Get(string(c.tag))
		if err != nil {
			t.Fatalf("Get(%s): %v", c.tag, err)
		}
		if got := d.Translator().Placeholder(c.idx); got != c.want {
			t.Fatalf("%s.Placeholder(%d) = %q, want %q", c.tag, c.idx, got, c.want)
		}
	}
}

func TestPaginationClausePerTag(t *testing.T) {
	my, _ := Get(string(MySQL))
	if got := my.Translator().PaginationClause(10, 10); got != "LIMIT 10,10" {
		t.Fatalf("mysql pagination = %q", got)
	}

	pg, _ := Get(string(PostgreSQL))
	if got := pg.Translator().PaginationClause(10, 10); got != "LIMIT 10 OFFSET 10" {
		t.Fatalf("postgres pagination = %q", got)
	}

	ms, _ := Get(string(MSSQL))
	if got := ms.Translator().PaginationClause(10, 10); got != "OFFSET 10 ROWS FETCH NEXT 10 ROWS ONLY" {
		t.Fatalf("mssql pagination = %q", got)
	}
	if !ms.Translator().RequiresOrderBy() {
		t.Fatalf("mssql should require order by")
	}
}

func TestUnknownDriverTag(t *testing.T) {
	if _, err := Get("oracle"); err == nil {
		t.Fatalf("expected an error for an unregistered driver tag")
	}
}
