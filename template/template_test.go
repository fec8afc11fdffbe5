package template

import (
	"strings"
	"testing"

	"github.com/sqlcraft/sqlcraft/driver"
	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/node"
	"github.com/sqlcraft/sqlcraft/value"
)

func mustDriver(t *testing.T, tag driver.Tag) driver.Translator {
	t.Helper()
	d, err := driver.Get(string(tag))
	if err != nil {
		t.Fatalf("driver.Get: %v", err)
	}
	return d.Translator()
}

func TestParseXMLSelectStatement(t *testing.T) {
	xmlDoc := `
<mapper namespace="user">
  <select id="find">
    select * from user
    <where>
      <if test="name != null">
        and name = #{name}
      </if>
    </where>
  </select>
</mapper>`

	mappers := NewMappers()
	m, err := ParseXML(mappers, strings.NewReader(xmlDoc))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if err := mappers.Add(m); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := mappers.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}

	stmt, ok := m.StatementByID("find")
	if !ok {
		t.Fatalf("statement %q not found", "find")
	}

	args := value.NewOrderedMap()
	args.Set("name", value.String("bob"))
	sql, argv, err := stmt.Build(mustDriver(t, driver.MySQL), value.Map(args))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(sql, "WHERE name = ?") {
		t.Fatalf("sql = %q", sql)
	}
	if len(argv) != 1 {
		t.Fatalf("argv = %v", argv)
	}
}

func TestParseXMLUnknownTagIsDiagnosed(t *testing.T) {
	xmlDoc := `
<mapper namespace="user">
  <select id="find">
    select 1
    <bogus/>
  </select>
</mapper>`
	_, err := ParseXML(NewMappers(), strings.NewReader(xmlDoc))
	if err == nil {
		t.Fatalf("expected an error for an unknown tag")
	}
}

func TestParseXMLContinueOutsideForeachIsRejected(t *testing.T) {
	xmlDoc := `
<mapper namespace="user">
  <select id="find">
    select 1
    <continue/>
  </select>
</mapper>`
	_, err := ParseXML(NewMappers(), strings.NewReader(xmlDoc))
	if err == nil {
		t.Fatalf("expected continue-outside-foreach to be rejected")
	}
}

func TestParseIndentIfWhereForeach(t *testing.T) {
	src := "select * from user\n" +
		"where:\n" +
		"  if name != null:\n" +
		"    and name = #{name}\n" +
		"  if ids != null:\n" +
		"    and id in (\n" +
		"    for id in ids:\n" +
		"      #{id}\n" +
		"    )\n"

	n, err := ParseIndent(src)
	if err != nil {
		t.Fatalf("ParseIndent: %v", err)
	}

	args := value.NewOrderedMap()
	args.Set("name", value.String("bob"))
	args.Set("ids", value.Sequence([]value.Value{value.Int64(1), value.Int64(2)}))

	ctx := node.NewGenContext(mustDriver(t, driver.MySQL), eval.NewScope(value.Map(args)))
	sql, _, err := n.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !strings.Contains(sql, "WHERE name = ?") {
		t.Fatalf("sql = %q", sql)
	}
	if !strings.Contains(sql, "id in (") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestParseIndentContinueOutsideForIsRejected(t *testing.T) {
	src := "select 1\n" +
		"continue:\n"
	if _, err := ParseIndent(src); err == nil {
		t.Fatalf("expected continue-outside-for to be rejected")
	}
}

func TestParseIndentBindThenUse(t *testing.T) {
	src := "bind limit=10:\n" +
		"select * from user limit #{limit}\n"
	n, err := ParseIndent(src)
	if err != nil {
		t.Fatalf("ParseIndent: %v", err)
	}
	ctx := node.NewGenContext(mustDriver(t, driver.MySQL), eval.NewScope(value.Map(value.NewOrderedMap())))
	sql, argv, err := n.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !strings.Contains(sql, "limit ?") {
		t.Fatalf("sql = %q", sql)
	}
	if len(argv) != 1 || argv[0].AsInt64() != 10 {
		t.Fatalf("argv = %v", argv)
	}
}

func TestParseIndentBacktickFragments(t *testing.T) {
	src := "`select * from biz_activity where delete_flag = 0`\n" +
		"if name != '':\n" +
		"  ` and name=#{name}`\n"

	n, err := ParseIndent(src)
	if err != nil {
		t.Fatalf("ParseIndent: %v", err)
	}

	args := value.NewOrderedMap()
	args.Set("name", value.String("a"))
	ctx := node.NewGenContext(mustDriver(t, driver.MySQL), eval.NewScope(value.Map(args)))
	sql, argv, err := n.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !strings.Contains(sql, "delete_flag = 0") || !strings.Contains(sql, "and name=?") {
		t.Fatalf("sql = %q", sql)
	}
	if len(argv) != 1 || argv[0].AsString() != "a" {
		t.Fatalf("argv = %v", argv)
	}

	args2 := value.NewOrderedMap()
	args2.Set("name", value.String(""))
	ctx2 := node.NewGenContext(mustDriver(t, driver.MySQL), eval.NewScope(value.Map(args2)))
	sql2, argv2, err := n.Accept(ctx2)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if strings.Contains(sql2, "name=") {
		t.Fatalf("sql2 = %q, want no name predicate", sql2)
	}
	if len(argv2) != 0 {
		t.Fatalf("argv2 = %v", argv2)
	}
}

func TestParseIndentBacktickLiteralEndingInColon(t *testing.T) {
	src := "`select 1:`\n"
	n, err := ParseIndent(src)
	if err != nil {
		t.Fatalf("ParseIndent: %v", err)
	}
	ctx := node.NewGenContext(mustDriver(t, driver.MySQL), eval.NewScope(value.Map(value.NewOrderedMap())))
	sql, _, err := n.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if sql != "select 1:" {
		t.Fatalf("sql = %q", sql)
	}
}
