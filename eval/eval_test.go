package eval

import (
	"testing"

	"github.com/sqlcraft/sqlcraft/value"
)

func evalSrc(t *testing.T, src string, scope *Scope) value.Value {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	v, err := Eval(expr, scope)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

func TestEvalNullEqualsNull(t *testing.T) {
	got := evalSrc(t, "null == null", NewScope(value.Null))
	if !got.AsBool() {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestEvalNullNotEqualsZero(t *testing.T) {
	got := evalSrc(t, "null == 0", NewScope(value.Null))
	if got.AsBool() {
		t.Fatalf("expected false, got %v", got)
	}
}

func TestEvalStringConcat(t *testing.T) {
	got := evalSrc(t, `"a" + "b"`, NewScope(value.Null))
	if got.AsString() != "ab" {
		t.Fatalf("expected \"ab\", got %v", got)
	}
}

func TestEvalDivByZero(t *testing.T) {
	got := evalSrc(t, "3 / 0", NewScope(value.Null))
	if !got.IsNull() {
		t.Fatalf("expected null, got %v", got)
	}
}

func TestEvalNullPlusOne(t *testing.T) {
	got := evalSrc(t, "1 + null", NewScope(value.Null))
	if got.AsInt64() != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestEvalPathMissingSegmentYieldsNull(t *testing.T) {
	root := value.NewOrderedMap()
	root.Set("user", value.Map(value.NewOrderedMap()))
	got := evalSrc(t, "user.name", NewScope(value.Map(root)))
	if !got.IsNull() {
		t.Fatalf("expected null, got %v", got)
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	got := evalSrc(t, "false && (1/0 == 1)", NewScope(value.Null))
	if got.AsBool() {
		t.Fatalf("expected false without evaluating rhs faulting")
	}
}

func TestEvalLocalBindingShadowsArg(t *testing.T) {
	root := value.NewOrderedMap()
	root.Set("x", value.Int64(1))
	scope := NewScope(value.Map(root))
	scope.Bind("x", value.Int64(99))
	got := evalSrc(t, "x", scope)
	if got.AsInt64() != 99 {
		t.Fatalf("expected local binding to shadow arg, got %v", got)
	}
}

func TestEvalSequenceSQLMethod(t *testing.T) {
	root := value.NewOrderedMap()
	root.Set("ids", value.Sequence([]value.Value{value.Int64(1), value.Int64(2), value.Int64(3)}))
	got := evalSrc(t, "ids.sql()", NewScope(value.Map(root)))
	if got.AsString() != "(1,2,3)" {
		t.Fatalf("expected (1,2,3), got %q", got.AsString())
	}
}

func TestEvalIsEmptyMethod(t *testing.T) {
	root := value.NewOrderedMap()
	root.Set("ids", value.Sequence(nil))
	got := evalSrc(t, "ids.is_empty()", NewScope(value.Map(root)))
	if !got.AsBool() {
		t.Fatalf("expected true")
	}
}

func TestParseUnrecognisedMethodIsDiagnostic(t *testing.T) {
	_, err := Parse("x.bogus()")
	if err == nil {
		t.Fatalf("expected a parse error for an unrecognised method")
	}
}

func TestParseColumnOffsetOnBadInput(t *testing.T) {
	_, err := Parse("1 +")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Column < 0 {
		t.Fatalf("expected a non-negative column offset")
	}
}
