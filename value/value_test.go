package value

import "testing"

func TestOpAddStringConcat(t *testing.T) {
	got := String("a").OpAdd(String("b"))
	if got.Kind() != KindString || got.AsString() != "ab" {
		t.Fatalf("expected \"ab\", got %v", got)
	}
}

func TestOpAddNullActsAsZero(t *testing.T) {
	got := Int64(1).OpAdd(Null)
	if got.Kind() != KindInt64 || got.AsInt64() != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestOpDivByZeroReturnsNull(t *testing.T) {
	got := Int64(3).OpDiv(Int64(0))
	if !got.IsNull() {
		t.Fatalf("expected null, got %v", got)
	}
}

func TestEqualNullNull(t *testing.T) {
	if !Null.Equal(Null) {
		t.Fatalf("expected null == null")
	}
}

func TestEqualNullZero(t *testing.T) {
	if Null.Equal(Int64(0)) {
		t.Fatalf("expected null != 0")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{Bool(false), false},
		{Int64(0), false},
		{Float64(0), false},
		{String(""), false},
		{String("x"), true},
		{Int64(1), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestMixedIntUintWidening(t *testing.T) {
	got := Int64(1).OpAdd(UInt64(2))
	if got.Kind() != KindInt64 || got.AsInt64() != 3 {
		t.Fatalf("expected 3, got %v", got)
	}

	huge := UInt64(1 << 63)
	got = Int64(1).OpAdd(huge)
	if got.Kind() != KindFloat64 {
		t.Fatalf("expected widen to float64 for overflow-prone uint64, got %v", got.Kind())
	}
}

func TestSQLLiteralSequence(t *testing.T) {
	seq := Sequence([]Value{Int64(1), Int64(2), Int64(3)})
	if got := seq.SQLLiteral(); got != "(1,2,3)" {
		t.Fatalf("expected (1,2,3), got %q", got)
	}
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int64(2))
	m.Set("a", Int64(1))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
}

func TestCompareNullLessThanAnyNumber(t *testing.T) {
	if !Null.OpLt(Int64(0)).AsBool() {
		t.Fatalf("expected null < 0")
	}
	if !Null.OpLt(Int64(-5)).AsBool() {
		t.Fatalf("expected null < -5")
	}
}
