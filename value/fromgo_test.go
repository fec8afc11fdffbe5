package value

import "testing"

type fromGoAddress struct {
	City string `param:"city"`
}

type fromGoUser struct {
	fromGoAddress
	Name string `param:"name"`
	Age  int
}

func TestFromGoStructUsesTagThenName(t *testing.T) {
	v, err := FromGo(fromGoUser{fromGoAddress: fromGoAddress{City: "nyc"}, Name: "ada", Age: 30})
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	if v.Kind() != KindMap {
		t.Fatalf("expected KindMap, got %s", v.Kind())
	}
	name, ok := v.AsMap().Get("name")
	if !ok || name.AsString() != "ada" {
		t.Fatalf("expected name=ada, got %+v ok=%v", name, ok)
	}
	age, ok := v.AsMap().Get("Age")
	if !ok || age.AsInt64() != 30 {
		t.Fatalf("expected Age=30, got %+v ok=%v", age, ok)
	}
	city, ok := v.AsMap().Get("city")
	if !ok || city.AsString() != "nyc" {
		t.Fatalf("expected embedded city=nyc, got %+v ok=%v", city, ok)
	}
}

func TestFromGoMapStringKey(t *testing.T) {
	v, err := FromGo(map[string]any{"id": 7, "name": "bob"})
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	id, _ := v.AsMap().Get("id")
	if id.AsInt64() != 7 {
		t.Fatalf("got %+v", id)
	}
}

func TestFromGoSlice(t *testing.T) {
	v, err := FromGo([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	if v.Kind() != KindSequence || len(v.AsSequence()) != 3 {
		t.Fatalf("got %+v", v)
	}
}

func TestFromGoNilAndPointers(t *testing.T) {
	v, err := FromGo(nil)
	if err != nil || !v.IsNull() {
		t.Fatalf("expected Null, got %+v err=%v", v, err)
	}

	var p *int
	v, err = FromGo(p)
	if err != nil || !v.IsNull() {
		t.Fatalf("expected Null for nil pointer, got %+v err=%v", v, err)
	}

	n := 5
	v, err = FromGo(&n)
	if err != nil || v.AsInt64() != 5 {
		t.Fatalf("expected 5, got %+v err=%v", v, err)
	}
}

func TestFromGoUnsupportedKind(t *testing.T) {
	ch := make(chan int)
	if _, err := FromGo(ch); err == nil {
		t.Fatalf("expected error for channel value")
	}
}
