package idgen

import "testing"

func TestSnowflakeMonotonicAndUnique(t *testing.T) {
	gen, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}
	seen := make(map[int64]bool)
	var prev int64
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		if id <= prev {
			t.Fatalf("id %d is not greater than previous %d", id, prev)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		prev = id
	}
}

func TestSnowflakeRejectsOutOfRangeNode(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatalf("expected error for negative node id")
	}
	if _, err := NewSnowflake(maxNode + 1); err == nil {
		t.Fatalf("expected error for node id beyond range")
	}
}

func TestNewObjectIDIsUnique(t *testing.T) {
	a, err := NewObjectID()
	if err != nil {
		t.Fatalf("NewObjectID: %v", err)
	}
	b, err := NewObjectID()
	if err != nil {
		t.Fatalf("NewObjectID: %v", err)
	}
	if a == b {
		t.Fatalf("two consecutive object ids collided: %x", a)
	}
}
