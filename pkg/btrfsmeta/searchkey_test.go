package btrfsmeta

import "testing"

func TestSearchKeyNextIsStrictSuccessor(t *testing.T) {
	keys := []SearchKey{
		{ObjectID: 0, Type: 0, Offset: 0},
		{ObjectID: 5, Type: 168, Offset: 100},
		{ObjectID: 5, Type: 255, Offset: ^uint64(0)},
		{ObjectID: ^uint64(0) - 1, Type: 255, Offset: ^uint64(0)},
	}
	for _, k := range keys {
		next := k.Next()
		if !k.Less(next) {
			t.Errorf("Next(%+v) = %+v, not strictly greater", k, next)
		}
	}
}

func TestSearchKeyNextWraps(t *testing.T) {
	next := MaxSearchKey.Next()
	if next != MinSearchKey {
		t.Fatalf("Next(MaxSearchKey) = %+v, want MinSearchKey", next)
	}
	if !MaxSearchKey.atMax() {
		t.Fatalf("atMax(MaxSearchKey) = false, want true")
	}
}

func TestSearchKeyLessOrdering(t *testing.T) {
	a := SearchKey{ObjectID: 1, Type: 0, Offset: 0}
	b := SearchKey{ObjectID: 1, Type: 1, Offset: 0}
	c := SearchKey{ObjectID: 2, Type: 0, Offset: 0}
	if !a.Less(b) {
		t.Errorf("expected %+v < %+v", a, b)
	}
	if !b.Less(c) {
		t.Errorf("expected %+v < %+v", b, c)
	}
	if c.Less(a) {
		t.Errorf("expected %+v not < %+v", c, a)
	}
}

func TestRangeObjectIDType(t *testing.T) {
	rng := RangeObjectIDType(42, RootBackrefKey)
	if rng.Lo.ObjectID != 42 || rng.Hi.ObjectID != 42 {
		t.Fatalf("range object id not fixed: %+v", rng)
	}
	if rng.Lo.Type != RootBackrefKey || rng.Hi.Type != RootBackrefKey {
		t.Fatalf("range type not fixed: %+v", rng)
	}
	if rng.Lo.Offset != 0 || rng.Hi.Offset != ^uint64(0) {
		t.Fatalf("range offset not full span: %+v", rng)
	}
}
