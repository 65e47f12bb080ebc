package btrfsmeta

import "testing"

// TestPaginationS6 — spec §8 S6: a stubbed fetch returning 3 non-empty
// batches then an empty one must yield every record exactly once, in key
// order, and terminate.
func TestPaginationS6(t *testing.T) {
	batches := [][]Record{
		{
			{Header: SearchHeader{ObjectID: 1, Type: 1, Offset: 0}},
			{Header: SearchHeader{ObjectID: 1, Type: 1, Offset: 1}},
		},
		{
			{Header: SearchHeader{ObjectID: 1, Type: 1, Offset: 2}},
		},
		{
			{Header: SearchHeader{ObjectID: 2, Type: 0, Offset: 0}},
		},
	}
	calls := 0
	fetch := func(lo, hi SearchKey) ([]Record, error) {
		if calls >= len(batches) {
			return nil, nil
		}
		b := batches[calls]
		calls++
		return b, nil
	}

	var seen []SearchKey
	err := paginate(AllKeys, fetch, func(rec Record) error {
		seen = append(seen, rec.Header.Key())
		return nil
	})
	if err != nil {
		t.Fatalf("paginate() = %v", err)
	}
	if calls != len(batches)+1 {
		t.Fatalf("fetch called %d times, want %d (one trailing empty batch)", calls, len(batches)+1)
	}
	if len(seen) != 4 {
		t.Fatalf("saw %d records, want 4", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if !seen[i-1].Less(seen[i]) {
			t.Errorf("records out of order: %+v then %+v", seen[i-1], seen[i])
		}
	}
}

func TestPaginationResumesFromSuccessor(t *testing.T) {
	var requestedLo []SearchKey
	calls := 0
	fetch := func(lo, hi SearchKey) ([]Record, error) {
		requestedLo = append(requestedLo, lo)
		calls++
		if calls == 1 {
			return []Record{{Header: SearchHeader{ObjectID: 5, Type: 1, Offset: 9}}}, nil
		}
		return nil, nil
	}

	err := paginate(AllKeys, fetch, func(Record) error { return nil })
	if err != nil {
		t.Fatalf("paginate() = %v", err)
	}
	if len(requestedLo) != 2 {
		t.Fatalf("fetch called %d times, want 2", len(requestedLo))
	}
	want := SearchKey{ObjectID: 5, Type: 1, Offset: 10}
	if requestedLo[1] != want {
		t.Fatalf("second fetch lo = %+v, want %+v", requestedLo[1], want)
	}
}

func TestPaginationPropagatesCallbackError(t *testing.T) {
	fetch := func(lo, hi SearchKey) ([]Record, error) {
		return []Record{{Header: SearchHeader{ObjectID: 1}}}, nil
	}
	boom := ErrExhausted
	err := paginate(AllKeys, fetch, func(Record) error { return boom })
	if err != boom {
		t.Fatalf("paginate() = %v, want %v", err, boom)
	}
}
