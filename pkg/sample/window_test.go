package sample

import "testing"

func snapshotWithTotal(total uint64) *Snapshot {
	s := NewSnapshot()
	s.TotalSamples = total
	return s
}

// TestWindowEvictionS5 — spec §8 S5: K=2, three adds; after the third the
// running aggregate reflects only the last two.
func TestWindowEvictionS5(t *testing.T) {
	w := NewWindow(2)
	w.Add(snapshotWithTotal(10))
	w.Add(snapshotWithTotal(20))
	cur := w.Add(snapshotWithTotal(30))

	if cur.TotalSamples != 50 {
		t.Fatalf("cur.TotalSamples = %d, want 50 (20+30)", cur.TotalSamples)
	}
}

// TestWindowInvariant — spec §8 property 7: after K+m adds, cur equals the
// sum of exactly the last min(K, K+m) samples.
func TestWindowInvariant(t *testing.T) {
	const k = 3
	w := NewWindow(k)
	totals := []uint64{1, 2, 3, 4, 5, 6, 7}

	var cur *Snapshot
	for _, tot := range totals {
		cur = w.Add(snapshotWithTotal(tot))
	}

	var want uint64
	for _, tot := range totals[len(totals)-k:] {
		want += tot
	}
	if cur.TotalSamples != want {
		t.Fatalf("cur.TotalSamples = %d, want %d (sum of last %d)", cur.TotalSamples, want, k)
	}
}

func TestWindowBelowCapacity(t *testing.T) {
	w := NewWindow(5)
	cur := w.Add(snapshotWithTotal(7))
	if cur.TotalSamples != 7 {
		t.Fatalf("cur.TotalSamples = %d, want 7", cur.TotalSamples)
	}
}

func TestWindowResolutionSharpens(t *testing.T) {
	w := NewWindow(10)
	s := NewSnapshot()
	s.BytesPerSample = 100
	// Add returns the window's own aggregate, so record its resolution
	// before the next Add updates it in place.
	first := w.Add(s).BytesPerSample

	s2 := NewSnapshot()
	s2.BytesPerSample = 100
	second := w.Add(s2).BytesPerSample

	if second >= first {
		t.Fatalf("expected resolution to sharpen as samples accumulate: first=%v second=%v", first, second)
	}
}
