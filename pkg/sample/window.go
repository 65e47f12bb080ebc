package sample

// Snapshot is one completed sampling pass: the samples taken, the disk
// resolution each sample represented, and the tree they were attributed
// into.
type Snapshot struct {
	TotalSamples   uint64
	BytesPerSample float64
	Tree           *Tree
}

// NewSnapshot returns an empty snapshot ready to accumulate samples into.
func NewSnapshot() *Snapshot {
	return &Snapshot{Tree: NewTree()}
}

func (s *Snapshot) add(other *Snapshot) {
	s.TotalSamples += other.TotalSamples
	s.Tree.Add(other.Tree)
}

func (s *Snapshot) sub(other *Snapshot) {
	s.TotalSamples -= other.TotalSamples
	s.Tree.Sub(other.Tree)
}

// Window is a fixed-capacity sliding window over the most recent
// snapshots, maintaining a running aggregate without rescanning evicted
// samples (spec §4.6). bytes_per_sample resolution sharpens as more
// distinct snapshots accumulate into the window, per the
// sum/n² formula below.
type Window struct {
	capacity          int
	bytesPerSampleSum float64
	cur               Snapshot
	queue             []*Snapshot
}

// NewWindow returns an empty window holding up to capacity snapshots.
func NewWindow(capacity int) *Window {
	return &Window{
		capacity: capacity,
		cur:      Snapshot{Tree: NewTree()},
	}
}

// Add folds snapshot into the window, evicting the oldest snapshot once
// capacity is exceeded, and returns the current running aggregate. The
// returned Snapshot is owned by the window; callers must not mutate it.
func (w *Window) Add(snapshot *Snapshot) *Snapshot {
	w.bytesPerSampleSum += snapshot.BytesPerSample
	w.cur.add(snapshot)
	w.queue = append(w.queue, snapshot)

	if len(w.queue) > w.capacity {
		old := w.queue[0]
		w.queue = w.queue[1:]
		w.bytesPerSampleSum -= old.BytesPerSample
		w.cur.sub(old)
	}

	n := float64(len(w.queue))
	if n > 0 {
		w.cur.BytesPerSample = w.bytesPerSampleSum / (n * n)
	} else {
		w.cur.BytesPerSample = 0
	}
	return &w.cur
}
