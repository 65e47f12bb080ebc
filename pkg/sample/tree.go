// Package sample implements the Monte Carlo disk-usage estimator: sampling
// random physical addresses, classifying and attributing each to a path,
// and aggregating the results into a path-keyed tree of sample counts.
package sample

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Tree is a path-keyed prefix trie of sample counts. Total is the number of
// samples that landed anywhere under this node (including itself); Children
// holds one subtree per path component observed at this level.
type Tree struct {
	Total    uint64
	Children map[string]*Tree
}

// NewTree returns an empty sample tree.
func NewTree() *Tree {
	return &Tree{Children: make(map[string]*Tree)}
}

func (t *Tree) childOrCreate(name string) *Tree {
	if t.Children == nil {
		t.Children = make(map[string]*Tree)
	}
	c, ok := t.Children[name]
	if !ok {
		c = NewTree()
		t.Children[name] = c
	}
	return c
}

// AddSample records one sample at path, incrementing Total along every
// node from the root down to the leaf path names.
func (t *Tree) AddSample(path []string) {
	t.AddSamples(path, 1)
}

// AddSamples records n samples at path in one step.
func (t *Tree) AddSamples(path []string, n uint64) {
	t.Total += n
	if len(path) == 0 {
		return
	}
	t.childOrCreate(path[0]).AddSamples(path[1:], n)
}

// Add merges other into t, summing totals node by node.
func (t *Tree) Add(other *Tree) {
	if other == nil {
		return
	}
	t.Total += other.Total
	for k, v := range other.Children {
		t.childOrCreate(k).Add(v)
	}
}

// Sub removes other's counts from t, node by node. A node whose total
// drops to zero has its children pruned entirely, matching the reference
// implementation's eviction behavior for the sliding window (spec §4.6).
func (t *Tree) Sub(other *Tree) {
	if other == nil {
		return
	}
	t.Total -= other.Total
	if t.Total == 0 {
		t.Children = make(map[string]*Tree)
		return
	}
	for k, v := range other.Children {
		if c, ok := t.Children[k]; ok {
			c.Sub(v)
		}
	}
}

// Print writes the tree as an indented, depth-first listing: each line is
// the path, the raw sample count, the percentage of totalSamples it
// represents, and the estimated disk usage at bytesPerSample resolution.
// Children are visited in descending-total order. A node is skipped, along
// with its entire subtree, when minFraction is non-nil and its disk
// fraction falls below it.
func (t *Tree) Print(w io.Writer, totalSamples uint64, bytesPerSample float64, minFraction *float64) error {
	return t.printNode(w, totalSamples, bytesPerSample, minFraction, "", 0)
}

func (t *Tree) printNode(w io.Writer, totalSamples uint64, bytesPerSample float64, minFraction *float64, name string, depth int) error {
	diskFraction := float64(t.Total) / float64(totalSamples)
	if minFraction != nil && diskFraction < *minFraction {
		return nil
	}
	diskBytes := uint64(float64(t.Total)*bytesPerSample + 0.5)

	path := strings.Repeat(" ", depth) + "/" + name
	if _, err := fmt.Fprintf(w, "%-60s %8d %4.1f%% %16s\n", path, t.Total, diskFraction*100, humanize.IBytes(diskBytes)); err != nil {
		return err
	}

	names := make([]string, 0, len(t.Children))
	for k := range t.Children {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return t.Children[names[i]].Total > t.Children[names[j]].Total
	})
	for _, k := range names {
		if err := t.Children[k].printNode(w, totalSamples, bytesPerSample, minFraction, k, depth+1); err != nil {
			return err
		}
	}
	return nil
}
