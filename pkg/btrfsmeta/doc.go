// Package btrfsmeta is the filesystem-metadata access layer: it issues the
// kernel's tree-search and reverse-mapping control operations, streams
// variable-length record batches out of a fixed-size kernel buffer, and
// decodes the on-wire record layout.
//
// Known inaccuracy: TREE_SEARCH is not a point-in-time snapshot of the
// metadata tree. A scan that spans a concurrent write may observe a key
// twice (if it moved forward past the resume point) or miss it (if it
// moved backward). Callers that need exact accounting should expect this
// and treat results as approximate under concurrent filesystem activity.
package btrfsmeta
