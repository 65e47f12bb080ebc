package btrfsmeta

import "fmt"

// MountOpenError wraps a failure to open the target mount point. Fatal:
// surfaced directly to the user.
type MountOpenError struct {
	Path string
	Err  error
}

func (e *MountOpenError) Error() string {
	return fmt.Sprintf("open mount %q: %v", e.Path, e.Err)
}

func (e *MountOpenError) Unwrap() error { return e.Err }

// SearchOpError wraps a failure of the TREE_SEARCH_V2 control operation.
// Fatal: aborts the current pass.
type SearchOpError struct {
	TreeID uint64
	Err    error
}

func (e *SearchOpError) Error() string {
	return fmt.Sprintf("tree search (tree=%d): %v", e.TreeID, e.Err)
}

func (e *SearchOpError) Unwrap() error { return e.Err }

// LogicalInoError wraps a failure of LOGICAL_INO_V2. Recovered per-sample:
// the caller records it in the ERROR subtree rather than aborting.
type LogicalInoError struct {
	Logical uint64
	Err     error
}

func (e *LogicalInoError) Error() string {
	return fmt.Sprintf("logical_ino(%d): %v", e.Logical, e.Err)
}

func (e *LogicalInoError) Unwrap() error { return e.Err }

// InoLookupError wraps a failure of INO_LOOKUP. Recovered per-sample.
type InoLookupError struct {
	Root, Inum uint64
	Err        error
}

func (e *InoLookupError) Error() string {
	return fmt.Sprintf("ino_lookup(root=%d, inum=%d): %v", e.Root, e.Inum, e.Err)
}

func (e *InoLookupError) Unwrap() error { return e.Err }

// UnresolvableRootError reports a subvolume id with no ROOT_BACKREF record.
// The caller may skip the sample that triggered it.
type UnresolvableRootError struct {
	RootID uint64
}

func (e *UnresolvableRootError) Error() string {
	return fmt.Sprintf("no root backref for subvolume id %d", e.RootID)
}

// UnknownInlineRefError reports an inline-ref tag the extent-accounting
// walker doesn't recognize. Non-fatal: parsing of the current record is
// abandoned and the scan continues with the next record.
type UnknownInlineRefError struct {
	Tag uint8
}

func (e *UnknownInlineRefError) Error() string {
	return fmt.Sprintf("unknown extent inline ref type %d", e.Tag)
}
