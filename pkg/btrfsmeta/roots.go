package btrfsmeta

import "os"

// RootResolver memoizes subvolume id → path-component resolution. It is
// seeded with the FS_TREE root itself (id 5, the empty path), and resolves
// every other root on demand by walking ROOT_BACKREF records toward the
// top, recursing through parent subvolumes until it reaches one already in
// the cache.
type RootResolver struct {
	paths map[uint64][]string
}

// NewRootResolver returns a resolver seeded with the top-level subvolume.
func NewRootResolver() *RootResolver {
	return &RootResolver{
		paths: map[uint64][]string{
			FSTreeObjectID: nil,
		},
	}
}

// GetRoot returns the path components from the filesystem root down to
// subvolume rootID, resolving and caching as needed. An unresolvable root
// (no ROOT_BACKREF record reaches a known ancestor) is reported via
// UnresolvableRootError; callers sample this as best-effort and should
// treat it as recoverable.
func (r *RootResolver) GetRoot(f *os.File, rootID uint64) ([]string, error) {
	if p, ok := r.paths[rootID]; ok {
		return p, nil
	}

	parentID, name, err := findRootBackref(f, rootID)
	if err != nil {
		return nil, err
	}
	if parentID == 0 {
		return nil, &UnresolvableRootError{RootID: rootID}
	}

	parentPath, err := r.GetRoot(f, parentID)
	if err != nil {
		return nil, err
	}

	full := make([]string, 0, len(parentPath)+1)
	full = append(full, parentPath...)
	full = append(full, name)
	r.paths[rootID] = full
	return full, nil
}

// findRootBackref locates the ROOT_BACKREF record for rootID in the root
// tree and returns the parent subvolume id and the name this subvolume is
// mounted under within that parent. parentID is 0 if no backref exists.
func findRootBackref(f *os.File, rootID uint64) (parentID uint64, name string, err error) {
	rng := RangeObjectIDType(rootID, RootBackrefKey)
	err = TreeSearch(f, RootTreeObjectID, rng, func(rec Record) error {
		if parentID != 0 {
			return nil
		}
		rdr := NewRawReader(rec.Payload)
		hdr, derr := decodeRootRefHeader(rdr)
		if derr != nil {
			return derr
		}
		nameBytes, derr := rdr.Bytes(int(hdr.NameLen))
		if derr != nil {
			return derr
		}
		parentID = rec.Header.Offset
		name = string(nameBytes)
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return parentID, name, nil
}
