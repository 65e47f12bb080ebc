package btrfsmeta

import (
	"bytes"
	"os"
	"unsafe"

	"github.com/dennwc/ioctl"
)

var ioctlInoLookup = ioctl.IOWR(IoctlMagic, OpInoLookup, unsafe.Sizeof(inoLookupArgsWire{}))

// InoLookup resolves (subvolumeRootID, inum) to the path component chain
// from the subvolume root to the inode's parent directory — a
// NUL-terminated string, not including the file name itself (spec §4.5).
// A missing inode is common during sampling and is surfaced as an error
// for the caller to record in the ERROR subtree, not treated specially
// here.
func InoLookup(f *os.File, subvolumeRootID, inum uint64) (string, error) {
	var args inoLookupArgsWire
	args.TreeID = subvolumeRootID
	args.ObjectID = inum

	if err := ioctl.Do(f, ioctlInoLookup, &args); err != nil {
		return "", &InoLookupError{Root: subvolumeRootID, Inum: inum, Err: err}
	}

	n := bytes.IndexByte(args.Name[:], 0)
	if n < 0 {
		n = len(args.Name)
	}
	return string(args.Name[:n]), nil
}
