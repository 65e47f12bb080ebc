package btrfsmeta

import (
	"os"
	"unsafe"

	"github.com/dennwc/ioctl"
)

// logicalInoTrailingSize is the ≥4 KiB trailing container spec §4.4 asks
// for; one page comfortably holds the reflink fan-out any single physical
// address is realistically expected to have.
const logicalInoTrailingSize = 4096

var ioctlLogicalInoV2 = ioctl.IOWR(IoctlMagic, OpLogicalInoV2, unsafe.Sizeof(logicalInoArgsWire{}))

// LogicalInoItem is one (inode, offset, subvolume root) triple the kernel
// returns for a physical address.
type LogicalInoItem struct {
	Inum   uint64
	Offset uint64
	Root   uint64
}

// LogicalIno resolves a physical (logical) address to the inodes that
// reference it via LOGICAL_INO_V2. An empty result is not an error — it
// means the address has no owning inode (free space or pure metadata).
// Sampling always passes ignoreOffset=false (spec §4.4).
func LogicalIno(f *os.File, logical uint64, ignoreOffset bool) ([]LogicalInoItem, error) {
	buf := &BufferedIoctl[logicalInoArgsWire, [logicalInoTrailingSize]byte]{}
	var flags uint64
	if ignoreOffset {
		flags = LogicalInoIgnoreOffset
	}
	buf.Hdr = logicalInoArgsWire{
		Logical: logical,
		Size:    uint64(len(buf.Trailing)),
		Flags:   flags,
		Inodes:  uint64(buf.TrailingAddr()),
	}

	if err := ioctl.Do(f, ioctlLogicalInoV2, buf.HeaderPtr()); err != nil {
		return nil, &LogicalInoError{Logical: logical, Err: err}
	}

	r := NewRawReader(buf.TrailingSlice())
	container, err := decodeDataContainerHeader(r)
	if err != nil {
		return nil, &LogicalInoError{Logical: logical, Err: err}
	}
	if container.ElemCnt == 0 {
		return nil, nil
	}

	items := make([]LogicalInoItem, 0, container.ElemCnt/3)
	for i := uint32(0); i+3 <= container.ElemCnt; i += 3 {
		inum, err := r.Uint64()
		if err != nil {
			break
		}
		offset, err := r.Uint64()
		if err != nil {
			break
		}
		root, err := r.Uint64()
		if err != nil {
			break
		}
		items = append(items, LogicalInoItem{Inum: inum, Offset: offset, Root: root})
	}
	return items, nil
}
