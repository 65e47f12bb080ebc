package btrfsmeta

import (
	"os"
	"unsafe"

	"github.com/dennwc/ioctl"
)

// searchTrailingSize is the trailing scratch region TreeSearch allocates
// for each batch of records, per spec §4.3.
const searchTrailingSize = 16 * 1024

// The ioctl request code is built from the fixed header alone — the
// kernel's btrfs_ioctl_search_args_v2 struct ends in a flexible array
// member, which contributes nothing to sizeof() on the kernel side either.
var ioctlTreeSearchV2 = ioctl.IOWR(IoctlMagic, OpTreeSearchV2, unsafe.Sizeof(searchArgsV2Header{}))

// Record is one (header, payload) pair a tree search yields.
type Record struct {
	Header  SearchHeader
	Payload []byte
}

// TreeSearch streams every record in the metadata tree treeID whose key
// lies within rng, in key order, invoking fn once per record. It resumes
// automatically using the "next key after the last returned key" rule
// until the kernel reports zero records for a batch (spec §4.3).
func TreeSearch(f *os.File, treeID uint64, rng SearchRange, fn func(Record) error) error {
	buf := &BufferedIoctl[searchArgsV2Header, [searchTrailingSize]byte]{}
	buf.Hdr.Key.TreeID = treeID
	buf.Hdr.Key.MinTransID = 0
	buf.Hdr.Key.MaxTransID = ^uint64(0)
	buf.Hdr.BufSize = uint64(len(buf.Trailing))

	fetch := func(lo, hi SearchKey) ([]Record, error) {
		buf.Hdr.Key.MinObjectID = lo.ObjectID
		buf.Hdr.Key.MinType = uint32(lo.Type)
		buf.Hdr.Key.MinOffset = lo.Offset
		buf.Hdr.Key.MaxObjectID = hi.ObjectID
		buf.Hdr.Key.MaxType = uint32(hi.Type)
		buf.Hdr.Key.MaxOffset = hi.Offset
		buf.Hdr.Key.NrItems = ^uint32(0)

		if err := ioctl.Do(f, ioctlTreeSearchV2, buf.HeaderPtr()); err != nil {
			return nil, &SearchOpError{TreeID: treeID, Err: err}
		}
		if buf.Hdr.Key.NrItems == 0 {
			return nil, nil
		}

		r := NewRawReader(buf.TrailingSlice())
		records := make([]Record, 0, buf.Hdr.Key.NrItems)
		for i := uint32(0); i < buf.Hdr.Key.NrItems; i++ {
			hdr, err := decodeSearchHeader(r)
			if err != nil {
				return nil, &SearchOpError{TreeID: treeID, Err: err}
			}
			payload, err := r.Bytes(int(hdr.Len))
			if err != nil {
				return nil, &SearchOpError{TreeID: treeID, Err: err}
			}
			records = append(records, Record{Header: hdr, Payload: payload})
		}
		return records, nil
	}

	return paginate(rng, fetch, fn)
}

// paginate drives the generic "fetch a batch, invoke fn on each record,
// resume from the successor of the last key" loop TreeSearch implements
// over the kernel ioctl. It is factored out so the resume logic can be
// exercised against a stubbed fetch function without a real btrfs mount
// (spec §8 S6).
func paginate(rng SearchRange, fetch func(lo, hi SearchKey) ([]Record, error), fn func(Record) error) error {
	lo := rng.Lo
	for {
		records, err := fetch(lo, rng.Hi)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		var last SearchHeader
		for _, rec := range records {
			if err := fn(rec); err != nil {
				return err
			}
			last = rec.Header
		}

		lastKey := last.Key()
		if lastKey.atMax() {
			// spec §9 Open Question 2: detect the wrap instead of looping
			// forever re-requesting the same terminal key.
			return nil
		}
		lo = lastKey.Next()
	}
}
