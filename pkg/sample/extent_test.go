package sample

import (
	"encoding/binary"
	"testing"

	"github.com/lmb/btrfsdu/pkg/btrfsmeta"
)

func appendU64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

// extentItemPayload builds a DATA EXTENT_ITEM payload with the given
// EXTENT_DATA_REF_KEY entries (root, objectid) inline.
func extentItemPayload(refs ...[2]uint64) []byte {
	var b []byte
	b = appendU64(b, uint64(len(refs))) // Refs
	b = appendU64(b, 1)                 // Generation
	b = appendU64(b, btrfsmeta.ExtentFlagData)
	for _, ref := range refs {
		b = append(b, btrfsmeta.ExtentDataRefKey)
		b = appendU64(b, ref[0]) // root
		b = appendU64(b, ref[1]) // objectid
		b = appendU64(b, 0)      // offset
		b = appendU32(b, 1)      // count
	}
	return b
}

func TestAccountExtentItemCreditsFirstDataRefOnly(t *testing.T) {
	usage := make(extentUsage)
	rec := btrfsmeta.Record{
		Header:  btrfsmeta.SearchHeader{Offset: 4096},
		Payload: extentItemPayload([2]uint64{256, 10}, [2]uint64{257, 10}),
	}

	accountExtentItem(usage, rec, nil)

	if got := usage[rootInode{Root: 256, Inum: 10}]; got != 4096 {
		t.Errorf("usage[256,10] = %d, want 4096", got)
	}
	if got := usage[rootInode{Root: 257, Inum: 10}]; got != 0 {
		t.Errorf("usage[257,10] = %d, want 0 (second DATA_REF not credited)", got)
	}
}

func TestAccountExtentItemSkipsNonData(t *testing.T) {
	usage := make(extentUsage)
	var payload []byte
	payload = appendU64(payload, 1) // Refs
	payload = appendU64(payload, 1) // Generation
	payload = appendU64(payload, 0) // Flags: neither DATA nor TREE_BLOCK

	rec := btrfsmeta.Record{Header: btrfsmeta.SearchHeader{Offset: 4096}, Payload: payload}
	accountExtentItem(usage, rec, nil)

	if len(usage) != 0 {
		t.Errorf("expected no usage recorded for non-DATA extent, got %v", usage)
	}
}

func TestResolveExtentUsagePostPass(t *testing.T) {
	usage := extentUsage{
		{Root: 256, Inum: 10}: 4096,
		{Root: btrfsmeta.RootTreeObjectID, Inum: 7}: 999, // free space cache
	}
	kernel := &fakeKernel{
		inoLookup: func(root, inum uint64) (string, error) { return "file.bin", nil },
		getRoot:   func(rootID uint64) ([]string, error) { return []string{"sub"}, nil },
	}

	tree := resolveExtentUsage(kernel, usage, nil)

	if tree.Total != 4096 {
		t.Fatalf("tree.Total = %d, want 4096 (free space cache entry dropped)", tree.Total)
	}
	n := treeAt(tree, "sub", "file.bin")
	if n == nil || n.Total != 4096 {
		t.Fatalf("sub/file.bin = %v, want 4096", n)
	}
}

func TestResolveExtentUsageDropsUnresolvable(t *testing.T) {
	usage := extentUsage{{Root: 256, Inum: 10}: 4096}
	kernel := &fakeKernel{
		inoLookup: func(root, inum uint64) (string, error) { return "", errExtentTest },
		getRoot:   func(rootID uint64) ([]string, error) { return []string{"sub"}, nil },
	}

	tree := resolveExtentUsage(kernel, usage, nil)
	if tree.Total != 0 {
		t.Fatalf("tree.Total = %d, want 0 (unresolvable inode dropped)", tree.Total)
	}
}

func TestAccountMetadataItemRecognizedNotAttributed(t *testing.T) {
	var payload []byte
	payload = appendU64(payload, 1) // Refs
	payload = appendU64(payload, 1) // Generation
	payload = appendU64(payload, 0) // Flags
	payload = append(payload, btrfsmeta.TreeBlockRefKey)
	payload = appendU64(payload, 256) // root id, opaque to this mode

	rec := btrfsmeta.Record{Header: btrfsmeta.SearchHeader{Offset: 16384, Type: btrfsmeta.MetadataItemKey}, Payload: payload}
	// accountMetadataItem never writes to any usage map; it only needs to
	// not panic and to stop cleanly at end of payload.
	accountMetadataItem(rec, nil)
}

type extentTestError string

func (e extentTestError) Error() string { return string(e) }

const errExtentTest = extentTestError("boom")
