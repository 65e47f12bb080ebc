package btrfsmeta

// IoctlMagic is the magic byte (0x94) all btrfs control operations share.
const IoctlMagic = 0x94

// Control-operation numbers on IoctlMagic.
const (
	OpTreeSearchV2  = 17
	OpInoLookup     = 18
	OpInoPaths      = 35
	OpLogicalIno    = 36
	OpLogicalInoV2  = 59
)

// Tree object ids.
const (
	RootTreeObjectID       = 1
	ExtentTreeObjectID     = 2
	ChunkTreeObjectID      = 3
	DevTreeObjectID        = 4
	FSTreeObjectID         = 5
	FirstChunkTreeObjectID = 256
)

// Item key types used by this package.
const (
	ExtentItemKey   = 168
	MetadataItemKey = 169
	ChunkItemKey    = 228
	RootBackrefKey  = 144
)

// Block-group (chunk) type flags; BlockGroupTypeMask isolates the
// data/metadata/system bits from the RAID-profile bits.
const (
	BlockGroupData     = 1 << 0
	BlockGroupSystem   = 1 << 1
	BlockGroupMetadata = 1 << 2
	BlockGroupTypeMask = BlockGroupData | BlockGroupSystem | BlockGroupMetadata
)

// Extent item flags.
const (
	ExtentFlagData      = 1 << 0
	ExtentFlagTreeBlock = 1 << 1
)

// Inline extent-ref types.
const (
	ExtentDataRefKey  = 178
	SharedDataRefKey  = 182
	TreeBlockRefKey   = 176
	SharedBlockRefKey = 180
)

// LogicalInoIgnoreOffset asks LOGICAL_INO_V2 to ignore the intra-extent
// offset when reverse-mapping; sampling always passes false (spec §4.4).
const LogicalInoIgnoreOffset = 1 << 0

// searchKeyWire mirrors struct btrfs_ioctl_search_key (104 bytes, packed).
type searchKeyWire struct {
	TreeID      uint64
	MinObjectID uint64
	MaxObjectID uint64
	MinOffset   uint64
	MaxOffset   uint64
	MinTransID  uint64
	MaxTransID  uint64
	MinType     uint32
	MaxType     uint32
	NrItems     uint32
	_pad        uint32
	_unused     [4]uint64
}

// searchArgsV2Header mirrors the fixed part of btrfs_ioctl_search_args_v2
// (the kernel struct's trailing `buf` member is a flexible array, so the
// ioctl request-code size is computed from this header alone — the actual
// trailing scratch region is supplied separately via BufferedIoctl).
type searchArgsV2Header struct {
	Key     searchKeyWire
	BufSize uint64
}

// SearchHeader mirrors struct btrfs_ioctl_search_header: the fixed header
// that precedes every record payload a tree search returns.
type SearchHeader struct {
	TransID  uint64
	ObjectID uint64
	Offset   uint64
	Type     uint32
	Len      uint32
}

const searchHeaderSize = 32

func decodeSearchHeader(r *RawReader) (SearchHeader, error) {
	var h SearchHeader
	var err error
	if h.TransID, err = r.Uint64(); err != nil {
		return h, err
	}
	if h.ObjectID, err = r.Uint64(); err != nil {
		return h, err
	}
	if h.Offset, err = r.Uint64(); err != nil {
		return h, err
	}
	if h.Type, err = r.Uint32(); err != nil {
		return h, err
	}
	if h.Len, err = r.Uint32(); err != nil {
		return h, err
	}
	return h, nil
}

// Key returns the SearchKey this header's record sits at.
func (h SearchHeader) Key() SearchKey {
	return SearchKey{ObjectID: h.ObjectID, Type: uint8(h.Type), Offset: h.Offset}
}

// logicalInoArgsWire mirrors struct btrfs_ioctl_logical_ino_args, shared by
// ioctl 36 (LOGICAL_INO) and ioctl 59 (LOGICAL_INO_V2, which adds the
// IGNORE_OFFSET flag semantics on the same layout).
type logicalInoArgsWire struct {
	Logical  uint64
	Size     uint64
	Reserved [3]uint64
	Flags    uint64
	Inodes   uint64
}

// dataContainerHeader mirrors struct btrfs_data_container: a 16-byte header
// immediately followed by elem_cnt/3 (inum, offset, root) uint64 triples.
type dataContainerHeader struct {
	BytesLeft    uint32
	BytesMissing uint32
	ElemCnt      uint32
	ElemMissed   uint32
}

const dataContainerHeaderSize = 16

func decodeDataContainerHeader(r *RawReader) (dataContainerHeader, error) {
	var c dataContainerHeader
	var err error
	if c.BytesLeft, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.BytesMissing, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.ElemCnt, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.ElemMissed, err = r.Uint32(); err != nil {
		return c, err
	}
	return c, nil
}

// inoLookupArgsWire mirrors struct btrfs_ioctl_ino_lookup_args.
type inoLookupArgsWire struct {
	TreeID   uint64
	ObjectID uint64
	Name     [4080]byte
}

// ChunkHeader mirrors the fixed 48-byte prefix of struct btrfs_chunk (the
// stripe array that follows is never read here — sampling only needs
// Length and Type). Field order here matches the grounded decode used
// across the teacher's three independent tree-search copies
// (pkg/btdu/chunks.go, pkg/btrfs/subvol_ioctl.go, pkg/fragmap/ioctl.go):
// Length at byte 0, Type at byte 24.
type ChunkHeader struct {
	Length     uint64
	Owner      uint64
	StripeLen  uint64
	Type       uint64
	IOAlign    uint32
	IOWidth    uint32
	SectorSize uint32
	NumStripes uint16
	SubStripes uint16
}

const ChunkHeaderSize = 48

// DecodeChunkHeader decodes the fixed portion of a CHUNK_ITEM payload.
func DecodeChunkHeader(r *RawReader) (ChunkHeader, error) {
	var c ChunkHeader
	var err error
	if c.Length, err = r.Uint64(); err != nil {
		return c, err
	}
	if c.Owner, err = r.Uint64(); err != nil {
		return c, err
	}
	if c.StripeLen, err = r.Uint64(); err != nil {
		return c, err
	}
	if c.Type, err = r.Uint64(); err != nil {
		return c, err
	}
	if c.IOAlign, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.IOWidth, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.SectorSize, err = r.Uint32(); err != nil {
		return c, err
	}
	if c.NumStripes, err = r.Uint16(); err != nil {
		return c, err
	}
	if c.SubStripes, err = r.Uint16(); err != nil {
		return c, err
	}
	return c, nil
}

// ExtentItem mirrors struct btrfs_extent_item's fixed prefix, shared by
// EXTENT_ITEM and METADATA_ITEM records.
type ExtentItem struct {
	Refs       uint64
	Generation uint64
	Flags      uint64
}

const ExtentItemSize = 24

// DecodeExtentItem decodes the fixed header shared by EXTENT_ITEM and
// METADATA_ITEM payloads.
func DecodeExtentItem(r *RawReader) (ExtentItem, error) {
	var e ExtentItem
	var err error
	if e.Refs, err = r.Uint64(); err != nil {
		return e, err
	}
	if e.Generation, err = r.Uint64(); err != nil {
		return e, err
	}
	if e.Flags, err = r.Uint64(); err != nil {
		return e, err
	}
	return e, nil
}

// TreeBlockInfoSize is sizeof(struct btrfs_tree_block_info): a 17-byte key
// plus a 1-byte level, present only when ExtentFlagTreeBlock is set.
const TreeBlockInfoSize = 17 + 1

// ExtentDataRef mirrors struct btrfs_extent_data_ref.
type ExtentDataRef struct {
	Root     uint64
	ObjectID uint64
	Offset   uint64
	Count    uint32
}

// DecodeExtentDataRef decodes an EXTENT_DATA_REF_KEY inline ref's payload.
func DecodeExtentDataRef(r *RawReader) (ExtentDataRef, error) {
	var d ExtentDataRef
	var err error
	if d.Root, err = r.Uint64(); err != nil {
		return d, err
	}
	if d.ObjectID, err = r.Uint64(); err != nil {
		return d, err
	}
	if d.Offset, err = r.Uint64(); err != nil {
		return d, err
	}
	if d.Count, err = r.Uint32(); err != nil {
		return d, err
	}
	return d, nil
}

// SharedDataRefSize is sizeof(struct btrfs_shared_data_ref): a single
// uint32 count (the preceding 8-byte parent field is part of the inline
// ref, read separately — see pkg/sample's extent-accounting walker).
const SharedDataRefSize = 4

// ExtentInlineRefSize is sizeof(struct btrfs_extent_inline_ref): a 1-byte
// type tag followed by a uint64 offset. TREE_BLOCK_REF and
// SHARED_BLOCK_REF inline refs both have this fixed shape.
const ExtentInlineRefSize = 1 + 8

// ExtentInlineRef mirrors struct btrfs_extent_inline_ref.
type ExtentInlineRef struct {
	Type   uint8
	Offset uint64
}

// DecodeExtentInlineRef decodes one fixed-size inline ref tag+payload.
func DecodeExtentInlineRef(r *RawReader) (ExtentInlineRef, error) {
	var ref ExtentInlineRef
	var err error
	if ref.Type, err = r.Uint8(); err != nil {
		return ref, err
	}
	if ref.Offset, err = r.Uint64(); err != nil {
		return ref, err
	}
	return ref, nil
}

// rootRefHeader mirrors struct btrfs_root_ref's fixed prefix: dirid,
// sequence, then a uint16 name length, followed by name_len bytes of name.
type rootRefHeader struct {
	DirID    uint64
	Sequence uint64
	NameLen  uint16
}

const rootRefHeaderSize = 8 + 8 + 2

func decodeRootRefHeader(r *RawReader) (rootRefHeader, error) {
	var h rootRefHeader
	var err error
	if h.DirID, err = r.Uint64(); err != nil {
		return h, err
	}
	if h.Sequence, err = r.Uint64(); err != nil {
		return h, err
	}
	if h.NameLen, err = r.Uint16(); err != nil {
		return h, err
	}
	return h, nil
}

