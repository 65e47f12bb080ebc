package btrfsmeta

// SearchKey is the (objectid, type, offset) triple that orders every record
// in a btrfs metadata tree. Keys compare lexicographically on
// (ObjectID, Type, Offset).
type SearchKey struct {
	ObjectID uint64
	Type     uint8
	Offset   uint64
}

// MinSearchKey and MaxSearchKey bound the full key space.
var (
	MinSearchKey = SearchKey{ObjectID: 0, Type: 0, Offset: 0}
	MaxSearchKey = SearchKey{ObjectID: ^uint64(0), Type: ^uint8(0), Offset: ^uint64(0)}
)

// Less reports whether k sorts strictly before other.
func (k SearchKey) Less(other SearchKey) bool {
	if k.ObjectID != other.ObjectID {
		return k.ObjectID < other.ObjectID
	}
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return k.Offset < other.Offset
}

// Next returns the immediate successor of k: Offset increments, carrying
// into Type and then ObjectID. Next(MaxSearchKey) wraps back to
// MinSearchKey — callers scanning the whole key space must detect this
// and stop rather than loop forever; see SearchKey.atMax.
func (k SearchKey) Next() SearchKey {
	offset := k.Offset + 1
	carry1 := offset == 0
	typ := k.Type
	if carry1 {
		typ++
	}
	carry2 := carry1 && typ == 0
	objectID := k.ObjectID
	if carry2 {
		objectID++
	}
	return SearchKey{ObjectID: objectID, Type: typ, Offset: offset}
}

// atMax reports whether k is the maximum representable key, i.e. whether
// Next(k) would wrap.
func (k SearchKey) atMax() bool {
	return k == MaxSearchKey
}

// SearchRange is an inclusive [Lo, Hi] range of SearchKeys.
type SearchRange struct {
	Lo, Hi SearchKey
}

// AllKeys spans the entire key space.
var AllKeys = SearchRange{Lo: MinSearchKey, Hi: MaxSearchKey}

// RangeObjectID fixes the object id and spans every type/offset.
func RangeObjectID(objectID uint64) SearchRange {
	return SearchRange{
		Lo: SearchKey{ObjectID: objectID, Type: 0, Offset: 0},
		Hi: SearchKey{ObjectID: objectID, Type: ^uint8(0), Offset: ^uint64(0)},
	}
}

// RangeObjectIDType fixes the object id and type and spans every offset.
func RangeObjectIDType(objectID uint64, typ uint8) SearchRange {
	return SearchRange{
		Lo: SearchKey{ObjectID: objectID, Type: typ, Offset: 0},
		Hi: SearchKey{ObjectID: objectID, Type: typ, Offset: ^uint64(0)},
	}
}
