package sample

import (
	"os"
	"sort"

	"github.com/lmb/btrfsdu/pkg/btrfsmeta"
)

// chunkInfo is one allocated chunk, positioned within the virtual,
// contiguous sample space every chunk is laid end to end into: pos is the
// cumulative byte offset of this chunk's first byte in that space.
type chunkInfo struct {
	pos         uint64
	chunkOffset uint64
	length      uint64
	typeFlags   uint64
}

// chunkMap is the sorted-by-pos list of allocated chunks, used to map a
// uniformly sampled position in [0, total) back to a physical address.
type chunkMap struct {
	chunks []chunkInfo
	total  uint64
}

// enumerateChunks walks the chunk tree once via TreeSearch and lays every
// CHUNK_ITEM record end to end into a single virtual address space, the
// domain the Monte Carlo sampler draws uniform positions from (spec §4.6).
func enumerateChunks(f *os.File) (*chunkMap, error) {
	var chunks []chunkInfo
	var total uint64

	err := btrfsmeta.TreeSearch(f, btrfsmeta.ChunkTreeObjectID, btrfsmeta.AllKeys, func(rec btrfsmeta.Record) error {
		if rec.Header.Type != btrfsmeta.ChunkItemKey {
			return nil
		}
		hdr, err := btrfsmeta.DecodeChunkHeader(btrfsmeta.NewRawReader(rec.Payload))
		if err != nil {
			return nil
		}
		chunks = append(chunks, chunkInfo{
			pos:         total,
			chunkOffset: rec.Header.Offset,
			length:      hdr.Length,
			typeFlags:   hdr.Type,
		})
		total += hdr.Length
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &chunkMap{chunks: chunks, total: total}, nil
}

// at returns the chunk whose span in the virtual address space contains
// pos, which must satisfy 0 <= pos < m.total.
func (m *chunkMap) at(pos uint64) chunkInfo {
	i := sort.Search(len(m.chunks), func(i int) bool {
		return m.chunks[i].pos+m.chunks[i].length > pos
	})
	return m.chunks[i]
}
