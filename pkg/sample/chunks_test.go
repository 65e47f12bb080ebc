package sample

import (
	"testing"

	"github.com/lmb/btrfsdu/pkg/btrfsmeta"
)

// TestChunkMapBijection — spec §8 property 2: total chunk length equals
// the sum of chunk lengths, and every position in [0, total) is covered by
// exactly one chunk.
func TestChunkMapBijection(t *testing.T) {
	m := &chunkMap{
		chunks: []chunkInfo{
			{pos: 0, chunkOffset: 1000, length: 50},
			{pos: 50, chunkOffset: 2000, length: 30},
			{pos: 80, chunkOffset: 3000, length: 20},
		},
		total: 100,
	}

	var sum uint64
	for _, c := range m.chunks {
		sum += c.length
	}
	if sum != m.total {
		t.Fatalf("sum of chunk lengths = %d, want %d", sum, m.total)
	}

	for pos := uint64(0); pos < m.total; pos++ {
		c := m.at(pos)
		if pos < c.pos || pos >= c.pos+c.length {
			t.Fatalf("at(%d) returned chunk not covering it: %+v", pos, c)
		}
	}
}

func TestDecodeChunk(t *testing.T) {
	payload := make([]byte, btrfsmeta.ChunkHeaderSize)
	// Length at byte 0.
	payload[0] = 0x00
	payload[1] = 0x10 // length = 0x1000
	// Type at byte 24 (owner at 8, stripe_len at 16).
	payload[24] = 0x04 // BlockGroupMetadata

	h, err := btrfsmeta.DecodeChunkHeader(btrfsmeta.NewRawReader(payload))
	if err != nil {
		t.Fatalf("DecodeChunkHeader() = %v", err)
	}
	if h.Length != 0x1000 {
		t.Errorf("Length = %#x, want 0x1000", h.Length)
	}
	if h.Type != 0x04 {
		t.Errorf("Type = %#x, want 0x04", h.Type)
	}
}
