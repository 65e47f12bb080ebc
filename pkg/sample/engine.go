package sample

import (
	"math/rand"
	"os"
	"time"

	"github.com/lmb/btrfsdu/pkg/btrfsmeta"
)

func randSeed() int64 {
	return time.Now().UnixNano()
}

// kernelOps is the subset of filesystem-metadata operations one sampling
// pass needs. It exists so tests can drive Engine against a stubbed kernel
// oracle instead of a real btrfs mount.
type kernelOps interface {
	LogicalIno(logical uint64, ignoreOffset bool) ([]btrfsmeta.LogicalInoItem, error)
	InoLookup(root, inum uint64) (string, error)
	GetRoot(rootID uint64) ([]string, error)
}

// inoLookupKey is the memoization key for fileKernelOps' InoLookup cache.
type inoLookupKey struct {
	Root, Inum uint64
}

type fileKernelOps struct {
	f         *os.File
	roots     *btrfsmeta.RootResolver
	inoLookup map[inoLookupKey]string
}

func (k *fileKernelOps) LogicalIno(logical uint64, ignoreOffset bool) ([]btrfsmeta.LogicalInoItem, error) {
	return btrfsmeta.LogicalIno(k.f, logical, ignoreOffset)
}

// InoLookup consults the (root,inum)->path cache before falling back to the
// INO_LOOKUP ioctl; the cache grows monotonically over a run, bounded by
// the distinct inodes actually sampled (spec §4.7, §5).
func (k *fileKernelOps) InoLookup(root, inum uint64) (string, error) {
	key := inoLookupKey{Root: root, Inum: inum}
	if path, ok := k.inoLookup[key]; ok {
		return path, nil
	}
	path, err := btrfsmeta.InoLookup(k.f, root, inum)
	if err != nil {
		return "", err
	}
	k.inoLookup[key] = path
	return path, nil
}

func (k *fileKernelOps) GetRoot(rootID uint64) ([]string, error) {
	return k.roots.GetRoot(k.f, rootID)
}

// Engine runs repeated Monte Carlo sampling passes over a mounted
// filesystem's allocated chunk space, classifying each sample and
// attributing it to a path (spec §4.6-4.7).
type Engine struct {
	kernel kernelOps
	chunks *chunkMap
	rng    *rand.Rand
}

// NewEngine opens f's chunk map and returns an Engine ready to sample it.
// f must be an open handle on the mounted filesystem's root.
func NewEngine(f *os.File) (*Engine, error) {
	chunks, err := enumerateChunks(f)
	if err != nil {
		return nil, err
	}
	return &Engine{
		kernel: &fileKernelOps{
			f:         f,
			roots:     btrfsmeta.NewRootResolver(),
			inoLookup: make(map[inoLookupKey]string),
		},
		chunks: chunks,
		rng:    rand.New(rand.NewSource(randSeed())),
	}, nil
}

// newEngineForTest builds an Engine against a stubbed kernelOps and an
// explicit chunk map, bypassing any real filesystem access.
func newEngineForTest(kernel kernelOps, chunks *chunkMap, seed int64) *Engine {
	return &Engine{kernel: kernel, chunks: chunks, rng: rand.New(rand.NewSource(seed))}
}

// Sample draws samples uniformly from the allocated chunk space until the
// requested resolution (bytesPerSampleHint bytes per sample, on average) is
// reached, classifying and attributing each one. It never tree-walks a
// directory hierarchy; every sample resolves outward from a physical
// address (spec §2, §4.6).
func (e *Engine) Sample(bytesPerSampleHint uint64) *Snapshot {
	snap := NewSnapshot()
	if e.chunks.total == 0 || bytesPerSampleHint == 0 {
		return snap
	}

	n := e.chunks.total / bytesPerSampleHint
	if n == 0 {
		n = 1
	}
	snap.BytesPerSample = float64(e.chunks.total) / float64(n)

	for i := uint64(0); i < n; i++ {
		pos := uint64(e.rng.Int63n(int64(e.chunks.total)))
		e.sampleOnce(snap, pos)
		snap.TotalSamples++
	}
	return snap
}

// sampleOnce classifies the chunk containing pos and attributes the draw
// into snap's tree: one sample for a non-DATA chunk, and for a DATA chunk
// one sample per referencing inode (none when the address has no owner or
// belongs to the free space cache).
func (e *Engine) sampleOnce(snap *Snapshot, pos uint64) {
	chunk := e.chunks.at(pos)

	switch chunk.typeFlags & btrfsmeta.BlockGroupTypeMask {
	case btrfsmeta.BlockGroupData:
		e.sampleData(snap, chunk.chunkOffset+(pos-chunk.pos))
	case btrfsmeta.BlockGroupMetadata:
		snap.Tree.AddSample([]string{"METADATA"})
	case btrfsmeta.BlockGroupSystem:
		snap.Tree.AddSample([]string{"SYSTEM"})
	default:
		snap.Tree.AddSample([]string{"UNKNOWN"})
	}
}

// sampleData reverse-maps a physical address inside a DATA chunk to every
// inode referencing it, and attributes one sample per reference — a
// reflink counted twice is attributed twice, by design (spec §9 Open
// Question 1), so shared extents show up proportionally under every owner.
func (e *Engine) sampleData(snap *Snapshot, logical uint64) {
	inodes, err := e.kernel.LogicalIno(logical, false)
	if err != nil {
		snap.Tree.AddSample([]string{"DATA", "ERROR", "LOGICAL_TO_INO"})
		return
	}
	if len(inodes) == 0 {
		// No owning inode for this address (free space or a hole): no
		// attribution at all, per spec §4.7.
		return
	}

	for _, inode := range inodes {
		e.attributeInode(snap, inode)
	}
}

func (e *Engine) attributeInode(snap *Snapshot, inode btrfsmeta.LogicalInoItem) {
	path, err := e.kernel.InoLookup(inode.Root, inode.Inum)
	if err != nil {
		snap.Tree.AddSample([]string{"DATA", "ERROR", "INO_LOOKUP"})
		return
	}

	// The free space cache lives directly in the root tree and has no
	// meaningful subvolume path. It is counted in TotalSamples (Sample
	// increments that once per draw) but dropped here rather than attributed
	// under any path (spec §4.7, S3).
	if inode.Root == btrfsmeta.RootTreeObjectID {
		return
	}

	rootPath, err := e.kernel.GetRoot(inode.Root)
	if err != nil {
		snap.Tree.AddSample([]string{"DATA", "ERROR", "ROOT_RESOLVE"})
		return
	}

	full := make([]string, 0, 1+len(rootPath)+4)
	full = append(full, "DATA")
	full = append(full, rootPath...)
	full = append(full, splitPath(path)...)
	snap.Tree.AddSample(full)
}

// splitPath breaks a '/'-separated path into non-empty components.
func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				out = append(out, path[start:i])
			}
			start = i + 1
		}
	}
	return out
}
