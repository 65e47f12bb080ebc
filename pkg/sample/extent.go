package sample

import (
	"log/slog"
	"os"

	"github.com/lmb/btrfsdu/pkg/btrfsmeta"
)

// rootInode is the (subvolume root, inode) key extent-accounting attributes
// bytes to before the post-pass resolves it to a path (spec §4.8).
type rootInode struct {
	Root uint64
	Inum uint64
}

// extentUsage accumulates exact byte totals per (root, inode) pair, keyed
// off the first EXTENT_DATA_REF inline ref that indexes each extent.
type extentUsage map[rootInode]uint64

// ExtentAccount walks the extent tree once, attributing every DATA extent's
// length to the (root, inode) pair named by the first EXTENT_DATA_REF
// inline ref that indexes it, then resolves each pair to a path via
// InoLookup/GetRoot and builds a Tree from the result (spec §4.8). It never
// samples: every extent is visited exactly once, so byte totals are exact
// for the references this mode covers.
//
// This is an exact accounting, not a substitute for sampling: an extent
// shared by several snapshots is credited solely to the first DATA_REF that
// indexes it, so shared usage is not each credited the way Engine.Sample's
// reflink handling credits every owner.
func ExtentAccount(f *os.File, logger *slog.Logger) (*Tree, error) {
	usage := make(extentUsage)

	err := btrfsmeta.TreeSearch(f, btrfsmeta.ExtentTreeObjectID, btrfsmeta.AllKeys, func(rec btrfsmeta.Record) error {
		switch rec.Header.Type {
		case btrfsmeta.ExtentItemKey:
			accountExtentItem(usage, rec, logger)
		case btrfsmeta.MetadataItemKey:
			accountMetadataItem(rec, logger)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kernel := &fileKernelOps{
		f:         f,
		roots:     btrfsmeta.NewRootResolver(),
		inoLookup: make(map[inoLookupKey]string),
	}
	return resolveExtentUsage(kernel, usage, logger), nil
}

func accountExtentItem(usage extentUsage, rec btrfsmeta.Record, logger *slog.Logger) {
	r := btrfsmeta.NewRawReader(rec.Payload)
	extentSize := rec.Header.Offset

	item, err := btrfsmeta.DecodeExtentItem(r)
	if err != nil {
		return
	}

	if item.Flags&btrfsmeta.ExtentFlagTreeBlock != 0 {
		if err := r.Skip(btrfsmeta.TreeBlockInfoSize); err != nil {
			return
		}
	}
	if item.Flags&btrfsmeta.ExtentFlagData == 0 {
		// Non-DATA extent (tree blocks included): nothing this mode attributes.
		return
	}

	attributed := false
	for r.Available() > 0 {
		tag, err := r.Uint8()
		if err != nil {
			return
		}
		switch tag {
		case btrfsmeta.ExtentDataRefKey:
			ref, err := btrfsmeta.DecodeExtentDataRef(r)
			if err != nil {
				return
			}
			if !attributed {
				// Solely the first DATA_REF indexing this extent is
				// credited; later refs (additional snapshots/reflinks
				// sharing it) are walked but not double-counted here —
				// that is what distinguishes this mode from sampling.
				usage[rootInode{Root: ref.Root, Inum: ref.ObjectID}] += extentSize
				attributed = true
			}
		case btrfsmeta.SharedDataRefKey:
			if err := r.Skip(8); err != nil { // parent
				return
			}
			if err := r.Skip(btrfsmeta.SharedDataRefSize); err != nil { // count
				return
			}
		default:
			if logger != nil {
				logger.Debug("extent accounting", "err", (&btrfsmeta.UnknownInlineRefError{Tag: tag}).Error())
			}
			return
		}
	}
}

// accountMetadataItem recognizes METADATA_ITEM inline refs but never
// attributes them — tree blocks have no owning path the way file extents
// do (spec §4.8).
func accountMetadataItem(rec btrfsmeta.Record, logger *slog.Logger) {
	r := btrfsmeta.NewRawReader(rec.Payload)
	if _, err := btrfsmeta.DecodeExtentItem(r); err != nil {
		return
	}

	for r.Available() > 0 {
		ref, err := btrfsmeta.DecodeExtentInlineRef(r)
		if err != nil {
			return
		}
		switch ref.Type {
		case btrfsmeta.TreeBlockRefKey, btrfsmeta.SharedBlockRefKey:
			// Recognized, currently un-attributed.
		default:
			if logger != nil {
				logger.Debug("extent accounting", "err", (&btrfsmeta.UnknownInlineRefError{Tag: ref.Type}).Error())
			}
			return
		}
	}
}

// resolveExtentUsage is extent-accounting's post-pass: every (root, inode)
// with nonzero bytes is resolved via InoLookup and added to a Tree under
// its resolved path. Unresolvable inodes are reported (logged) and dropped
// (spec §4.8).
func resolveExtentUsage(kernel kernelOps, usage extentUsage, logger *slog.Logger) *Tree {
	tree := NewTree()
	for key, n := range usage {
		if n == 0 {
			continue
		}
		// The free space cache lives directly in the root tree with no
		// meaningful subvolume path; drop it like Engine.attributeInode
		// does (spec §4.7, S3).
		if key.Root == btrfsmeta.RootTreeObjectID {
			continue
		}

		name, err := kernel.InoLookup(key.Root, key.Inum)
		if err != nil {
			if logger != nil {
				logger.Warn("unresolvable inode in extent accounting", "root", key.Root, "inum", key.Inum, "err", err)
			}
			continue
		}
		rootPath, err := kernel.GetRoot(key.Root)
		if err != nil {
			if logger != nil {
				logger.Warn("unresolvable root in extent accounting", "root", key.Root, "err", err)
			}
			continue
		}

		full := make([]string, 0, len(rootPath)+4)
		full = append(full, rootPath...)
		full = append(full, splitPath(name)...)
		tree.AddSamples(full, n)
	}
	return tree
}
