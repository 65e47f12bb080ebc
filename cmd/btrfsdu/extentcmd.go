package main

import (
	"fmt"
	"os"

	"github.com/lmb/btrfsdu/pkg/sample"
)

// ExtentCmd runs the deterministic extent-accounting mode: an exact,
// non-sampling walk of the extent tree attributing DATA extents to their
// owning (subvolume, inode) pairs and resolving each to a path, printed as
// the same Tree type the sampling mode produces; its paths start at the
// subvolume path, without the sampling mode's leading DATA component
// (spec §4.8).
type ExtentCmd struct {
	Path string `arg:"" help:"Path on a mounted btrfs filesystem"`
}

func (c *ExtentCmd) Run(cli *CLI) error {
	logger := makeLogger(cli.LogLevel)

	f, err := os.OpenFile(c.Path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open path: %w", err)
	}
	defer f.Close()

	tree, err := sample.ExtentAccount(f, logger)
	if err != nil {
		return fmt.Errorf("account extents: %w", err)
	}

	return tree.Print(os.Stdout, tree.Total, 1, nil)
}
