package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dennwc/btrfs"
	"github.com/lmb/btrfsdu/pkg/config"
	"github.com/lmb/btrfsdu/pkg/sample"
)

// SampleCmd runs the Monte Carlo disk-usage estimator, printing an
// aggregated report after every sampling pass until Iterations passes
// complete (or forever, if Iterations is 0).
type SampleCmd struct {
	Resolution float64 `short:"r" help:"Target bytes per sample"`
	MinPct     float64 `short:"m" help:"Omit nodes below this percentage of the current aggregate"`
	Window     int     `short:"w" help:"Number of recent passes the aggregate reflects"`
	Iterations int     `short:"n" default:"0" help:"Number of sampling passes (0 = run until interrupted)"`
	Once       bool    `help:"Equivalent to --iterations=1"`

	Path string `arg:"" help:"Path on a mounted btrfs filesystem"`
}

func (c *SampleCmd) Run(cli *CLI) error {
	logger := makeLogger(cli.LogLevel)
	cfg := config.New()
	if c.Resolution == 0 {
		c.Resolution = cfg.DefaultResolution
	}
	if c.MinPct == 0 {
		c.MinPct = cfg.DefaultMinPct
	}
	if c.Window == 0 {
		c.Window = cfg.DefaultWindow
	}
	if c.Once {
		c.Iterations = 1
	}

	fs, err := btrfs.Open(c.Path, true)
	if err != nil {
		return fmt.Errorf("open btrfs filesystem: %w", err)
	}
	defer fs.Close()

	f, err := os.OpenFile(c.Path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open path for sampling: %w", err)
	}
	defer f.Close()

	engine, err := sample.NewEngine(f)
	if err != nil {
		return fmt.Errorf("enumerate chunks: %w", err)
	}

	window := sample.NewWindow(c.Window)
	minFraction := c.MinPct / 100.0

	for i := 0; c.Iterations == 0 || i < c.Iterations; i++ {
		start := time.Now()
		snap := engine.Sample(uint64(c.Resolution))
		elapsed := time.Since(start)

		agg := window.Add(snap)

		fmt.Printf("samples=%d elapsed=%s per_sample=%s bytes_per_sample=%.0f\n",
			snap.TotalSamples, elapsed, elapsed/time.Duration(max64(snap.TotalSamples, 1)), snap.BytesPerSample)
		fmt.Printf("agg_samples=%d agg_resolution=%.0f\n", agg.TotalSamples, agg.BytesPerSample)

		if err := agg.Tree.Print(os.Stdout, agg.TotalSamples, agg.BytesPerSample, &minFraction); err != nil {
			return fmt.Errorf("print report: %w", err)
		}

		if c.Iterations == 0 || i < c.Iterations-1 {
			logger.Debug("pass complete", "iteration", i)
			time.Sleep(time.Second)
		}
	}

	return nil
}

func max64(n uint64, floor uint64) uint64 {
	if n < floor {
		return floor
	}
	return n
}
