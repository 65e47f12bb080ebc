package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/lmb/btrfsdu/pkg/btrfs"
	"github.com/lmb/btrfsdu/pkg/config"
)

// SubvolCmd groups the read-only subvolume introspection subcommands.
// Unlike Sample and Extent, it builds its Manager through fx: the
// dependency graph here (config, logger, Manager) is exactly the shape
// the rest of the tool wires by hand, kept as fx.Module for this one
// auxiliary command.
type SubvolCmd struct {
	List SubvolListCmd `cmd:"" help:"List subvolumes"`
	Show SubvolShowCmd `cmd:"" help:"Show subvolume details"`
}

func withManager(logLevel string, fn func(mgr *btrfs.Manager) error) error {
	var runErr error
	app := fx.New(
		fx.Provide(
			func() *config.Config {
				cfg := config.New()
				cfg.LogLevel = logLevel
				return cfg
			},
			func(cfg *config.Config) *slog.Logger {
				return makeLogger(cfg.LogLevel)
			},
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		btrfs.Module,
		fx.Invoke(func(mgr *btrfs.Manager) {
			runErr = fn(mgr)
		}),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return err
	}
	return runErr
}

// SubvolListCmd lists subvolumes.
type SubvolListCmd struct {
	Path string `arg:"" help:"Path to btrfs filesystem mount point"`
}

func (c *SubvolListCmd) Run(cli *CLI) error {
	return withManager(cli.LogLevel, func(mgr *btrfs.Manager) error {
		subvols, err := mgr.ListSubvolumes(c.Path)
		if err != nil {
			return fmt.Errorf("list subvolumes: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"ID", "Gen", "Top Level", "Path", "RO"})
		for _, sv := range subvols {
			ro := ""
			if sv.IsReadonly {
				ro = "ro"
			}
			t.AppendRow(table.Row{sv.ID, sv.Gen, sv.TopLevel, sv.Path, ro})
		}
		t.Render()
		return nil
	})
}

// SubvolShowCmd shows details for the top-level subvolume at Path.
type SubvolShowCmd struct {
	Path string `arg:"" help:"Path to subvolume"`
}

func (c *SubvolShowCmd) Run(cli *CLI) error {
	return withManager(cli.LogLevel, func(mgr *btrfs.Manager) error {
		sv, err := mgr.GetSubvolumeInfo(c.Path)
		if err != nil {
			return fmt.Errorf("get subvolume info: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendRow(table.Row{"ID", sv.ID})
		t.AppendRow(table.Row{"Generation", sv.Gen})
		t.AppendRow(table.Row{"Top Level", sv.TopLevel})
		t.AppendRow(table.Row{"Path", sv.Path})
		t.AppendRow(table.Row{"UUID", sv.UUID})
		if sv.ParentUUID != "" {
			t.AppendRow(table.Row{"Parent UUID", sv.ParentUUID})
		}
		t.AppendRow(table.Row{"Readonly", sv.IsReadonly})
		if !sv.CreatedAt.IsZero() {
			t.AppendRow(table.Row{"Created", sv.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		t.Render()
		return nil
	})
}
