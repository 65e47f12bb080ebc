package btrfs

import (
	"log/slog"

	"go.uber.org/fx"
)

// Package btrfs provides read-only subvolume introspection (ListSubvolumes,
// GetSubvolumeInfo) through a Manager constructed by the fx Module below.

var Module = fx.Module("btrfs",
	fx.Provide(New),
)

type Manager struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger.With("component", "btrfs"),
	}
}
