package main

import (
	"github.com/alecthomas/kong"
)

// CLI is the root command structure.
type CLI struct {
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`

	Sample SampleCmd `cmd:"" default:"1" help:"Estimate per-path disk usage by Monte Carlo sampling"`
	Extent ExtentCmd `cmd:"" help:"Attribute exact per-path usage by walking the extent tree"`
	Subvol SubvolCmd `cmd:"" help:"Subvolume operations"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("btrfsdu"),
		kong.Description("Per-path btrfs disk usage estimator"),
		kong.UsageOnError(),
	)
	err := ctx.Run(cli)
	ctx.FatalIfErrorf(err)
}
