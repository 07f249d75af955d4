package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/robalobadob/flagle/internal/config"
)

var rotationGroup = &cobra.Group{
	ID:    "rotation",
	Title: "Daily rotation",
}

var imageGroup = &cobra.Group{
	ID:    "image",
	Title: "Flag images",
}

// newRootCmd builds the command tree. Flag defaults come from cfg.
func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "flagle-cli",
		Long:          `Operator utilities for the Flagle daily flag game`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("pool", cfg.PoolFile, "pool JSON file (empty: built-in countries)")
	root.PersistentFlags().String("seed", cfg.ShuffleSeed, "rotation seed string")
	root.PersistentFlags().String("tz", cfg.TimeZone, "IANA time zone drawing day boundaries (empty: local)")

	root.AddGroup(rotationGroup, imageGroup)
	root.AddCommand(newTargetCmd(), newScheduleCmd(), newCompareCmd())
	return root
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.FromEnv()).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
