package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/flagle/internal/pixel"
	"github.com/robalobadob/flagle/internal/reveal"
)

// loadFile decodes path into a buffer of the game's flag size.
func loadFile(ctx context.Context, path string) (*pixel.Buffer, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	l := &pixel.FSLoader{
		FS:     os.DirFS(filepath.Dir(path)),
		Ext:    ext,
		Width:  pixel.Width,
		Height: pixel.Height,
	}
	return l.Load(ctx, strings.TrimSuffix(base, ext))
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare <target> <guess>",
		GroupID: imageGroup.ID,
		Short:   "Show how much of target a guess reveals",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			target, err := loadFile(ctx, args[0])
			if err != nil {
				return err
			}
			guess, err := loadFile(ctx, args[1])
			if err != nil {
				return err
			}
			eng := reveal.NewEngine(target)
			pct, err := eng.ApplyGuess(guess)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f%%\n", pct); err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := png.Encode(f, eng.Composite(reveal.HiddenColor)); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().String("out", "", "write the revealed composite as PNG")
	return cmd
}
