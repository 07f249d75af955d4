package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/pool"
)

// rotation loads the pool and selector the persistent flags describe.
func rotation(cmd *cobra.Command) (*pool.Pool, *daily.Selector, error) {
	flags := cmd.Flags()
	poolFile, _ := flags.GetString("pool")
	seed, _ := flags.GetString("seed")
	tz, _ := flags.GetString("tz")

	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, nil, fmt.Errorf("time zone: %w", err)
		}
		loc = l
	}
	p, err := pool.Load(poolFile)
	if err != nil {
		return nil, nil, err
	}
	sel, err := daily.NewSelector(p.Codes(), seed, daily.Epoch(loc))
	if err != nil {
		return nil, nil, err
	}
	return p, sel, nil
}

// dateFlag parses --date in the selector's zone; empty means today.
func dateFlag(cmd *cobra.Command, loc *time.Location) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return time.Now().In(loc), nil
	}
	d, err := daily.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc), nil
}

func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target",
		GroupID: rotationGroup.ID,
		Short:   "Print the flag of a day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, sel, err := rotation(cmd)
			if err != nil {
				return err
			}
			at, err := dateFlag(cmd, sel.Location())
			if err != nil {
				return err
			}
			code := sel.Target(at)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t#%d\t%s\t%s\n",
				daily.DateKey(at), sel.DayIndex(at), code, p.DisplayName(code))
			return err
		},
	}
	cmd.Flags().String("date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		GroupID: rotationGroup.ID,
		Short:   "List the flags of consecutive days",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, sel, err := rotation(cmd)
			if err != nil {
				return err
			}
			from, err := dateFlag(cmd, sel.Location())
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("days")
			if n <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			out := cmd.OutOrStdout()
			for _, d := range sel.Schedule(from, n) {
				if _, err := fmt.Fprintf(out, "%s\t#%d\t%s\t%s\n", d.Date, d.Index, d.Target, p.DisplayName(d.Target)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "first day as YYYY-MM-DD (default today)")
	cmd.Flags().Int("days", 7, "number of days")
	return cmd
}
