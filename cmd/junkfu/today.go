package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/app"
)

var todayDate string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's calories against your goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			sum, err := core.Logbook.Day(ctx, todayDate)
			if err != nil {
				return err
			}
			printSummary(cmd, sum)
			return nil
		})
	},
}

var (
	historyFrom string
	historyTo   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily totals for logged days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			days, err := core.Logbook.History(ctx, historyFrom, historyTo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "DATE\tKCAL\tGOAL\tPROGRESS")
			for _, d := range days {
				marker := ""
				if d.OverGoal {
					marker = " !"
				}
				fmt.Fprintf(out, "%s\t%d\t%d\t%d%%%s\n", d.Date, d.Consumed, d.Goal, d.Progress, marker)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, historyCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Show another date (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "From date YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "To date YYYY-MM-DD")
}
