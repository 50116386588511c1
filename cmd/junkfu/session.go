package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/app"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *app.Core) error {
			hasProfile, err := core.Profiles.Login(ctx)
			if err != nil {
				return err
			}
			if !hasProfile {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in. No profile yet, create one with `junkfu profile set`.")
				return nil
			}
			p, err := core.Profiles.Require(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s. Daily goal: %d kcal\n", p.Name, p.DailyCalorieGoal)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and delete all local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *app.Core) error {
			if err := core.Profiles.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Profile, logs and reminders were removed.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
