package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/app"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

var errPermissionDenied = errors.New("notifications are not permitted: send /start to the bot while `junkfu run` is up, then retry")

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Manage meal reminders",
}

var remindOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			granted, err := permissionGranted(ctx, core)
			if err != nil {
				return err
			}
			if !granted {
				return errPermissionDenied
			}
			p, err := core.Profiles.SetNotifications(ctx, true)
			if err != nil {
				return err
			}
			if len(p.NotificationTimes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders on. Add a time with `junkfu remind add HH:MM`.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminders on at %s\n", strings.Join(p.NotificationTimes, " "))
			return nil
		})
	},
}

var remindOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			if _, err := core.Profiles.SetNotifications(ctx, false); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reminders off")
			return nil
		})
	},
}

var remindAddCmd = &cobra.Command{
	Use:   "add <HH:MM>",
	Short: "Add a reminder time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.AddReminderTime(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder times: %s\n", strings.Join(p.NotificationTimes, " "))
			return nil
		})
	},
}

var remindRmCmd = &cobra.Command{
	Use:   "rm <HH:MM>",
	Short: "Remove a reminder time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.RemoveReminderTime(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder times: %s\n", strings.Join(p.NotificationTimes, " "))
			return nil
		})
	},
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminder times and when each fires next",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.Require(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !p.NotificationsEnabled {
				fmt.Fprintln(out, "Reminders are off")
			}
			fmt.Fprintln(out, "TIME\tNEXT\tMEAL")
			now := core.Clock.Now()
			for _, t := range p.NotificationTimes {
				next, err := domain.NextOccurrence(now, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", t, next.Format("2006-01-02 15:04"), domain.MealTypeAt(next))
			}
			return nil
		})
	},
}

var remindPermissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Show whether reminders can be delivered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *app.Core) error {
			granted, err := permissionGranted(ctx, core)
			if err != nil {
				return err
			}
			if granted {
				fmt.Fprintln(cmd.OutOrStdout(), "granted")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "denied")
			return nil
		})
	},
}

// permissionGranted reports whether a Telegram chat is bound to receive
// reminders.
func permissionGranted(ctx context.Context, core *app.Core) (bool, error) {
	_, ok, err := core.Repo.ChatID(ctx)
	return ok, err
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.AddCommand(remindOnCmd, remindOffCmd, remindAddCmd, remindRmCmd, remindListCmd, remindPermissionCmd)
}
