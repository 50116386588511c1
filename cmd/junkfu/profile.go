package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/app"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile, standard meals and favorites",
}

var (
	profileName     string
	profileAge      int
	profileWeight   float64
	profileHeight   float64
	profileIdeal    float64
	profileActivity string
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update your profile",
	Long:  "Create or update your profile. On update only the given flags change; the daily goal is recomputed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			existing, err := core.Profiles.Load(ctx)
			if err != nil {
				return err
			}
			var p domain.Profile
			if existing != nil {
				p = *existing
			}
			flags := cmd.Flags()
			if existing == nil || flags.Changed("name") {
				p.Name = profileName
			}
			if existing == nil || flags.Changed("age") {
				p.Age = profileAge
			}
			if existing == nil || flags.Changed("weight") {
				p.Weight = profileWeight
			}
			if existing == nil || flags.Changed("height") {
				p.Height = profileHeight
			}
			if existing == nil || flags.Changed("ideal-weight") {
				p.IdealWeight = profileIdeal
			}
			if existing == nil || flags.Changed("activity") {
				level, err := domain.ParseActivityLevel(profileActivity)
				if err != nil {
					return err
				}
				p.ActivityLevel = level
			}
			saved, err := core.Profiles.Save(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile saved. Daily goal: %d kcal\n", saved.DailyCalorieGoal)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.Require(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", p.Name)
			fmt.Fprintf(out, "Age: %d\n", p.Age)
			fmt.Fprintf(out, "Weight: %g kg\nIdeal weight: %g kg\nHeight: %g cm\n", p.Weight, p.IdealWeight, p.Height)
			fmt.Fprintf(out, "Activity: %s\n", p.ActivityLevel)
			fmt.Fprintf(out, "Daily goal: %d kcal\n", p.DailyCalorieGoal)
			fmt.Fprintf(out, "Favorites: %s\n", strings.Join(p.FavoriteCategoryNames, ", "))
			for _, m := range []domain.MealType{domain.MealBreakfast, domain.MealLunch, domain.MealDinner} {
				items := p.StandardMeals.For(m)
				parts := make([]string, 0, len(items))
				for _, it := range items {
					parts = append(parts, fmt.Sprintf("%s (%d)", it.Name, it.Calories))
				}
				fmt.Fprintf(out, "Standard %s: %s\n", strings.ToLower(m.String()), strings.Join(parts, ", "))
			}
			state := "off"
			if p.NotificationsEnabled {
				state = "on"
			}
			fmt.Fprintf(out, "Reminders: %s %s\n", state, strings.Join(p.NotificationTimes, " "))
			return nil
		})
	},
}

var profileGoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Explain how your daily goal is computed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.Require(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BMR: %.0f kcal\n", domain.BMR(p.Weight, p.Height, p.Age))
			fmt.Fprintf(out, "Maintenance (%s): %d kcal\n", p.ActivityLevel, domain.MaintenanceCalories(p))
			fmt.Fprintf(out, "Daily goal: %d kcal\n", domain.DailyGoal(p))
			return nil
		})
	},
}

var profileMealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage standard meals used by reminders",
}

var profileMealSetCmd = &cobra.Command{
	Use:   "set <breakfast|lunch|dinner> [Name=calories...]",
	Short: "Set the items of a standard meal; no items clears it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := domain.ParseMealType(args[0])
		if err != nil {
			return err
		}
		items, err := parseItems(args[1:])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			if _, err := core.Profiles.SetStandardMeal(ctx, meal, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Standard %s set (%d items)\n", strings.ToLower(meal.String()), len(items))
			return nil
		})
	},
}

var profileMealParseCmd = &cobra.Command{
	Use:   "parse <breakfast|lunch|dinner> <description...>",
	Short: "Set a standard meal from a free-text description",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := domain.ParseMealType(args[0])
		if err != nil {
			return err
		}
		description := strings.Join(args[1:], " ")
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.ParseStandardMeal(ctx, meal, description)
			if err != nil {
				return err
			}
			for _, it := range p.StandardMeals.For(meal) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", it.Name, it.Calories)
			}
			return nil
		})
	},
}

var profileFavoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage favorite categories",
}

var profileFavoriteAddCmd = &cobra.Command{
	Use:   "add <category>",
	Short: "Add a favorite category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.AddFavorite(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Favorites: %s\n", strings.Join(p.FavoriteCategoryNames, ", "))
			return nil
		})
	},
}

var profileFavoriteRmCmd = &cobra.Command{
	Use:   "rm <category>",
	Short: "Remove a favorite category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			p, err := core.Profiles.RemoveFavorite(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Favorites: %s\n", strings.Join(p.FavoriteCategoryNames, ", "))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileGoalCmd, profileMealCmd, profileFavoriteCmd)
	profileMealCmd.AddCommand(profileMealSetCmd, profileMealParseCmd)
	profileFavoriteCmd.AddCommand(profileFavoriteAddCmd, profileFavoriteRmCmd)

	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Your name")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Current weight in kg")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileIdeal, "ideal-weight", 0, "Target weight in kg")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "sedentary", "sedentary|light|moderate|active")
}
