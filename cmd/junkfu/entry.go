package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Carveion/JUNKFU-V2/internal/app"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage food log entries",
}

var (
	entryDate     string
	entryMeal     string
	entryQuantity string
	entryUnit     string
	entryCalories int
	entryStandard string
)

var entryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Log a catalog category, or any food with --calories",
	Long: "Log a catalog category by name. With --calories the name is free and the value is the " +
		"calories of one Medium serving, one piece or one gram depending on --qty and --unit. " +
		"With --standard <meal> the name is an item of that usual meal and --qty is a count (default 1).",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		if cmd.Flags().Changed("standard") {
			return addStandardEntry(cmd, name)
		}
		meal, err := parseMealFlag(entryMeal)
		if err != nil {
			return err
		}
		q, unit, err := parseQuantityFlags(entryQuantity, entryUnit)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			var (
				entry domain.FoodEntry
				err   error
			)
			if cmd.Flags().Changed("calories") {
				entry, err = core.Logbook.Add(ctx, service.AddRequest{
					Date:         entryDate,
					Name:         name,
					BaseCalories: entryCalories,
					Quantity:     q,
					Unit:         unit,
					MealType:     meal,
				})
			} else {
				entry, err = core.Logbook.AddCategory(ctx, entryDate, name, q, meal)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s, %s, %d kcal (%s)\n", entry.ID, entry.Name, entry.QuantityLabel, entry.Calories, entry.MealType)
			return nil
		})
	},
}

func addStandardEntry(cmd *cobra.Command, item string) error {
	if cmd.Flags().Changed("calories") {
		return fmt.Errorf("--standard and --calories cannot be combined")
	}
	meal, err := parseMealFlag(entryStandard)
	if err != nil {
		return err
	}
	n := 1.0
	if strings.TrimSpace(entryQuantity) != "" {
		q, err := domain.ParseQuantity(entryQuantity)
		if err != nil {
			return err
		}
		if q.IsServing() {
			return fmt.Errorf("--qty must be a number with --standard, got %q", entryQuantity)
		}
		n = q.Count
	}
	return withSession(cmd, func(ctx context.Context, core *app.Core) error {
		entry, err := core.Logbook.AddStandard(ctx, entryDate, meal, item, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s, %s, %d kcal (%s)\n", entry.ID, entry.Name, entry.QuantityLabel, entry.Calories, entry.MealType)
		return nil
	})
}

var entryCustomCmd = &cobra.Command{
	Use:   "custom <description...>",
	Short: "Log a meal from a free-text description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := parseMealFlag(entryMeal)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			entry, err := core.Logbook.AddCustom(ctx, entryDate, strings.Join(args, " "), meal)
			if err != nil {
				return err
			}
			grams := ""
			if entry.AssumedGrams != nil {
				grams = fmt.Sprintf(", assumed %gg", *entry.AssumedGrams)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s, %d kcal (%s%s)\n", entry.ID, entry.Name, entry.Calories, entry.MealType, grams)
			return nil
		})
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			sum, err := core.Logbook.Day(ctx, entryDate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tTIME\tMEAL\tNAME\tQTY\tKCAL")
			for _, g := range sum.Meals {
				for _, e := range g.Entries {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%d\n", e.ID, e.Timestamp.Local().Format("15:04"), e.MealType, e.Name, e.QuantityLabel, e.Calories)
				}
			}
			return nil
		})
	},
}

var editName string

var entryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an entry; calories are recomputed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var req service.EditRequest
		if flags.Changed("name") {
			req.Name = &editName
		}
		if flags.Changed("calories") {
			req.BaseCalories = &entryCalories
		}
		if flags.Changed("qty") {
			q, err := domain.ParseQuantity(entryQuantity)
			if err != nil {
				return err
			}
			req.Quantity = &q
		}
		if flags.Changed("unit") {
			u, err := domain.ParseQuantityUnit(entryUnit)
			if err != nil {
				return err
			}
			req.Unit = &u
		}
		if flags.Changed("meal") {
			m, err := domain.ParseMealType(entryMeal)
			if err != nil {
				return err
			}
			req.MealType = &m
		}
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			entry, err := core.Logbook.Edit(ctx, entryDate, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, %s, %d kcal (%s)\n", entry.ID, entry.Name, entry.QuantityLabel, entry.Calories, entry.MealType)
			return nil
		})
	},
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, core *app.Core) error {
			if err := core.Logbook.Delete(ctx, entryDate, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

// parseQuantityFlags defaults to one Medium serving.
func parseQuantityFlags(qty, unit string) (domain.Quantity, domain.QuantityUnit, error) {
	q := domain.Serving(domain.ServingMedium)
	if strings.TrimSpace(qty) != "" {
		var err error
		if q, err = domain.ParseQuantity(qty); err != nil {
			return domain.Quantity{}, "", err
		}
	}
	if strings.TrimSpace(unit) == "" {
		return q, "", nil
	}
	u, err := domain.ParseQuantityUnit(unit)
	if err != nil {
		return domain.Quantity{}, "", err
	}
	return q, u, nil
}

func addEntryFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entryDate, "date", "", "Date in YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&entryMeal, "meal", "", "Breakfast|Lunch|Dinner|Snacks (default from time of day)")
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryCustomCmd, entryListCmd, entryEditCmd, entryRmCmd)

	for _, c := range []*cobra.Command{entryAddCmd, entryCustomCmd, entryEditCmd} {
		addEntryFields(c)
	}
	entryListCmd.Flags().StringVar(&entryDate, "date", "", "Date in YYYY-MM-DD (default today)")
	entryRmCmd.Flags().StringVar(&entryDate, "date", "", "Date in YYYY-MM-DD (default today)")

	for _, c := range []*cobra.Command{entryAddCmd, entryEditCmd} {
		c.Flags().StringVar(&entryQuantity, "qty", "", "Serving size (Small, Medium, Large, Extra Large) or a number")
		c.Flags().StringVar(&entryUnit, "unit", "", "serving|pcs|g (default serving for sizes, pcs for numbers)")
		c.Flags().IntVar(&entryCalories, "calories", 0, "Base calories")
	}
	entryAddCmd.Flags().StringVar(&entryStandard, "standard", "", "Log an item of this usual meal (Breakfast, Lunch or Dinner)")
	entryEditCmd.Flags().StringVar(&editName, "name", "", "New name")
}
