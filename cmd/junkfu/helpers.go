package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/app"
	"github.com/Carveion/JUNKFU-V2/internal/config"
	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/logger"
)

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// withCore opens the database for the duration of run.
func withCore(cmd *cobra.Command, run func(ctx context.Context, core *app.Core) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(logLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	core, err := app.OpenCore(ctx, cfg, log, nil)
	if err != nil {
		log.Error("open database", zap.Error(err))
		return err
	}
	defer func() { _ = core.Close() }()
	return run(ctx, core)
}

// withSession is withCore for commands that need a logged-in session.
func withSession(cmd *cobra.Command, run func(ctx context.Context, core *app.Core) error) error {
	return withCore(cmd, func(ctx context.Context, core *app.Core) error {
		if err := core.Profiles.EnsureLoggedIn(ctx); err != nil {
			return fmt.Errorf("%w: run `junkfu login` first", err)
		}
		return run(ctx, core)
	})
}

func parseMealFlag(s string) (domain.MealType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return domain.ParseMealType(s)
}

// parseItems reads "Name=calories" arguments.
func parseItems(args []string) ([]domain.StandardMealItem, error) {
	items := make([]domain.StandardMealItem, 0, len(args))
	for _, a := range args {
		name, cal, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid item %q (expected Name=calories)", a)
		}
		n, err := strconv.Atoi(strings.TrimSpace(cal))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid calories in %q", a)
		}
		items = append(items, domain.StandardMealItem{Name: strings.TrimSpace(name), Calories: n})
	}
	return items, nil
}

func printSummary(cmd *cobra.Command, s domain.DaySummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date: %s\n", s.Date)
	fmt.Fprintf(out, "Goal: %d\nConsumed: %d\nRemaining: %d\nProgress: %d%%\n", s.Goal, s.Consumed, s.Remaining, s.Progress)
	if s.OverGoal {
		fmt.Fprintln(out, "Over goal!")
	}
	for _, g := range s.Meals {
		fmt.Fprintf(out, "\n%s\t%d kcal\n", g.MealType, g.Calories)
		for _, e := range g.Entries {
			fmt.Fprintf(out, "  %s\t%s\t%s\t%d\n", e.ID, e.Name, e.QuantityLabel, e.Calories)
		}
	}
}
