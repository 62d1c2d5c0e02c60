// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/internal/planner"
	"github.com/pdiddy/nutriscan/internal/store"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate day and week meal plans from the catalog",
	Long: `Plan splits the daily targets across breakfast (25%), lunch (30%),
dinner (30%), and a snack (15%), then fills each meal from the catalog.
Targets come from the current user when a session exists, otherwise from
the configured defaults; --calories, --protein, --carbs, and --fat
override either.`,
}

var planDayCmd = &cobra.Command{
	Use:   "day",
	Short: "Generate a one-day meal plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd, false)
	},
}

var planWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Generate a seven-day meal plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd, true)
	},
}

func runPlan(cmd *cobra.Command, weekly bool) error {
	ctx := context.Background()
	cfg := appConfig()
	save, _ := cmd.Flags().GetBool("save")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	grocery, _ := cmd.Flags().GetBool("grocery")

	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	user, userErr := currentUser(ctx, st, cfg)
	if save && userErr != nil {
		return userErr
	}
	base := cfg.Nutrition.DefaultTargets
	if userErr == nil {
		base = user.Targets
	}
	targets, err := targetsFromFlags(cmd, base)
	if err != nil {
		return err
	}

	p, err := newPlanner(ctx, cmd, st, cfg)
	if err != nil {
		return err
	}
	prefs := prefsFromFlags(cmd)

	var week types.WeekPlan
	if weekly {
		week = p.BuildWeek(targets, prefs)
	} else if day, ok := p.BuildDay(targets, prefs); ok {
		week.Days = []types.DayPlan{day}
	}
	if len(week.Days) == 0 {
		return planner.ErrNoPlan
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if weekly {
			return enc.Encode(week)
		}
		return enc.Encode(week.Days[0])
	}

	for _, d := range week.Days {
		printDay(d, weekly)
	}
	if weekly {
		avg := nutrition.WeekAverage(week)
		fmt.Printf("Week average (%d days): %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat\n",
			len(week.Days), avg.Calories, avg.Protein, avg.Carbs, avg.Fat)
	}
	if grocery {
		fmt.Println("\nGrocery list:")
		for _, name := range nutrition.GroceryList(week.Days...) {
			fmt.Printf("  - %s\n", name)
		}
	}

	if save {
		n, err := st.SavePlan(ctx, user.ID, week)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved plan (%d entries)\n", n)
	}
	return nil
}

// --- show subcommand ---

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved meal plan with current nutrient values",
	RunE:  runPlanShow,
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		week, err := st.RebuildPlan(ctx, u.ID)
		if err != nil {
			return err
		}
		if len(week.Days) == 0 {
			fmt.Println("No saved plan. Run \"nutriscan plan week --save\".")
			return nil
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(week)
		}
		for _, d := range week.Days {
			printDay(d, true)
		}
		return nil
	})
}

// --- shared helpers ---

func newPlanner(ctx context.Context, cmd *cobra.Command, st *store.Store, cfg types.AppConfig) (*planner.Planner, error) {
	catalog, err := st.ListFoods(ctx)
	if err != nil {
		return nil, err
	}

	seed := cfg.Planner.Seed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}
	var sel *planner.Selector
	if seed != 0 {
		sel = planner.NewSeededSelector(seed)
	} else {
		sel = planner.NewSelector(nil)
	}
	return planner.New(catalog, sel, planner.WithFallbackSize(cfg.Planner.FallbackSize)), nil
}

func prefsFromFlags(cmd *cobra.Command) types.Preferences {
	vegetarian, _ := cmd.Flags().GetBool("vegetarian")
	highProtein, _ := cmd.Flags().GetBool("high-protein")
	return types.Preferences{Vegetarian: vegetarian, HighProtein: highProtein}
}

func printDay(d types.DayPlan, weekly bool) {
	title := "Meal plan"
	if weekly {
		title = types.DayName(d.Day)
	}
	fmt.Printf("%s\n%s\n", title, strings.Repeat("=", len(title)))

	for _, m := range d.Meals {
		fmt.Printf("\n%s (%.0f kcal, %.0f g protein)\n", strings.ToUpper(string(m.Meal[:1]))+string(m.Meal[1:]), m.Calories, m.Protein)
		for _, f := range m.Foods {
			fmt.Printf("  %4gx  %-40s  %6.0f kcal  %5.1f g protein\n", f.Servings, truncate(f.Name, 40), f.Calories, f.Protein)
		}
	}

	t := d.Totals()
	delta := nutrition.Delta(t, d.Targets)
	fmt.Printf("\nTotal: %.0f kcal (%+.0f), %.0f g protein (%+.0f), %.0f g carbs (%+.0f), %.0f g fat (%+.0f)\n\n",
		t.Calories, delta.Calories, t.Protein, delta.Protein, t.Carbs, delta.Carbs, t.Fat, delta.Fat)
}

func init() {
	for _, c := range []*cobra.Command{planDayCmd, planWeekCmd} {
		c.Flags().Bool("vegetarian", false, "exclude poultry, fish, and beef")
		c.Flags().Bool("high-protein", false, "only use foods with at least 10 g protein per serving")
		c.Flags().Uint64("seed", 0, "random seed for a reproducible plan")
		c.Flags().Bool("json", false, "output the plan as JSON")
		c.Flags().Bool("save", false, "save the plan for the current user")
		c.Flags().Bool("grocery", false, "print a grocery list")
		c.Flags().Float64("calories", 0, "daily calorie target")
		c.Flags().Float64("protein", 0, "daily protein target in grams")
		c.Flags().Float64("carbs", 0, "daily carbohydrate target in grams")
		c.Flags().Float64("fat", 0, "daily fat target in grams")
	}
	planShowCmd.Flags().Bool("json", false, "output the plan as JSON")

	planCmd.AddCommand(planDayCmd)
	planCmd.AddCommand(planWeekCmd)
	planCmd.AddCommand(planShowCmd)

	rootCmd.AddCommand(planCmd)
}
