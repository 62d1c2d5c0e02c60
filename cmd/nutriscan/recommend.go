// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/internal/recommend"
	"github.com/pdiddy/nutriscan/internal/store"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend catalog foods",
}

var recommendMacroCmd = &cobra.Command{
	Use:       "macro <protein|carbs|fat>",
	Short:     "Foods richest in one macro",
	Args:      cobra.ExactArgs(1),
	ValidArgs: recommend.Macros,
	RunE:      runRecommendMacro,
}

func runRecommendMacro(cmd *cobra.Command, args []string) error {
	macro := strings.ToLower(args[0])
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := context.Background()
	st, err := openStore(ctx, appConfig(), io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	foods, err := st.ListFoods(ctx)
	if err != nil {
		return err
	}
	picks := recommend.ForMacro(foods, macro, limit)
	if picks == nil {
		return fmt.Errorf("unknown macro %q: use %s", macro, strings.Join(recommend.Macros, ", "))
	}
	return formatFoods(picks, jsonFlag(cmd))
}

var recommendSimilarCmd = &cobra.Command{
	Use:   "similar <food-id>",
	Short: "Foods with a macro profile close to a given food",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommendSimilar,
}

func runRecommendSimilar(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid food id %q", args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := context.Background()
	st, err := openStore(ctx, appConfig(), io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	ref, err := st.GetFood(ctx, id)
	if err != nil {
		return err
	}
	foods, err := st.ListFoods(ctx)
	if err != nil {
		return err
	}
	if !jsonFlag(cmd) {
		fmt.Printf("Similar to %s (%.1f g protein, %.1f g carbs, %.1f g fat)\n\n", ref.Name, ref.ProteinG, ref.CarbsG, ref.FatG)
	}
	return formatFoods(recommend.Similar(foods, id, limit), jsonFlag(cmd))
}

var recommendFavoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Foods the current user logs most often",
	RunE:  runRecommendFavorites,
}

func runRecommendFavorites(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		ids, err := st.LoggedFoodIDs(ctx, u.ID)
		if err != nil {
			return err
		}
		foods, err := st.ListFoods(ctx)
		if err != nil {
			return err
		}
		return formatFoods(recommend.Favorites(foods, ids, limit), jsonFlag(cmd))
	})
}

var recommendSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest foods for what is left of the day's targets",
	RunE:  runRecommendSuggest,
}

func runRecommendSuggest(cmd *cobra.Command, args []string) error {
	date, err := dateArg(cmd)
	if err != nil {
		return err
	}
	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		totals, err := st.DailyTotals(ctx, u.ID, date)
		if err != nil {
			return err
		}
		left := nutrition.Remaining(totals, u.Targets)
		foods, err := st.ListFoods(ctx)
		if err != nil {
			return err
		}
		suggestions := recommend.MealSuggestions(foods, left.Calories, left.Protein)

		if jsonFlag(cmd) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(suggestions)
		}

		fmt.Printf("Remaining for %s: %.0f kcal, %.0f g protein\n\n", date, left.Calories, left.Protein)
		if len(suggestions) == 0 {
			fmt.Println("No suggestions: the catalog has nothing that fits.")
			return nil
		}
		for _, s := range suggestions {
			fmt.Printf("  #%-5d %-40s  %s\n", s.Food.ID, truncate(s.Food.Name, 40), s.Reason)
		}
		return nil
	})
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func init() {
	for _, c := range []*cobra.Command{recommendMacroCmd, recommendSimilarCmd, recommendFavoritesCmd, recommendSuggestCmd} {
		c.Flags().Bool("json", false, "output as JSON")
	}
	for _, c := range []*cobra.Command{recommendMacroCmd, recommendSimilarCmd, recommendFavoritesCmd} {
		c.Flags().Int("limit", recommend.DefaultLimit, "maximum results")
	}
	recommendSuggestCmd.Flags().String("date", "", "date as YYYY-MM-DD (default today)")

	recommendCmd.AddCommand(recommendMacroCmd)
	recommendCmd.AddCommand(recommendSimilarCmd)
	recommendCmd.AddCommand(recommendFavoritesCmd)
	recommendCmd.AddCommand(recommendSuggestCmd)

	rootCmd.AddCommand(recommendCmd)
}
