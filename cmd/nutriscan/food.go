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

	"github.com/pdiddy/nutriscan/internal/seed"
	"github.com/pdiddy/nutriscan/internal/usda"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Search, inspect, and import catalog foods",
	Long: `Food works with the local food catalog. Search the catalog, or pass
--remote to search USDA FoodData Central and --save to keep the results.`,
}

// --- search subcommand ---

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search foods by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFoodSearch,
}

func runFoodSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig()
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	remote, _ := cmd.Flags().GetBool("remote")
	save, _ := cmd.Flags().GetBool("save")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	if !remote {
		foods, err := st.SearchFoods(ctx, query, limit)
		if err != nil {
			return err
		}
		return formatFoods(foods, jsonOutput)
	}

	client, err := newUSDAClient(cmd, cfg)
	if err != nil {
		return err
	}
	resp, err := client.SearchFoods(ctx, query, limit, nil)
	if err != nil {
		return err
	}
	foods := make([]types.FoodItem, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		foods = append(foods, usda.ToFoodItem(f))
	}
	if err := formatFoods(foods, jsonOutput); err != nil {
		return err
	}

	if save {
		added, err := st.BulkSaveFoods(ctx, foods)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d new foods (%d already in catalog)\n", added, len(foods)-added)
	}
	return nil
}

// --- show subcommand ---

var foodShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one catalog food with all nutrients",
	Args:  cobra.ExactArgs(1),
	RunE:  runFoodShow,
}

func runFoodShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid food id %q", args[0])
	}

	ctx := context.Background()
	st, err := openStore(ctx, appConfig(), io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := st.GetFood(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}

	fmt.Printf("%s (id %d)\n", f.Name, f.ID)
	if f.Brand != "" {
		fmt.Printf("  Brand:     %s\n", f.Brand)
	}
	if f.Category != "" {
		fmt.Printf("  Category:  %s\n", f.Category)
	}
	if f.FDCID != 0 {
		fmt.Printf("  FDC id:    %d\n", f.FDCID)
	}
	fmt.Printf("  Serving:   %g %s\n", f.ServingSize, f.ServingUnit)
	fmt.Printf("  Calories:  %.1f kcal\n", f.Calories)
	fmt.Printf("  Protein:   %.1f g\n", f.ProteinG)
	fmt.Printf("  Carbs:     %.1f g\n", f.CarbsG)
	fmt.Printf("  Fat:       %.1f g\n", f.FatG)
	fmt.Printf("  Fiber:     %.1f g\n", f.FiberG)
	fmt.Printf("  Sugar:     %.1f g\n", f.SugarG)
	fmt.Printf("  Sodium:    %.0f mg\n", f.SodiumMg)
	return nil
}

// --- import subcommand ---

var foodImportCmd = &cobra.Command{
	Use:   "import <fdc-id>...",
	Short: "Import foods from FoodData Central by FDC id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFoodImport,
}

func runFoodImport(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FDC id %q", a)
		}
		ids = append(ids, id)
	}

	ctx := context.Background()
	cfg := appConfig()
	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newUSDAClient(cmd, cfg)
	if err != nil {
		return err
	}
	fdcFoods, err := client.GetFoods(ctx, ids)
	if err != nil {
		return err
	}

	foods := make([]types.FoodItem, 0, len(fdcFoods))
	for _, f := range fdcFoods {
		foods = append(foods, usda.ToFoodItem(f))
	}
	summary, err := seed.Load(ctx, st, foods, os.Stdout)
	if err != nil {
		return err
	}
	if missing := len(ids) - len(fdcFoods); missing > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d id(s) not found in FoodData Central\n", missing)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d food(s) failed to import", summary.Failed)
	}
	return nil
}

// --- shared helpers ---

func formatFoods(foods []types.FoodItem, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(foods)
	}

	if len(foods) == 0 {
		fmt.Println("No foods found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-45s  %-12s  %7s  %7s  %7s  %7s\n",
		"ID", "Name", "Category", "kcal", "Protein", "Carbs", "Fat")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))

	for _, f := range foods {
		id := strconv.FormatInt(f.ID, 10)
		if f.ID == 0 {
			id = "fdc:" + strconv.FormatInt(f.FDCID, 10)
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-45s  %-12s  %7.1f  %7.1f  %7.1f  %7.1f\n",
			id, truncate(f.Name, 45), truncate(f.Category, 12), f.Calories, f.ProteinG, f.CarbsG, f.FatG)
	}

	fmt.Fprintf(os.Stdout, "\n%d foods\n", len(foods))
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func init() {
	foodSearchCmd.Flags().Int("limit", 20, "maximum results")
	foodSearchCmd.Flags().Bool("remote", false, "search USDA FoodData Central instead of the local catalog")
	foodSearchCmd.Flags().Bool("save", false, "save remote results to the catalog")
	foodSearchCmd.Flags().Bool("json", false, "output results as JSON")
	foodSearchCmd.Flags().String("api-key", "", "FoodData Central API key")

	foodShowCmd.Flags().Bool("json", false, "output the food as JSON")

	foodImportCmd.Flags().String("api-key", "", "FoodData Central API key")

	foodCmd.AddCommand(foodSearchCmd)
	foodCmd.AddCommand(foodShowCmd)
	foodCmd.AddCommand(foodImportCmd)

	rootCmd.AddCommand(foodCmd)
}
