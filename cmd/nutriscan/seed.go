// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the food catalog",
	Long: `Seed fills the catalog from a YAML or JSON seed file, or by searching
FoodData Central for a list of common foods. Foods already in the catalog
(same FDC id) are skipped, so seeding can be rerun safely.`,
}

var seedLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load foods from a YAML or JSON seed file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeedLoad,
}

func runSeedLoad(cmd *cobra.Command, args []string) error {
	foods, err := seed.LoadFile(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, appConfig(), os.Stdout)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := seed.Load(ctx, st, foods, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nAdded %d foods, skipped %d existing, %d failed\n", summary.Added, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d food(s) failed to load", summary.Failed)
	}
	return nil
}

var seedCommonCmd = &cobra.Command{
	Use:   "common",
	Short: "Import common foods from FoodData Central",
	RunE:  runSeedCommon,
}

func runSeedCommon(cmd *cobra.Command, args []string) error {
	terms, _ := cmd.Flags().GetStringSlice("terms")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	ctx := context.Background()
	cfg := appConfig()
	st, err := openStore(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newUSDAClient(cmd, cfg)
	if err != nil {
		return err
	}

	summary, err := seed.ImportCommon(ctx, client, st, terms, pageSize, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nDone: added %d foods, skipped %d existing, %d failed\n", summary.Added, summary.Skipped, summary.Failed)
	return nil
}

func init() {
	seedCommonCmd.Flags().StringSlice("terms", nil, "search terms (default: built-in common foods list)")
	seedCommonCmd.Flags().Int("page-size", seed.DefaultPageSize, "results imported per term")
	seedCommonCmd.Flags().String("api-key", "", "FoodData Central API key")

	seedCmd.AddCommand(seedLoadCmd)
	seedCmd.AddCommand(seedCommonCmd)

	rootCmd.AddCommand(seedCmd)
}
