// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/internal/store"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show daily calorie and macro totals over recent days",
	Long: `Trends lists the totals of each of the last --days days (7, 14, or 30),
including days with nothing logged, followed by the period averages.`,
	RunE: runTrends,
}

func runTrends(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	switch days {
	case 7, 14, 30:
	default:
		return fmt.Errorf("--days must be 7, 14, or 30")
	}

	return withUser(func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error {
		to := time.Now()
		from := to.AddDate(0, 0, -(days - 1))
		totals, err := st.DailyRange(ctx, u.ID, from, to)
		if err != nil {
			return err
		}

		if jsonFlag(cmd) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(totals)
		}

		fmt.Fprintf(os.Stdout, "%-10s  %6s  %7s  %5s  %4s  %s\n", "Date", "kcal", "Protein", "Carbs", "Fat", "vs target")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))

		var sum types.DailyTotals
		logged := 0
		for _, t := range totals {
			fmt.Fprintf(os.Stdout, "%-10s  %6d  %7d  %5d  %4d  %s\n",
				t.Date, t.Calories, t.Protein, t.Carbs, t.Fat, bar(calorieShare(t, u.Targets), 30))
			sum.Calories += t.Calories
			sum.Protein += t.Protein
			sum.Carbs += t.Carbs
			sum.Fat += t.Fat
			if t.Calories > 0 {
				logged++
			}
		}

		n := len(totals)
		fmt.Printf("\n%d of %d days logged. Average: %d kcal, %d g protein, %d g carbs, %d g fat\n",
			logged, n, sum.Calories/n, sum.Protein/n, sum.Carbs/n, sum.Fat/n)

		met := 0
		for _, t := range totals {
			if nutrition.TargetMet(float64(t.Calories), u.Targets.Calories, cfg.Nutrition.TargetTolerance) {
				met++
			}
		}
		fmt.Printf("Calorie target met on %d day(s) (within %.0f%%)\n", met, cfg.Nutrition.TargetTolerance*100)
		return nil
	})
}

func calorieShare(t types.DailyTotals, targets types.Targets) float64 {
	p := nutrition.Progress(t, targets)
	return p[0].Percent
}

func init() {
	trendsCmd.Flags().Int("days", 7, "number of days: 7, 14, or 30")
	trendsCmd.Flags().Bool("json", false, "output daily totals as JSON")

	rootCmd.AddCommand(trendsCmd)
}
